// Copyright 2026 The benchstats Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchstats compares two sets of the same benchmarks with
// repetitions and reports, per benchmark and metric, whether the two
// differ by more than chance.
//
// Usage:
//
//	benchstats [options] file1 file2 [metric ...]
//
// file1 and file2 contain benchmark results in one of the built-in
// formats (Google Benchmark JSON by default, see -parser). The
// trailing metric names select what to extract per repetition; the
// default is the parser's primary time metric. The first metric is
// the "main" metric unless -main says otherwise: a statistically
// significant difference in a main metric of any benchmark makes the
// process exit with status 1, which suits CI gates. Status 2 means
// the configuration was invalid; status 0 means no main-metric
// difference was found.
//
// The statistical method is selected with -method; the default is the
// Mann-Whitney U test, which suits the right-skewed distributions
// benchmark timings usually follow. -alpha sets the significance
// level and -bonferroni divides it by the number of compared
// benchmarks to control the family-wise error rate.
//
// For deterministic algorithms it is highly recommended to measure
// and compare the minimum latency per repetition.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/Arech/benchstats/benchparse"
	"github.com/Arech/benchstats/compare"
	"github.com/Arech/benchstats/render"
	"github.com/Arech/benchstats/stattest"
)

var exit = os.Exit // replaced during testing

func main() {
	log.SetPrefix("benchstats: ")
	log.SetFlags(0)
	exit(benchstats(os.Stdout, os.Stderr, os.Args[1:]))
}

func methodsHelp() string {
	var parts []string
	for _, id := range stattest.IDs() {
		m := stattest.Methods[id]
		parts = append(parts, fmt.Sprintf("%q for %s (%s)", id, m.Name, m.URL))
	}
	return strings.Join(parts, ", ")
}

// benchstats runs the tool and returns its exit code: 0 for no
// main-metric difference, 1 when one was detected, 2 for an invalid
// configuration.
func benchstats(w, wErr io.Writer, args []string) int {
	fs := flag.NewFlagSet("benchstats", flag.ContinueOnError)
	fs.SetOutput(wErr)
	fs.Usage = func() {
		fmt.Fprintf(wErr, "usage: benchstats [options] file1 file2 [metric ...]\n")
		fmt.Fprintf(wErr, "options:\n")
		fs.PrintDefaults()
	}

	var (
		flagParser      = fs.String("parser", benchparse.Default, "input files `format`: "+strings.Join(benchparse.IDs(), ", "))
		flagFile1Parser = fs.String("file1-parser", "", "overrides -parser for file1")
		flagFile2Parser = fs.String("file2-parser", "", "overrides -parser for file2")
		flagFilter1     = fs.String("filter1", "", "`regexp` selecting benchmarks by name from file1")
		flagFilter2     = fs.String("filter2", "", "`regexp` selecting benchmarks by name from file2")
		flagMethod      = fs.String("method", stattest.Default, "statistical test `method`: "+methodsHelp())
		flagAlpha       = fs.Float64("alpha", compare.DefaultAlpha, "statistical significance `level`, in (0, 0.5]. The real mistake probability is always higher: preconditions of the tests (like independence of individual measurements) never fully hold for real benchmarks")
		flagBonferroni  = fs.Bool("bonferroni", false, "apply a Bonferroni multiple-comparisons correction (divides alpha by the number of compared benchmarks)")
		flagMain        = fs.String("main", "", "comma-separated `metrics` treated as main (default: the first metric)")
		flagExportTo    = fs.String("export-to", "", "`path` of a file to store comparison results to")
		flagExportFmt   = fs.String("export-fmt", "", "export `format`: "+strings.Join(render.ExportFormats, ", ")+" (default: inferred from -export-to extension)")
		flagExportLight = fs.Bool("export-light", false, "use the light theme for exports instead of dark")
		flagNoColors    = fs.Bool("no-colors", false, "disable colored output")
		flagHideSizes   = fs.Bool("hide-sample-sizes", false, "hide the sizes of the samples used in a test")
		flagAllPValues  = fs.Bool("always-show-pvalues", false, "show p-values for all pairs, not only differing ones")
		flagStats       = fs.String("stats", "", "comma-separated extra per-sample `stats` to show: extremums, median, iqr, std, or a percentile in [0, 100]")
		flagExpectSame  = fs.Bool("expect-same", false, "assume both files come from the same distribution and report false positive counts; useful for checking that a machine is quiesced enough")
		flagQuiet       = fs.Bool("quiet", false, "disable debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return 2
	}
	file1, file2 := fs.Arg(0), fs.Arg(1)
	metrics := fs.Args()[2:]

	var logger *slog.Logger
	if !*flagQuiet {
		logger = slog.New(slog.NewTextHandler(wErr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	fail := func(format string, args ...interface{}) int {
		fmt.Fprintf(wErr, "benchstats: "+format+"\n", args...)
		return 2
	}

	if *flagAlpha <= 0 || *flagAlpha > 0.5 {
		return fail("-alpha must be a positive number not greater than 0.5 (%v given)", *flagAlpha)
	}

	parse := func(path, parserID, filter string) (*benchparse.Stats, error) {
		if parserID == "" {
			parserID = *flagParser
		}
		opts := benchparse.Options{Metrics: metrics, Logger: logger}
		if filter != "" {
			re, err := regexp.Compile(filter)
			if err != nil {
				return nil, fmt.Errorf("bad benchmark name filter: %w", err)
			}
			opts.Filter = re
		}
		return benchparse.ParseFile(path, parserID, opts)
	}

	s1, err := parse(file1, *flagFile1Parser, *flagFilter1)
	if err != nil {
		return fail("%v", err)
	}
	s2, err := parse(file2, *flagFile2Parser, *flagFilter2)
	if err != nil {
		return fail("%v", err)
	}

	alpha := *flagAlpha
	if *flagBonferroni && s1.Len() > 1 {
		alpha = alpha / float64(s1.Len())
		if logger != nil {
			logger.Info("Bonferroni correction applied",
				"comparisons", s1.Len(), "alpha", *flagAlpha, "corrected", alpha)
		}
	}

	var mainMetrics []string
	if *flagMain != "" {
		mainMetrics = strings.Split(*flagMain, ",")
	}

	res, err := compare.Compare(s1, s2, &compare.Options{
		Method:      *flagMethod,
		Alpha:       alpha,
		MainMetrics: mainMetrics,
		Logger:      logger,
	})
	if err != nil {
		return fail("%v", err)
	}

	if len(res.Benchmarks) == 0 {
		fmt.Fprintf(wErr, "benchstats: warning: the input files have no overlapping benchmarks; nothing to compare\n")
	}
	for _, m := range mainMetrics {
		if !contains(res.Metrics(), m) {
			return fail("main metric %q is not among the compared metrics (%s)", m, strings.Join(res.Metrics(), ", "))
		}
	}

	cfg := &render.Config{
		ShowSampleSizes:   !*flagHideSizes,
		AlwaysShowPValues: *flagAllPValues,
		ExpectSame:        *flagExpectSame,
	}
	if *flagNoColors {
		cfg.Color = render.ColorNever
	}
	if *flagStats != "" {
		cfg.SampleStats = strings.Split(*flagStats, ",")
	}

	if err := render.Render(w, res, cfg); err != nil {
		return fail("%v", err)
	}

	if *flagExportTo != "" {
		if err := render.Export(*flagExportTo, *flagExportFmt, res, cfg, !*flagExportLight); err != nil {
			return fail("%v", err)
		}
	}

	if res.AtLeastOneDiffers {
		if logger != nil {
			logger.Info("at least one significant difference in main metrics was detected")
		}
		return 1
	}
	return 0
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
