// Copyright 2026 The benchstats Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package render turns a compare.Result into a fixed-width table,
// optionally colorized, and exports it to text, SVG or HTML files.
package render

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/aclements/go-moremath/stats"
	"github.com/mattn/go-isatty"

	"github.com/Arech/benchstats/compare"
	"github.com/Arech/benchstats/stattest"
)

// A ColorMode controls ANSI color output.
type ColorMode int

const (
	// ColorAuto enables colors when the output is a terminal.
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// Styles selects the ANSI styles applied to table elements. Empty
// fields leave the element unstyled. A style must be a complete ANSI
// SGR sequence ("\x1b[...m").
type Styles struct {
	// BenchNameDiffMain styles a benchmark name when one of its
	// main metrics differs.
	BenchNameDiffMain string
	// BenchNameDiffScnd styles a benchmark name when only a
	// secondary metric differs.
	BenchNameDiffScnd string
	// MetricMainDiff styles a differing main-metric cell.
	MetricMainDiff string
	// MetricScndDiff styles a differing secondary-metric cell.
	MetricScndDiff string
	// DiffSign is added to the comparison sign of a differing
	// cell.
	DiffSign string
}

// DefaultStyles is the style set used when Config.Styles is nil.
var DefaultStyles = Styles{
	BenchNameDiffMain: "\x1b[91m", // bright red
	BenchNameDiffScnd: "\x1b[33m", // yellow
	MetricMainDiff:    "\x1b[31m", // red
	MetricScndDiff:    "\x1b[33m", // yellow
	DiffSign:          "\x1b[1m",  // bold
}

// Config configures Render. The zero value is usable; fields default
// as documented.
type Config struct {
	// Color controls ANSI color output. Default: ColorAuto.
	Color ColorMode

	// MainMetrics overrides the result's main metric set for
	// display ordering and name highlighting. Empty uses the
	// result's own.
	MainMetrics []string

	// ShowSampleSizes appends "(n1 vs n2)" to every cell.
	ShowSampleSizes bool

	// AlwaysShowPValues prints the p-value for every pair instead
	// of only for differing ones.
	AlwaysShowPValues bool

	// ExpectSame appends a per-metric false positive summary,
	// assuming the two sources come from the same distribution.
	// Useful for checking that a benchmark setup is quiesced.
	ExpectSame bool

	// SampleStats lists extra per-sample statistics to show in
	// each cell: "extremums", "median", "iqr", "std", or a numeric
	// percentile in [0, 100].
	SampleStats []string

	// Title is printed above the table. Empty means a default
	// title naming the method and alpha; "-" disables the title.
	Title string

	// MetricPrecision is the number of significant decimal digits
	// for the shortest mantissa form. Default 1.
	MetricPrecision int

	// PValueFormat is the fmt verb for p-values. Default "%.5f".
	PValueFormat string

	// PValueFormatGeneric replaces PValueFormat when alpha itself
	// would render as zero under it. Default "%.1e".
	PValueFormatGeneric string

	// DefaultUnit is the suffix appended to metric values that
	// have no entry in MetricUnits. Default "s": the built-in
	// parsers normalize time metrics to seconds.
	DefaultUnit string

	// MetricUnits maps a metric name to its unit suffix.
	MetricUnits map[string]string

	// Styles overrides DefaultStyles.
	Styles *Styles

	percs   []float64
	useStd  bool
	statHdr string
}

// validate resolves defaults and checks the configuration. It is
// called by Render; calling it earlier surfaces errors before any
// output is produced.
func (c *Config) validate() error {
	if c.MetricPrecision == 0 {
		c.MetricPrecision = 1
	}
	if c.MetricPrecision < 0 {
		return fmt.Errorf("metric precision must be positive, got %d", c.MetricPrecision)
	}
	if c.PValueFormat == "" {
		c.PValueFormat = "%.5f"
	}
	if c.PValueFormatGeneric == "" {
		c.PValueFormatGeneric = "%.1e"
	}
	if c.DefaultUnit == "" {
		c.DefaultUnit = "s"
	}
	st := c.styles()
	for _, s := range []string{st.BenchNameDiffMain, st.BenchNameDiffScnd, st.MetricMainDiff, st.MetricScndDiff, st.DiffSign} {
		if s != "" && !isSGR(s) {
			return fmt.Errorf("style %q is not an ANSI SGR sequence", s)
		}
	}
	var err error
	c.percs, c.useStd, c.statHdr, err = parseSampleStats(c.SampleStats)
	return err
}

func (c *Config) styles() *Styles {
	if c.Styles == nil {
		return &DefaultStyles
	}
	return c.Styles
}

func isSGR(s string) bool {
	return len(s) >= 3 && s[0] == '\x1b' && s[1] == '[' && s[len(s)-1] == 'm'
}

func (c *Config) colorEnabled(w io.Writer) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// pvalFormat picks the p-value format: the fixed one, unless alpha is
// so small it would print as zero under it.
func (c *Config) pvalFormat(alpha float64) string {
	v, err := strconv.ParseFloat(fmt.Sprintf(c.PValueFormat, alpha), 64)
	if err == nil && v == 0 {
		return c.PValueFormatGeneric
	}
	return c.PValueFormat
}

// A frag is a run of text with one style.
type frag struct {
	text, style string
}

type cell struct {
	frags []frag
}

func (c *cell) add(text, style string) {
	if text != "" {
		c.frags = append(c.frags, frag{text, style})
	}
}

func (c *cell) width() int {
	n := 0
	for _, f := range c.frags {
		n += utf8.RuneCountInString(f.text)
	}
	return n
}

func (c *cell) emit(color bool) string {
	var out string
	for _, f := range c.frags {
		if color && f.style != "" {
			out += f.style + f.text + "\x1b[0m"
		} else {
			out += f.text
		}
	}
	return out
}

// Render writes res to w as a fixed-width table: one row per
// benchmark, one column per metric, main metrics first.
func Render(w io.Writer, res *compare.Result, cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	color := cfg.colorEnabled(w)
	st := cfg.styles()

	main, metrics := metricOrder(res, cfg)
	pfmt := cfg.pvalFormat(res.Alpha)
	prec := cfg.MetricPrecision

	bw := bufio.NewWriter(w)
	if title := cfg.title(res, pfmt); title != "" {
		fmt.Fprintf(bw, "%s\n", title)
	}

	// Header row.
	var rows [][]cell
	hdr := []cell{textCell("Benchmark", "")}
	for _, m := range metrics {
		h := m + " (means)"
		if cfg.statHdr != "" {
			h += ", " + cfg.statHdr
		}
		hdr = append(hdr, textCell(h, ""))
	}
	rows = append(rows, hdr)

	// Benchmark rows. Also count the would-be false positives for
	// the ExpectSame summary.
	fpLess := make(map[string]int)
	fpGreater := make(map[string]int)
	for _, bench := range res.Benchmarks {
		outs := res.Outcomes[bench]
		diffMain, diffScnd := false, false
		for i, m := range metrics {
			if o, ok := outs[m]; ok && o.Direction != compare.Same {
				if i < len(main) {
					diffMain = true
				} else {
					diffScnd = true
				}
			}
		}
		nameStyle := ""
		if diffMain {
			nameStyle = st.BenchNameDiffMain
		} else if diffScnd {
			nameStyle = st.BenchNameDiffScnd
		}

		row := []cell{textCell(bench, nameStyle)}
		for i, m := range metrics {
			o, ok := outs[m]
			if !ok {
				row = append(row, cell{})
				continue
			}
			isMain := i < len(main)
			isDiff := o.Direction != compare.Same
			style := ""
			if isDiff {
				if isMain {
					style = st.MetricMainDiff
				} else {
					style = st.MetricScndDiff
				}
				if o.Direction == compare.Less {
					fpLess[m]++
				} else {
					fpGreater[m]++
				}
			}
			row = append(row, cfg.formatCell(o, m, style, isDiff, pfmt, prec))
		}
		rows = append(rows, row)
	}

	// Column widths from the unstyled text.
	var max []int
	for _, row := range rows {
		for len(max) < len(row) {
			max = append(max, 0)
		}
		for i := range row {
			if n := row[i].width(); n > max[i] {
				max[i] = n
			}
		}
	}

	for _, row := range rows {
		for i := range row {
			pad := max[i] - row[i].width()
			if i > 0 {
				fmt.Fprint(bw, "  ")
			}
			if i == len(row)-1 {
				pad = 0
			}
			fmt.Fprintf(bw, "%s%*s", row[i].emit(color), pad, "")
		}
		fmt.Fprintln(bw)
	}

	if cfg.ExpectSame {
		renderExpectSame(bw, len(res.Benchmarks), metrics, fpLess, fpGreater)
	}
	return bw.Flush()
}

func textCell(text, style string) cell {
	var c cell
	c.add(text, style)
	return c
}

// metricOrder returns the effective main metric set and the full
// display order (main metrics first, then the rest in result order).
func metricOrder(res *compare.Result, cfg *Config) (main, all []string) {
	want := cfg.MainMetrics
	if len(want) == 0 {
		want = res.MainMetrics
	}
	have := res.Metrics()
	for _, m := range want {
		for _, h := range have {
			if m == h {
				main = append(main, m)
				break
			}
		}
	}
	all = append(all, main...)
	for _, h := range have {
		inMain := false
		for _, m := range main {
			if m == h {
				inMain = true
				break
			}
		}
		if !inMain {
			all = append(all, h)
		}
	}
	return main, all
}

func (c *Config) title(res *compare.Result, pfmt string) string {
	if c.Title == "-" {
		return ""
	}
	if c.Title != "" {
		return c.Title
	}
	method := stattest.Methods[res.Method]
	if method == nil {
		return fmt.Sprintf("Benchmark comparison results (%s, alpha="+pfmt+")", res.Method, res.Alpha)
	}
	return fmt.Sprintf("Benchmark comparison results (%s, alpha="+pfmt+")", method.Name, res.Alpha)
}

func (c *Config) unit(metric string) string {
	if u, ok := c.MetricUnits[metric]; ok {
		return u
	}
	return c.DefaultUnit
}

func (c *Config) formatCell(o compare.Outcome, metric, style string, isDiff bool, pfmt string, prec int) cell {
	unit := c.unit(metric)
	sign := o.Direction.String()
	signStyle := style
	if isDiff {
		signStyle = style + c.styles().DiffSign
	}

	var out cell
	out.add(Readable(stats.Mean(o.Sample1), prec)+unit+" ", style)
	out.add(sign, signStyle)
	out.add(" "+Readable(stats.Mean(o.Sample2), prec)+unit, style)

	if len(c.percs) > 0 || c.useStd {
		out.add(fmt.Sprintf(" %s %s %s", c.sampleStats(o.Sample1, prec), sign, c.sampleStats(o.Sample2, prec)), style)
	}

	if c.AlwaysShowPValues || isDiff {
		pstr := fmt.Sprintf(pfmt, o.P)
		// A trailing plus marks a p-value that rounds to zero but
		// is not a true zero.
		trail := ""
		if v, err := strconv.ParseFloat(pstr, 64); err == nil && v == 0 && o.P != 0 {
			trail = "+"
		}
		out.add(" p="+pstr+trail, style)
	}

	if c.ShowSampleSizes {
		out.add(fmt.Sprintf(" (%d vs %d)", o.N1, o.N2), style)
	}
	return out
}

// sampleStats formats the configured percentiles and standard
// deviation of one sample.
func (c *Config) sampleStats(xs []float64, prec int) string {
	sample := stats.Sample{Xs: xs}
	s := ""
	if len(c.percs) > 0 {
		s = "["
		for i, p := range c.percs {
			if i > 0 {
				s += ","
			}
			s += Readable(sample.Quantile(p/100), prec)
		}
		s += "]"
	}
	if c.useStd {
		if s != "" {
			s += ","
		}
		s += Readable(sample.StdDev(), prec)
	}
	return s
}

func renderExpectSame(w io.Writer, total int, metrics []string, fpLess, fpGreater map[string]int) {
	fmt.Fprintf(w, "Assuming (!!!) that the underlying data generator is the same for both benchmark sets,\n")
	fmt.Fprintf(w, "here's the number of false positives per metric for %d tests:\n", total)
	if total == 0 {
		return
	}
	width := int(math.Ceil(math.Log10(float64(total + 1))))
	for _, m := range metrics {
		l, g := fpLess[m], fpGreater[m]
		fmt.Fprintf(w, "%-10s: for < %*d (%4.1f%%) for > %*d (%4.1f%%)\n",
			m, width, l, float64(l*100)/float64(total), width, g, float64(g*100)/float64(total))
	}
}
