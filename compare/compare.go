// Copyright 2026 The benchstats Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compare decides, for every benchmark and metric two sets of
// measurements have in common, whether the two samples differ by more
// than chance.
//
// The engine is total over well-formed inputs: benchmarks or metrics
// present on one side only are skipped, and pairs the configured test
// cannot process are classified as "no significant difference" with a
// p-value of 1. The only errors Compare returns are configuration
// errors (unknown test method, alpha out of range).
package compare

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/Arech/benchstats/benchparse"
	"github.com/Arech/benchstats/stattest"
)

// DefaultAlpha is the significance level used when Options.Alpha is
// zero.
const DefaultAlpha = 0.05

// A Direction classifies the outcome of one benchmark/metric pair.
type Direction int

const (
	// Same means the test did not reject the null hypothesis at
	// the configured alpha, or the pair could not be tested.
	Same Direction = iota
	// Less means source 1's sample is significantly lower.
	Less
	// Greater means source 1's sample is significantly higher.
	Greater
)

// String returns "~", "<" or ">".
func (d Direction) String() string {
	switch d {
	case Less:
		return "<"
	case Greater:
		return ">"
	}
	return "~"
}

// An Outcome is the comparison result of one (benchmark, metric) pair.
type Outcome struct {
	// Direction tells whether source 1's sample is significantly
	// lower or higher than source 2's. Direction != Same exactly
	// when P < the result's Alpha.
	Direction Direction

	// P is the two-sided p-value of the test, or exactly 1 when
	// the pair could not be tested.
	P float64

	// Sample1 and Sample2 are the original measurement sets,
	// retained so renderers can derive means or percentiles
	// without re-reading the source.
	Sample1, Sample2 []float64

	// N1 and N2 are the sample sizes.
	N1, N2 int
}

// A Result holds the outcomes for every benchmark and metric the two
// sources have in common. It is built once by Compare and read-only
// afterwards.
type Result struct {
	// Method is the stattest registry id of the test used.
	Method string

	// Alpha is the significance level the outcomes were classified
	// with, exactly as passed in (any multiple-comparison
	// correction happens before the Compare call).
	Alpha float64

	// Benchmarks lists the compared benchmark names in source 1
	// first-seen order.
	Benchmarks []string

	// Outcomes maps benchmark name → metric name → outcome.
	Outcomes map[string]map[string]Outcome

	// MainMetrics is the metric subset AtLeastOneDiffers was
	// computed over.
	MainMetrics []string

	// AtLeastOneDiffers reports whether any main metric of any
	// benchmark has a direction other than Same. The CLI exits
	// with status 1 when it is true.
	AtLeastOneDiffers bool

	metrics []string
}

// Metrics returns the distinct metric names appearing in Outcomes, in
// first-seen source 1 order. Rendering uses it to lay out columns.
func (r *Result) Metrics() []string { return r.metrics }

// Options configures Compare.
type Options struct {
	// Method selects the significance test by its stattest.Methods
	// id. Empty means stattest.Default.
	Method string

	// Alpha is the significance level, in (0, 0.5]. Zero means
	// "unset" and maps to DefaultAlpha; any other value outside the
	// range, including a negative one, is a configuration error.
	// A Bonferroni-style correction, if desired, is
	// the caller's responsibility and must be applied to Alpha
	// before the call.
	Alpha float64

	// MainMetrics designates the metrics AtLeastOneDiffers is
	// computed over. Empty means the first metric of the result.
	MainMetrics []string

	// Logger receives diagnostics about skipped benchmarks and
	// untestable pairs. Nil disables them.
	Logger *slog.Logger
}

type pair struct {
	bench, metric string
	x1, x2        []float64
}

// Compare runs the configured significance test on every benchmark
// and metric present in both s1 and s2 and classifies each pair as
// Less, Greater or Same.
//
// Pairs with fewer than two observations on either side, and pairs
// the test cannot process (for example, every value identical on both
// sides), degrade to Same with P == 1 so a few under-sampled
// benchmarks never fail a whole suite. Compare has no side effects
// beyond optional diagnostic logging.
func Compare(s1, s2 *benchparse.Stats, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	methodID := opts.Method
	if methodID == "" {
		methodID = stattest.Default
	}
	method, ok := stattest.Methods[methodID]
	if !ok {
		return nil, fmt.Errorf("unknown method %q (have %s)", methodID, strings.Join(stattest.IDs(), ", "))
	}
	alpha := opts.Alpha
	if alpha == 0 {
		alpha = DefaultAlpha
	}
	if alpha <= 0 || alpha > 0.5 {
		return nil, fmt.Errorf("alpha must be a positive number not greater than 0.5, got %v", alpha)
	}

	res := &Result{
		Method:   methodID,
		Alpha:    alpha,
		Outcomes: make(map[string]map[string]Outcome),
	}

	// Collect the surviving pairs up front. Pair identity, not test
	// completion order, determines placement in Outcomes, so the
	// parallel phase below stays deterministic.
	var pairs []pair
	for _, bench := range s1.Benchmarks {
		m2, ok := s2.Samples[bench]
		if !ok {
			if opts.Logger != nil {
				opts.Logger.Debug("benchmark missing from source 2, skipped", "benchmark", bench)
			}
			continue
		}
		m1 := s1.Samples[bench]
		for _, metric := range s1.Metrics {
			x1, x2 := m1[metric], m2[metric]
			if len(x1) == 0 || len(x2) == 0 {
				if len(x1) != len(x2) && opts.Logger != nil {
					opts.Logger.Debug("metric present on one side only, skipped",
						"benchmark", bench, "metric", metric)
				}
				continue
			}
			pairs = append(pairs, pair{bench, metric, x1, x2})
		}
	}

	// Each pair's test is independent of all others; run them on a
	// bounded set of workers, the way table cells are summarized in
	// benchmark tabulation tools.
	outcomes := make([]Outcome, len(pairs))
	limit := make(chan struct{}, 2*runtime.GOMAXPROCS(-1))
	var wg sync.WaitGroup
	wg.Add(len(pairs))
	for i, p := range pairs {
		limit <- struct{}{}
		i, p := i, p
		go func() {
			outcomes[i] = testPair(method, alpha, p, opts.Logger)
			<-limit
			wg.Done()
		}()
	}
	wg.Wait()

	for i, p := range pairs {
		m := res.Outcomes[p.bench]
		if m == nil {
			m = make(map[string]Outcome)
			res.Outcomes[p.bench] = m
			res.Benchmarks = append(res.Benchmarks, p.bench)
		}
		m[p.metric] = outcomes[i]
		addString(&res.metrics, p.metric)
	}

	if len(res.Benchmarks) == 0 && opts.Logger != nil {
		opts.Logger.Warn("the sources have no overlapping benchmarks to compare")
	}

	main := opts.MainMetrics
	if len(main) == 0 && len(res.metrics) > 0 {
		main = res.metrics[:1]
	}
	res.MainMetrics = main
	for _, bench := range res.Benchmarks {
		for _, metric := range main {
			if o, ok := res.Outcomes[bench][metric]; ok && o.Direction != Same {
				res.AtLeastOneDiffers = true
			}
		}
	}
	return res, nil
}

// testPair classifies a single benchmark/metric pair.
func testPair(method *stattest.Method, alpha float64, p pair, logger *slog.Logger) Outcome {
	out := Outcome{P: 1, Sample1: p.x1, Sample2: p.x2, N1: len(p.x1), N2: len(p.x2)}

	if out.N1 < 2 || out.N2 < 2 {
		// Insufficient data is "undetermined", not an error: the
		// comparison must stay total over a whole suite even when
		// a few benchmarks are under-sampled.
		if logger != nil {
			logger.Debug("not enough repetitions to test, reporting no difference",
				"benchmark", p.bench, "metric", p.metric, "n1", out.N1, "n2", out.N2)
		}
		return out
	}

	pval, err := method.Test(p.x1, p.x2)
	if err != nil {
		if logger != nil {
			logger.Debug("test not computable, reporting no difference",
				"benchmark", p.bench, "metric", p.metric, "err", err)
		}
		return out
	}
	out.P = pval
	if pval >= alpha {
		return out
	}

	c1, c2 := method.Center(p.x1), method.Center(p.x2)
	switch {
	case c1 < c2:
		out.Direction = Less
	case c1 > c2:
		out.Direction = Greater
	default:
		// The test rejected the null hypothesis but the location
		// estimates are numerically equal. A well-behaved test
		// shouldn't get here; resolve deterministically.
		if logger != nil {
			logger.Debug("significant difference with equal location estimates, reporting greater",
				"benchmark", p.bench, "metric", p.metric, "p", pval)
		}
		out.Direction = Greater
	}
	return out
}

func addString(strs *[]string, add string) {
	for _, s := range *strs {
		if s == add {
			return
		}
	}
	*strs = append(*strs, add)
}
