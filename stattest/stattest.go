// Copyright 2026 The benchstats Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stattest catalogs the two-sample statistical significance
// tests the comparison engine can apply.
//
// Benchmark timings are typically right-skewed and non-normal, so the
// default is a ranked non-parametric test. The Welch t-test is offered
// for callers who know their metric is close to normally distributed.
package stattest

import (
	"sort"

	"github.com/aclements/go-moremath/stats"
)

// A Method is a two-sample statistical significance test together
// with its display metadata.
type Method struct {
	// Name is the method's display name.
	Name string

	// URL references a description of the method.
	URL string

	// Test returns the two-sided p-value of the null hypothesis
	// that x1 and x2 come from the same distribution. The sample
	// sizes do not have to match. An error means the test cannot
	// be computed on these inputs (too few observations, all
	// values identical), not that the program failed.
	Test func(x1, x2 []float64) (float64, error)

	// Center is the location estimator the test is sensitive to.
	// A detected difference gets its direction from comparing the
	// two samples' Center values.
	Center func(xs []float64) float64
}

// Methods is the registry of built-in methods, keyed by id. Adding a
// method here is all it takes to make it available to the engine and
// the CLI.
var Methods = map[string]*Method{
	"utest": {
		Name:   "Mann-Whitney U test",
		URL:    "https://en.wikipedia.org/wiki/Mann%E2%80%93Whitney_U_test",
		Test:   uTest,
		Center: median,
	},
	"bmtest": {
		Name:   "Brunner-Munzel test",
		URL:    "https://en.wikipedia.org/wiki/Brunner_Munzel_Test",
		Test:   BrunnerMunzelTest,
		Center: median,
	},
	"ttest": {
		Name:   "Welch's t-test",
		URL:    "https://en.wikipedia.org/wiki/Welch%27s_t-test",
		Test:   tTest,
		Center: mean,
	},
}

// Default is the method id used when the caller does not choose one.
const Default = "utest"

// IDs returns the registered method ids in a stable order.
func IDs() []string {
	ids := make([]string, 0, len(Methods))
	for id := range Methods {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func uTest(x1, x2 []float64) (float64, error) {
	res, err := stats.MannWhitneyUTest(x1, x2, stats.LocationDiffers)
	if err != nil {
		return 1, err
	}
	return res.P, nil
}

func tTest(x1, x2 []float64) (float64, error) {
	res, err := stats.TwoSampleWelchTTest(
		stats.Sample{Xs: x1}, stats.Sample{Xs: x2}, stats.LocationDiffers)
	if err != nil {
		return 1, err
	}
	return res.P, nil
}

func mean(xs []float64) float64 { return stats.Mean(xs) }

func median(xs []float64) float64 {
	return stats.Sample{Xs: xs}.Quantile(0.5)
}
