// Copyright 2026 The benchstats Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stattest

import (
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
)

// BrunnerMunzelTest performs the Brunner-Munzel generalized Wilcoxon
// test on samples x1 and x2 and returns the two-sided p-value of the
// null hypothesis that neither sample tends to yield larger values
// than the other. Unlike the Mann-Whitney U test it does not assume
// equal variances of the two distributions.
//
// The p-value uses the t-distribution approximation with
// Satterthwaite degrees of freedom from Brunner and Munzel (2000),
// "The Nonparametric Behrens-Fisher Problem: Asymptotic Theory and a
// Small-Sample Approximation". The approximation is recommended for
// roughly 10 or more observations per side, but stays usable below
// that.
func BrunnerMunzelTest(x1, x2 []float64) (float64, error) {
	n1, n2 := len(x1), len(x2)
	if n1 < 2 || n2 < 2 {
		return 1, stats.ErrSampleSize
	}

	// Midranks in the pooled sample and within each sample.
	pooled := make([]float64, 0, n1+n2)
	pooled = append(append(pooled, x1...), x2...)
	rp := midranks(pooled)
	r1, r2 := midranks(x1), midranks(x2)

	m1 := stats.Mean(rp[:n1])
	m2 := stats.Mean(rp[n1:])

	var v1, v2 float64
	for i, r := range rp[:n1] {
		d := r - r1[i] - m1 + float64(n1+1)/2
		v1 += d * d
	}
	v1 /= float64(n1 - 1)
	for i, r := range rp[n1:] {
		d := r - r2[i] - m2 + float64(n2+1)/2
		v2 += d * d
	}
	v2 /= float64(n2 - 1)

	den := float64(n1)*v1 + float64(n2)*v2
	if den == 0 {
		// No rank variance at all. Either every pooled value is
		// identical, or the samples are constant and completely
		// separated; the t approximation degenerates either way.
		if m1 == m2 {
			return 1, stats.ErrSamplesEqual
		}
		return 0, nil
	}

	w := float64(n1) * float64(n2) * (m2 - m1) / (float64(n1+n2) * math.Sqrt(den))
	df := den * den /
		((float64(n1)*v1)*(float64(n1)*v1)/float64(n1-1) +
			(float64(n2)*v2)*(float64(n2)*v2)/float64(n2-1))

	dist := stats.TDist{V: df}
	p := 2 * math.Min(dist.CDF(w), 1-dist.CDF(w))
	return math.Min(p, 1), nil
}

// midranks returns the 1-based ranks of xs, assigning tied values the
// mean of the rank range they span.
func midranks(xs []float64) []float64 {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	ranks := make([]float64, len(xs))
	for i := 0; i < len(idx); {
		j := i + 1
		for j < len(idx) && xs[idx[j]] == xs[idx[i]] {
			j++
		}
		r := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = r
		}
		i = j
	}
	return ranks
}
