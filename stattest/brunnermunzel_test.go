// Copyright 2026 The benchstats Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stattest

import (
	"errors"
	"math"
	"testing"

	"github.com/aclements/go-moremath/stats"
)

func TestBrunnerMunzel(t *testing.T) {
	// Reference values computed with scipy.stats.brunnermunzel
	// (two-sided, t-distribution approximation).
	x1 := []float64{1, 2, 1, 1, 1, 1, 1, 1, 1, 1, 2, 4, 1, 1}
	x2 := []float64{3, 3, 4, 3, 1, 2, 3, 1, 1, 5, 4}

	p, err := BrunnerMunzelTest(x1, x2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 0.0057862086661515377; math.Abs(p-want) > 1e-9 {
		t.Errorf("got p=%v, want %v", p, want)
	}

	// The two-sided p-value must not depend on the argument order.
	p2, err := BrunnerMunzelTest(x2, x1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(p-p2) > 1e-12 {
		t.Errorf("p changed with argument order: %v vs %v", p, p2)
	}
}

func TestBrunnerMunzelDegenerate(t *testing.T) {
	if _, err := BrunnerMunzelTest([]float64{1}, []float64{1, 2}); !errors.Is(err, stats.ErrSampleSize) {
		t.Errorf("got err=%v, want ErrSampleSize", err)
	}

	if _, err := BrunnerMunzelTest([]float64{1, 1, 1}, []float64{1, 1, 1}); !errors.Is(err, stats.ErrSamplesEqual) {
		t.Errorf("got err=%v, want ErrSamplesEqual", err)
	}

	// Constant, completely separated samples: no rank variance, but
	// the difference is as certain as it gets.
	p, err := BrunnerMunzelTest([]float64{1, 1, 1}, []float64{2, 2, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != 0 {
		t.Errorf("got p=%v for complete separation, want 0", p)
	}
}

func TestMidranks(t *testing.T) {
	got := midranks([]float64{10, 30, 20})
	want := []float64{1, 3, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("midranks without ties: got %v, want %v", got, want)
		}
	}

	// Ties share the mean of the rank range they span.
	got = midranks([]float64{1, 2, 2, 3})
	want = []float64{1, 2.5, 2.5, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("midranks with ties: got %v, want %v", got, want)
		}
	}

	got = midranks([]float64{5, 5, 5})
	for _, r := range got {
		if r != 2 {
			t.Fatalf("midranks all equal: got %v, want all 2", got)
		}
	}
}
