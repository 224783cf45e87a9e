// Copyright 2026 The benchstats Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Readable formats v with an SI fraction suffix so the mantissa stays
// in [1, 1000), e.g. 0.01234 with prec 1 gives "12.34m". The width
// grows with prec so columns of values line up. Values below 1e-15
// (and zero) fall back to scientific notation.
func Readable(v float64, prec int) string {
	render := func(x float64) string {
		switch {
		case x >= 100:
			return fmt.Sprintf("%*.*f", prec+4, prec, x)
		case x >= 10:
			return fmt.Sprintf("%*.*f", prec+4, prec+1, x)
		default:
			return fmt.Sprintf("%*.*f", prec+4, prec+2, x)
		}
	}
	if v >= 1 {
		return render(v)
	}
	orig := v
	for _, suffix := range []string{"m", "u", "n", "p", "f"} {
		v *= 1000
		if v >= 1 {
			return render(v) + suffix
		}
	}
	return fmt.Sprintf("%.*e", prec, orig)
}

// sampleStatSpec describes one named sample statistic that can be
// requested via Config.SampleStats. matchLen is how many leading
// characters are enough to select it.
type sampleStatSpec struct {
	matchLen int
	percs    []float64
	std      bool
}

var sampleStatNames = map[string]sampleStatSpec{
	"extremums": {2, []float64{0, 100}, false},
	"median":    {3, []float64{50}, false},
	"iqr":       {2, []float64{25, 75}, false},
	"std":       {3, nil, true},
}

// parseSampleStats resolves the SampleStats config field into a
// deduplicated percentile list, a std flag, and the header suffix
// describing them (e.g. "[25%, 75%], std").
func parseSampleStats(specs []string) (percs []float64, useStd bool, hdr string, err error) {
	for _, spec := range specs {
		ls := strings.ToLower(strings.TrimSpace(spec))
		matched := false
		for name, d := range sampleStatNames {
			if len(ls) >= d.matchLen && name[:d.matchLen] == ls[:d.matchLen] {
				percs = append(percs, d.percs...)
				useStd = useStd || d.std
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		fv, perr := strconv.ParseFloat(ls, 64)
		if perr != nil {
			return nil, false, "", fmt.Errorf("unrecognized sample stat %q", spec)
		}
		if fv < 0 || fv > 100 {
			return nil, false, "", fmt.Errorf("sample stat percentile %q outside [0, 100]", spec)
		}
		percs = append(percs, fv)
	}
	if len(percs) == 0 && !useStd {
		return nil, false, "", nil
	}

	sort.Float64s(percs)
	percs = dedupe(percs)

	if len(percs) > 0 {
		parts := make([]string, len(percs))
		for i, p := range percs {
			parts[i] = neatNum(p) + "%"
		}
		hdr = "[" + strings.Join(parts, ", ") + "]"
	}
	if useStd {
		if hdr != "" {
			hdr += ", "
		}
		hdr += "std"
	}
	return percs, useStd, hdr, nil
}

func dedupe(xs []float64) []float64 {
	out := xs[:0]
	for i, x := range xs {
		if i == 0 || x != xs[i-1] {
			out = append(out, x)
		}
	}
	return out
}

func neatNum(v float64) string {
	if v == float64(int(v)) {
		return strconv.Itoa(int(v))
	}
	return fmt.Sprintf("%.2f", v)
}
