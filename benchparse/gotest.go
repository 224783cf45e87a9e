// Copyright 2026 The benchstats Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchparse

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// goTest parses the text output of Go's testing package, i.e. the
// concatenated output of repeated "go test -bench" runs. Each value
// line has the form
//
//	BenchmarkName-8   100   13552735 ns/op   56.63 MB/s
//
// and every trailing value/unit pair is a metric. ns/op is normalized
// to seconds and reported as sec/op; all other units keep their name.
type goTest struct {
	opts Options
}

func (p *goTest) Parse(r io.Reader, fileName string) (*Stats, error) {
	st := NewStats()
	lines := 0
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) < 4 || !strings.HasPrefix(f[0], "Benchmark") {
			continue
		}
		name := strings.TrimPrefix(f[0], "Benchmark")
		if n, _ := strconv.Atoi(f[1]); n == 0 {
			continue
		}
		if p.opts.Filter != nil && !p.opts.Filter.MatchString(name) {
			continue
		}
		lines++
		for i := 2; i+2 <= len(f); i += 2 {
			val, err := strconv.ParseFloat(f[i], 64)
			if err != nil {
				continue
			}
			unit := f[i+1]
			if unit == "ns/op" {
				unit, val = "sec/op", val*1e-9
			}
			if !p.wantMetric(unit) {
				continue
			}
			st.Add(name, unit, val)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}

	if p.opts.Logger != nil {
		p.opts.Logger.Debug("parsed Go benchmark output",
			"file", fileName, "benchmarks", st.Len(), "lines", lines)
	}
	return st, nil
}

func (p *goTest) wantMetric(unit string) bool {
	if len(p.opts.Metrics) == 0 {
		return unit == "sec/op"
	}
	for _, m := range p.opts.Metrics {
		if m == unit {
			return true
		}
	}
	return false
}
