// Copyright 2026 The benchstats Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchparse

import (
	"encoding/json"
	"fmt"
	"io"
)

// gbenchJSON parses Google Benchmark JSON reports. Run the benchmark
// binary with --benchmark_format=json (or --benchmark_out=... with
// --benchmark_out_format=json) and --benchmark_repetitions high enough
// for the statistical test to have something to work with.
type gbenchJSON struct {
	opts Options
}

// Parse reads a Google Benchmark JSON document. Only run_type ==
// "iteration" entries contribute values; the report's own aggregate
// rows (mean, median, stddev, cv) duplicate what the comparison
// derives from the raw repetitions. Time metrics are normalized to
// seconds using each entry's time_unit.
func (p *gbenchJSON) Parse(r io.Reader, fileName string) (*Stats, error) {
	var doc struct {
		Benchmarks []map[string]interface{} `json:"benchmarks"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}

	metrics := p.opts.Metrics
	if len(metrics) == 0 {
		metrics = []string{"real_time"}
	}

	st := NewStats()
	reps := 0
	for _, b := range doc.Benchmarks {
		if rt, _ := b["run_type"].(string); rt != "" && rt != "iteration" {
			continue
		}
		name, _ := b["run_name"].(string)
		if name == "" {
			name, _ = b["name"].(string)
		}
		if name == "" {
			continue
		}
		if p.opts.Filter != nil && !p.opts.Filter.MatchString(name) {
			continue
		}
		scale := timeUnitScale(b["time_unit"])
		for _, m := range metrics {
			v, ok := b[m].(float64)
			if !ok {
				// The metric can legitimately be absent, e.g. a
				// user counter reported by only some benchmarks.
				continue
			}
			if m == "real_time" || m == "cpu_time" {
				v *= scale
			}
			st.Add(name, m, v)
		}
		reps++
	}

	if p.opts.Logger != nil {
		p.opts.Logger.Debug("parsed Google Benchmark JSON",
			"file", fileName, "benchmarks", st.Len(), "repetitions", reps)
	}
	return st, nil
}

// timeUnitScale converts a Google Benchmark time_unit value to
// seconds. Google Benchmark reports nanoseconds when the unit is
// omitted.
func timeUnitScale(u interface{}) float64 {
	switch u {
	case "s":
		return 1
	case "ms":
		return 1e-3
	case "us":
		return 1e-6
	}
	return 1e-9
}
