// Copyright 2026 The benchstats Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchparse reads benchmark tool output into the sample
// mapping consumed by package compare.
//
// A parser extracts, for every benchmark repetition, the values of a
// requested set of metrics. The result is a Stats: benchmark name →
// metric name → one measurement per repetition. Two Stats (a "before"
// and an "after") are the inputs of compare.Compare.
package benchparse

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Stats describes benchmarks and their measured metrics. It is
// produced by a Parser and consumed by compare.Compare.
type Stats struct {
	// Benchmarks lists benchmark names in first-seen order.
	Benchmarks []string

	// Metrics lists metric names in first-seen order.
	Metrics []string

	// Samples maps benchmark name → metric name → measured values,
	// one per repetition.
	Samples map[string]map[string][]float64
}

// NewStats returns an empty Stats.
func NewStats() *Stats {
	return &Stats{Samples: make(map[string]map[string][]float64)}
}

// Add appends vals to the sample of the given benchmark and metric.
func (s *Stats) Add(bench, metric string, vals ...float64) {
	m, ok := s.Samples[bench]
	if !ok {
		m = make(map[string][]float64)
		s.Samples[bench] = m
		s.Benchmarks = append(s.Benchmarks, bench)
	}
	if _, ok := m[metric]; !ok {
		addString(&s.Metrics, metric)
	}
	m[metric] = append(m[metric], vals...)
}

// Len returns the number of benchmarks.
func (s *Stats) Len() int { return len(s.Benchmarks) }

func addString(strs *[]string, add string) {
	for _, s := range *strs {
		if s == add {
			return
		}
	}
	*strs = append(*strs, add)
}

// Options configures a Parser.
type Options struct {
	// Filter selects benchmarks by name. Nil selects all.
	Filter *regexp.Regexp

	// Metrics lists the metric names to extract for each benchmark
	// repetition. Empty means the parser's default metric.
	Metrics []string

	// Logger receives parsing diagnostics. Nil disables them.
	Logger *slog.Logger
}

// A Parser reads benchmark results from one source.
type Parser interface {
	// Parse reads benchmark results from r. fileName is used in
	// error messages; it is purely diagnostic.
	Parse(r io.Reader, fileName string) (*Stats, error)
}

// A Format describes a built-in parser.
type Format struct {
	// Name is a human-readable description of the input format.
	Name string

	// New constructs a parser for the format.
	New func(opts Options) Parser
}

// Formats is the registry of built-in parsers, keyed by id. Adding a
// format here is all it takes to make it selectable from the CLI.
var Formats = map[string]*Format{
	"gbenchjson": {
		Name: "Google Benchmark --benchmark_format=json output",
		New:  func(opts Options) Parser { return &gbenchJSON{opts} },
	},
	"gotest": {
		Name: "Go testing -bench output",
		New:  func(opts Options) Parser { return &goTest{opts} },
	},
}

// Default is the format id used when the caller does not choose one.
const Default = "gbenchjson"

// IDs returns the registered format ids in a stable order.
func IDs() []string {
	ids := make([]string, 0, len(Formats))
	for id := range Formats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ForID returns the registered format for id.
func ForID(id string) (*Format, error) {
	f, ok := Formats[id]
	if !ok {
		return nil, fmt.Errorf("unknown parser %q (have %s)", id, strings.Join(IDs(), ", "))
	}
	return f, nil
}

// ParseFile parses the named file with the format registered under id.
func ParseFile(path, id string, opts Options) (*Stats, error) {
	format, err := ForID(id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return format.New(opts).Parse(f, path)
}
