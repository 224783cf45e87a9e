// Copyright 2026 The benchstats Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// run invokes the tool with testing-friendly streams and returns the
// exit code plus captured stdout and stderr.
func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = benchstats(&out, &errOut, args)
	return code, out.String(), errOut.String()
}

func TestDifferenceDetected(t *testing.T) {
	code, out, _ := run(t, "-quiet", "-no-colors",
		"testdata/old.json", "testdata/new.json")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	for _, want := range []string{
		"BM_differs", "BM_same",
		"10.45ms < 20.45ms", "p=0.0",
		"5.450ms ~ 5.450ms",
		"(10 vs 10)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestNoDifference(t *testing.T) {
	code, out, _ := run(t, "-quiet", "-no-colors",
		"testdata/old.json", "testdata/old.json")
	if code != 0 {
		t.Errorf("exit code = %d, want 0:\n%s", code, out)
	}
	if strings.Contains(out, "<") || strings.Contains(out, ">") {
		t.Errorf("identical files reported a difference:\n%s", out)
	}
}

func TestMetricsArgs(t *testing.T) {
	// cpu_time differs too; making it the only metric still exits 1.
	code, out, _ := run(t, "-quiet", "-no-colors",
		"testdata/old.json", "testdata/new.json", "cpu_time")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(out, "cpu_time (means)") {
		t.Errorf("requested metric missing from output:\n%s", out)
	}
	if strings.Contains(out, "real_time") {
		t.Errorf("unrequested metric in output:\n%s", out)
	}
}

func TestMainMetricGate(t *testing.T) {
	// With cpu_time as the sole main metric and a filter keeping only
	// the quiesced benchmark, nothing differs.
	code, _, _ := run(t, "-quiet", "-no-colors",
		"-filter1", "^BM_same$", "-filter2", "^BM_same$",
		"testdata/old.json", "testdata/new.json", "real_time", "cpu_time")
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}

	code, _, stderr := run(t, "-quiet", "-no-colors", "-main", "nonexistent",
		"testdata/old.json", "testdata/new.json")
	if code != 2 || !strings.Contains(stderr, "main metric") {
		t.Errorf("exit code = %d, stderr = %q, want 2 with a main metric error", code, stderr)
	}
}

func TestGoTestInput(t *testing.T) {
	code, out, _ := run(t, "-quiet", "-no-colors", "-parser", "gotest",
		"testdata/old.txt", "testdata/new.txt")
	if code != 1 {
		t.Errorf("exit code = %d, want 1:\n%s", code, out)
	}
	if !strings.Contains(out, "Parse-8") || !strings.Contains(out, "sec/op (means)") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestBonferroni(t *testing.T) {
	// Two compared benchmarks, so alpha halves; the difference is
	// far below even the corrected threshold.
	code, _, stderr := run(t, "-bonferroni",
		"testdata/old.json", "testdata/new.json")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "Bonferroni") || !strings.Contains(stderr, "corrected=0.025") {
		t.Errorf("correction not logged:\n%s", stderr)
	}
}

func TestQuiet(t *testing.T) {
	_, _, stderr := run(t, "-quiet", "-no-colors",
		"testdata/old.json", "testdata/new.json")
	if stderr != "" {
		t.Errorf("quiet run wrote to stderr:\n%s", stderr)
	}
	_, _, stderr = run(t, "-no-colors",
		"testdata/old.json", "testdata/new.json")
	if !strings.Contains(stderr, "level=DEBUG") {
		t.Errorf("default run produced no debug logging:\n%s", stderr)
	}
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	code, _, _ := run(t, "-quiet", "-no-colors", "-export-to", path,
		"testdata/old.json", "testdata/new.json")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	if !strings.Contains(string(data), "<table") || !strings.Contains(string(data), `class="dark"`) {
		t.Errorf("unexpected export contents:\n%.300s", data)
	}

	path = filepath.Join(t.TempDir(), "report")
	code, _, stderr := run(t, "-quiet", "-no-colors",
		"-export-to", path, "-export-fmt", "svg", "-export-light",
		"testdata/old.json", "testdata/new.json")
	if code != 1 {
		t.Errorf("exit code = %d, want 1 (stderr: %s)", code, stderr)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Errorf("explicit -export-fmt did not produce SVG:\n%.200s", data)
	}
}

func TestConfigErrors(t *testing.T) {
	tests := [][]string{
		{},
		{"testdata/old.json"},
		{"-alpha", "0.7", "testdata/old.json", "testdata/new.json"},
		{"-alpha", "-0.1", "testdata/old.json", "testdata/new.json"},
		{"-method", "voodoo", "testdata/old.json", "testdata/new.json"},
		{"-parser", "morse", "testdata/old.json", "testdata/new.json"},
		{"-filter1", "*bad[", "testdata/old.json", "testdata/new.json"},
		{"-export-to", "report.dat", "testdata/old.json", "testdata/new.json"},
		{"testdata/nonexistent.json", "testdata/new.json"},
		{"-parser", "gbenchjson", "testdata/old.txt", "testdata/new.txt"},
	}
	for _, args := range tests {
		args = append([]string{"-quiet", "-no-colors"}, args...)
		if code, out, _ := run(t, args...); code != 2 {
			t.Errorf("args %v: exit code = %d, want 2\n%s", args, code, out)
		}
	}
}

func TestStatsFlag(t *testing.T) {
	code, out, _ := run(t, "-quiet", "-no-colors", "-stats", "iqr,std",
		"testdata/old.json", "testdata/new.json")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(out, "[25%, 75%], std") {
		t.Errorf("sample stats header missing:\n%s", out)
	}
}

func TestExpectSame(t *testing.T) {
	code, out, _ := run(t, "-quiet", "-no-colors", "-expect-same",
		"testdata/old.json", "testdata/old.json")
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if !strings.Contains(out, "false positives per metric for 2 tests") {
		t.Errorf("expect-same summary missing:\n%s", out)
	}
}
