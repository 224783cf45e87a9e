// Copyright 2026 The benchstats Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/safehtml/template"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/Arech/benchstats/compare"
)

// ExportFormats lists the supported export file formats.
var ExportFormats = []string{"txt", "svg", "html"}

// DetectFormat returns format, or the format inferred from path's
// extension when format is empty.
func DetectFormat(path, format string) (string, error) {
	if format != "" {
		for _, f := range ExportFormats {
			if f == format {
				return format, nil
			}
		}
		return "", fmt.Errorf("unknown export format %q (have %s)", format, strings.Join(ExportFormats, ", "))
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	for _, f := range ExportFormats {
		if f == ext {
			return f, nil
		}
	}
	return "", fmt.Errorf("cannot infer export format from extension of %q", path)
}

// Export writes res to the named file. format must be one of
// ExportFormats or empty to infer it from path's extension. dark
// selects the dark theme for svg and html output.
func Export(path, format string, res *compare.Result, cfg *Config, dark bool) error {
	format, err := DetectFormat(path, format)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch format {
	case "txt":
		err = exportText(f, res, cfg)
	case "svg":
		err = exportSVG(f, res, cfg, dark)
	case "html":
		err = exportHTML(f, res, cfg, dark)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("exporting to %s: %w", path, err)
	}
	return f.Close()
}

func exportText(w io.Writer, res *compare.Result, cfg *Config) error {
	plain := *cfg
	plain.Color = ColorNever
	return Render(w, res, &plain)
}

// Dark and light themes for the rendered exports.
var (
	darkBG  = color.RGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff}
	darkFG  = color.RGBA{R: 0xdc, G: 0xdc, B: 0xdc, A: 0xff}
	lightBG = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	lightFG = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}
)

// exportSVG draws the plain-text rendering line by line onto an SVG
// canvas in a monospace face.
func exportSVG(w io.Writer, res *compare.Result, cfg *Config, dark bool) error {
	var buf bytes.Buffer
	if err := exportText(&buf, res, cfg); err != nil {
		return err
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	const fontSize = vg.Length(12)
	const margin = vg.Length(8)
	lineH := fontSize * 14 / 10

	maxLen := 0
	for _, l := range lines {
		if len(l) > maxLen {
			maxLen = len(l)
		}
	}
	// Liberation Mono advances 0.6 em per glyph.
	width := vg.Length(maxLen)*fontSize*6/10 + 2*margin
	height := vg.Length(len(lines))*lineH + 2*margin

	bg, fg := lightBG, lightFG
	if dark {
		bg, fg = darkBG, darkFG
	}

	c := vgsvg.New(width, height)
	var p vg.Path
	p.Move(vg.Point{X: 0, Y: 0})
	p.Line(vg.Point{X: width, Y: 0})
	p.Line(vg.Point{X: width, Y: height})
	p.Line(vg.Point{X: 0, Y: height})
	p.Close()
	c.SetColor(bg)
	c.Fill(p)

	face := font.NewCache(liberation.Collection()).Lookup(
		font.Font{Typeface: "Liberation", Variant: "Mono"}, fontSize)
	c.SetColor(fg)
	for i, line := range lines {
		y := height - margin - lineH*vg.Length(i+1)
		c.FillString(face, vg.Point{X: margin, Y: y}, line)
	}
	_, err := c.WriteTo(w)
	return err
}

var htmlTemplate = template.Must(template.New("benchstats").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body.dark { background: #1e1e1e; color: #dcdcdc; }
body.light { background: #ffffff; color: #101010; }
.benchstats { border-collapse: collapse; font-family: monospace; }
.benchstats th, .benchstats td { text-align: left; padding: 0.2em 1em; }
.benchstats th { border-bottom: 1px solid #888; }
.benchstats .diff-main { color: #e03030; font-weight: bold; }
.benchstats .diff-scnd { color: #c0a020; }
</style>
</head>
<body class="{{.Theme}}">
<p>{{.Title}}</p>
<table class="benchstats">
<tr><th>Benchmark{{range .Header}}<th>{{.}}{{end}}
{{range .Rows}}<tr><td class="{{.NameClass}}">{{.Name}}{{range .Cells}}<td class="{{.Class}}">{{.Text}}{{end}}
{{end}}</table>
</body>
</html>
`))

type htmlCell struct {
	Class, Text string
}

type htmlRow struct {
	Name, NameClass string
	Cells           []htmlCell
}

type htmlDoc struct {
	Title  string
	Theme  string
	Header []string
	Rows   []htmlRow
}

func exportHTML(w io.Writer, res *compare.Result, cfg *Config, dark bool) error {
	plain := *cfg
	plain.Color = ColorNever
	if err := plain.validate(); err != nil {
		return err
	}
	main, metrics := metricOrder(res, &plain)
	pfmt := plain.pvalFormat(res.Alpha)

	doc := htmlDoc{
		Title: plain.title(res, pfmt),
		Theme: "light",
	}
	if dark {
		doc.Theme = "dark"
	}
	for _, m := range metrics {
		h := m + " (means)"
		if plain.statHdr != "" {
			h += ", " + plain.statHdr
		}
		doc.Header = append(doc.Header, h)
	}

	for _, bench := range res.Benchmarks {
		outs := res.Outcomes[bench]
		row := htmlRow{Name: bench}
		for i, m := range metrics {
			o, ok := outs[m]
			if !ok {
				row.Cells = append(row.Cells, htmlCell{})
				continue
			}
			isMain := i < len(main)
			class := ""
			if o.Direction != compare.Same {
				if isMain {
					class, row.NameClass = "diff-main", "diff-main"
				} else {
					class = "diff-scnd"
					if row.NameClass == "" {
						row.NameClass = "diff-scnd"
					}
				}
			}
			c := plain.formatCell(o, m, "", o.Direction != compare.Same, pfmt, plain.MetricPrecision)
			var text strings.Builder
			for _, f := range c.frags {
				text.WriteString(f.text)
			}
			row.Cells = append(row.Cells, htmlCell{Class: class, Text: text.String()})
		}
		doc.Rows = append(doc.Rows, row)
	}
	return htmlTemplate.Execute(w, doc)
}
