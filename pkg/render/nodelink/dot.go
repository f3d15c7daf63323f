// Package nodelink renders a profile graph as a node-link diagram.
//
// Nodes are boxes filled by the same six-band metric bucketing the
// console tree uses, so a DOT or SVG export reads like the colored
// tree laid out spatially. Edges follow parent-child relations.
package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/callscape/callscape/pkg/errors"
	"github.com/callscape/callscape/pkg/profile"
	"github.com/callscape/callscape/pkg/render/console"
)

// bucketFills holds hex fills for the six metric bands, hottest first.
// They track the RdYlGn terminal palette used by the console renderer.
var bucketFills = [6]string{
	"#d73027",
	"#fc8d59",
	"#fee08b",
	"#d9ef8b",
	"#91cf60",
	"#1a9850",
}

const outOfRangeFill = "#4575b4"

// Options configures node-link rendering.
type Options struct {
	// MetricColumn selects the column that drives node fills and the
	// value shown in each label.
	MetricColumn string

	// NameColumn names the column holding display names. Defaults to
	// "name".
	NameColumn string

	// Rank restricts multi-rank tables to a single rank.
	Rank int

	// Precision is the number of decimal places for metric values.
	// Values below 1 fall back to two places.
	Precision int
}

// ToDOT converts a profile graph to Graphviz DOT format. Each node is
// labeled with its name and metric value and filled by its metric
// bucket. The resulting string can be rendered with [RenderSVG].
func ToDOT(g *profile.Graph, table *profile.Table, opts Options) (string, error) {
	if opts.MetricColumn == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "a metric column is required")
	}
	if !table.HasColumn(opts.MetricColumn) {
		return "", errors.New(errors.ErrCodeColumnNotFound, "column %q is not in the profile", opts.MetricColumn)
	}
	nameCol := opts.NameColumn
	if nameCol == "" {
		nameCol = "name"
	}
	precision := opts.Precision
	if precision < 1 {
		precision = 2
	}

	min, max, ok := finiteBounds(table.MetricValues(opts.MetricColumn, opts.Rank))
	if !ok {
		return "", errors.New(errors.ErrCodeEmptyMetricDomain, "column %q has no finite values", opts.MetricColumn)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		key := table.Key(n.ID, opts.Rank, 0)
		value := table.Number(key, opts.MetricColumn)
		name := table.String(key, nameCol)
		if name == "" {
			name = strconv.Itoa(n.ID)
		}
		label := fmt.Sprintf("%s\n%.*f", name, precision, value)
		fmt.Fprintf(&buf, "  %d [label=%q, fillcolor=%q];\n", n.ID, label, fillFor(value, min, max))
	}

	buf.WriteString("\n")
	for _, n := range g.Nodes() {
		for _, c := range profile.SortByID(n.Children) {
			fmt.Fprintf(&buf, "  %d -> %d;\n", n.ID, c.ID)
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func fillFor(value, min, max float64) string {
	idx := console.BucketIndex(value, min, max)
	if idx < 0 {
		return outOfRangeFill
	}
	return bucketFills[idx]
}

func finiteBounds(values []float64) (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		min = math.Min(min, v)
		max = math.Max(max, v)
		ok = true
	}
	return min, max, ok
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render SVG")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the view box starts
// at the origin and the width/height match it. Graphviz emits points
// with a translate offset that confuses some embedders.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
