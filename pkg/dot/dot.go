// Package dot exports graphs to Graphviz DOT and renders them to SVG.
//
// The text renderer in pkg/render is the primary output path; this package
// is the escape hatch for graphs that outgrow a character grid.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/scottvr/phart/pkg/graph"
)

// Options configures DOT export.
type Options struct {
	// Name is the graph name in the DOT header. Empty means "G".
	Name string

	// RankDir is the Graphviz layout direction. Empty means "TB",
	// matching the text renderer's top-down flow.
	RankDir string
}

// ToDOT converts a graph to Graphviz DOT format. Directed graphs emit
// digraph/->, undirected ones graph/--. Edge attributes carry over verbatim,
// so side hints and labels survive the round trip into Graphviz. The
// resulting string can be rendered with [RenderSVG].
func ToDOT(g *graph.Graph, opts Options) string {
	name := opts.Name
	if name == "" {
		name = "G"
	}
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "TB"
	}
	keyword, connector := "graph", "--"
	if g.IsDirected() {
		keyword, connector = "digraph", "->"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %q {\n", keyword, name)
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  node [shape=box];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q;\n", n)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if len(e.Attrs) == 0 {
			fmt.Fprintf(&buf, "  %q %s %q;\n", e.From, connector, e.To)
			continue
		}
		attrs := make([]string, 0, len(e.Attrs))
		for _, k := range slices.Sorted(maps.Keys(e.Attrs)) {
			attrs = append(attrs, fmt.Sprintf("%s=%q", k, e.Attrs[k]))
		}
		fmt.Fprintf(&buf, "  %q %s %q [%s];\n", e.From, connector, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the viewBox starts at the
// origin and the pixel size matches it. Graphviz emits point-based sizes with
// offset viewBoxes, which render at inconsistent scales in browsers.
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
