// Package render draws a laid-out graph onto a character grid.
//
// Render is the package entry point: it computes the layout via pkg/layout,
// allocates a canvas sized to fit every node and edge decoration, draws
// edges first and labels second (labels always win the cell), and returns
// the grid as text. The whole pipeline is synchronous and allocation-local:
// no state survives between calls.
package render

import (
	"fmt"
	"io"
	"os"

	"github.com/scottvr/phart/pkg/errors"
	"github.com/scottvr/phart/pkg/graph"
	"github.com/scottvr/phart/pkg/layout"
)

// asciiClearance is the extra right padding ASCII arrowheads need compared
// to box-drawing glyphs.
const asciiClearance = 2

// Render lays out g and returns its text diagram. An empty graph renders as
// the empty string. Configuration problems, edges referencing unplaced
// nodes, and out-of-canvas writes return coded errors; no partial output is
// ever returned alongside an error.
func Render(g *graph.Graph, opts layout.Options) (string, error) {
	res, err := layout.Compute(g, opts)
	if err != nil {
		return "", err
	}
	return RenderLayout(g, opts, res)
}

// RenderLayout draws g using an already-computed layout. Every edge endpoint
// must appear in the layout's position map; a missing endpoint is a
// NODE_NOT_IN_LAYOUT error.
func RenderLayout(g *graph.Graph, opts layout.Options, res layout.Result) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	if len(res.Positions) == 0 {
		return "", nil
	}

	c := newCanvas(canvasSize(res, opts))

	d := &drawer{g: g, opts: opts, pos: res.Positions, canvas: c}
	for _, e := range g.Edges() {
		if err := d.edge(e); err != nil {
			return "", err
		}
	}
	for _, n := range g.Nodes() {
		if err := d.label(n); err != nil {
			return "", err
		}
	}
	return c.String(), nil
}

// Write renders g and writes the text to w.
func Write(w io.Writer, g *graph.Graph, opts layout.Options) error {
	text, err := Render(g, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text+"\n")
	return err
}

// WriteFile renders g and persists the text to path with 0644 permissions.
// The text is written as-is; I/O failures propagate unchanged.
func WriteFile(path string, g *graph.Graph, opts layout.Options) error {
	text, err := Render(g, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text+"\n"), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// canvasSize computes the fixed grid dimensions: wide enough for the
// rightmost decorated label plus arrow clearance, tall enough for the
// deepest node plus a trailing edge row.
func canvasSize(res layout.Result, opts layout.Options) (w, h int) {
	maxEnd, maxY := 0, 0
	for n, p := range res.Positions {
		if end := p.X + opts.DisplayWidth(n); end > maxEnd {
			maxEnd = end
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	w = maxEnd + opts.RightPadding
	if opts.UseASCII {
		w += asciiClearance
	}
	return w, maxY + 2
}

// drawer holds the per-call drawing state.
type drawer struct {
	g      *graph.Graph
	opts   layout.Options
	pos    map[string]layout.Position
	canvas *canvas
}

// label writes a node's decorated label, overwriting any edge glyphs
// beneath it.
func (d *drawer) label(n string) error {
	p, ok := d.pos[n]
	if !ok {
		return errors.New(errors.ErrCodeNodeNotInLayout, "node %q has no position", n)
	}
	dec := d.opts.Decorator(n)
	for i, r := range dec.Prefix + n + dec.Suffix {
		if err := d.canvas.set(p.X+i, p.Y, r); err != nil {
			return err
		}
	}
	return nil
}

// anchor returns a node's edge attachment cell: the column at the middle of
// its label, on its row.
func (d *drawer) anchor(n string) (x, y int, err error) {
	p, ok := d.pos[n]
	if !ok {
		return 0, 0, errors.New(errors.ErrCodeNodeNotInLayout, "edge endpoint %q has no position", n)
	}
	return p.X + len(d.opts.Decorator(n).Prefix) + len(n)/2, p.Y, nil
}

// edge draws one edge as horizontal, vertical, or elbow segments.
func (d *drawer) edge(e graph.Edge) error {
	x1, y1, err := d.anchor(e.From)
	if err != nil {
		return err
	}
	x2, y2, err := d.anchor(e.To)
	if err != nil {
		return err
	}

	// An edge is bidirectional when the graph is undirected or the
	// reverse pair also exists.
	bidir := !d.g.IsDirected() || d.g.HasEdge(e.To, e.From)

	switch {
	case y1 == y2:
		return d.horizontal(x1, x2, y1, bidir)
	case x1 == x2:
		return d.vertical(x1, y1, y2, bidir)
	default:
		return d.elbow(x1, y1, x2, y2)
	}
}

// horizontal draws a same-row edge: a run of horizontal glyphs strictly
// between the anchors, with outward arrows at both ends when bidirectional
// or a single arrow at the destination end otherwise.
func (d *drawer) horizontal(x1, x2, y int, bidir bool) error {
	gl := d.opts.Glyphs()
	lo, hi := min(x1, x2), max(x1, x2)
	for x := lo + 1; x < hi; x++ {
		if err := d.merge(x, y, gl.Horizontal); err != nil {
			return err
		}
	}
	if !d.opts.ShowArrows || hi-lo < 2 {
		return nil
	}
	if bidir {
		// With a single cell between the anchors both arrows would land
		// on it; mark the direction pair instead.
		if hi-lo == 2 {
			return d.canvas.set(lo+1, y, gl.BidirH)
		}
		if err := d.canvas.set(lo+1, y, gl.ArrowLeft); err != nil {
			return err
		}
		return d.canvas.set(hi-1, y, gl.ArrowRight)
	}
	if x1 < x2 {
		return d.canvas.set(hi-1, y, gl.ArrowRight)
	}
	return d.canvas.set(lo+1, y, gl.ArrowLeft)
}

// vertical draws a same-column edge: a run of vertical glyphs strictly
// between the anchors, with the both-ways marker at the midpoint when
// bidirectional or an arrow adjacent to the destination otherwise.
func (d *drawer) vertical(x, y1, y2 int, bidir bool) error {
	gl := d.opts.Glyphs()
	lo, hi := min(y1, y2), max(y1, y2)
	for y := lo + 1; y < hi; y++ {
		if err := d.merge(x, y, gl.Vertical); err != nil {
			return err
		}
	}
	if !d.opts.ShowArrows || hi-lo < 2 {
		return nil
	}
	if bidir {
		return d.canvas.set(x, (lo+hi)/2, gl.BidirV)
	}
	if y1 < y2 {
		return d.canvas.set(x, hi-1, gl.ArrowDown)
	}
	return d.canvas.set(x, lo+1, gl.ArrowUp)
}

// elbow draws an edge needing both orientations: the vertical run descends
// (or ascends) at the source column, turns at the target row, and the
// horizontal run finishes at the target column. The turning cell carries the
// crossing glyph.
func (d *drawer) elbow(x1, y1, x2, y2 int) error {
	gl := d.opts.Glyphs()

	lo, hi := min(y1, y2), max(y1, y2)
	for y := lo + 1; y < hi; y++ {
		if err := d.merge(x1, y, gl.Vertical); err != nil {
			return err
		}
	}
	if d.opts.ShowArrows && hi-lo >= 2 {
		arrow, ay := gl.ArrowDown, y2-1
		if y2 < y1 {
			arrow, ay = gl.ArrowUp, y2+1
		}
		if err := d.canvas.set(x1, ay, arrow); err != nil {
			return err
		}
	}
	if err := d.canvas.set(x1, y2, gl.Cross); err != nil {
		return err
	}

	xlo, xhi := min(x1, x2), max(x1, x2)
	for x := xlo + 1; x < xhi; x++ {
		if err := d.merge(x, y2, gl.Horizontal); err != nil {
			return err
		}
	}
	if d.opts.ShowArrows && xhi-xlo >= 2 {
		if x1 < x2 {
			return d.canvas.set(x2-1, y2, gl.ArrowRight)
		}
		return d.canvas.set(x2+1, y2, gl.ArrowLeft)
	}
	return nil
}

// merge writes a run glyph, resolving collisions: a cell already holding the
// opposite orientation (or a previous crossing) becomes the crossing glyph.
// The rule applies to every run cell, not only deliberate turn points.
func (d *drawer) merge(x, y int, r rune) error {
	gl := d.opts.Glyphs()
	curr := d.canvas.at(x, y)
	crossing := curr == gl.Cross ||
		(r == gl.Horizontal && curr == gl.Vertical) ||
		(r == gl.Vertical && curr == gl.Horizontal)
	if crossing {
		return d.canvas.set(x, y, gl.Cross)
	}
	return d.canvas.set(x, y, r)
}
