package layout

import (
	"github.com/scottvr/phart/pkg/graph"
)

// Position is a node's top-left cell on the character grid:
// X is the column, Y the row.
type Position struct {
	X int
	Y int
}

// Result is one computed layout: every node's position plus the content
// extents the renderer sizes its canvas from. Positions are non-negative and
// unique per node; component row ranges never overlap.
type Result struct {
	Positions map[string]Position
	Width     int // rightmost content column (exclusive), before right padding
	Height    int // total stacked height in rows
}

// Compute lays out the whole graph: the graph is split into
// weakly-connected components, each laid out independently by the strategy
// fitting its shape, and the per-component layouts are stacked vertically in
// component order. An empty graph yields an empty Result.
//
// Compute validates opts and fails fast on an invalid configuration. The
// graph and options are read-only; the Result is freshly allocated per call.
func Compute(g *graph.Graph, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	res := Result{Positions: make(map[string]Position, g.NodeCount())}
	if g.NodeCount() == 0 {
		return res, nil
	}

	totalHeight := 0
	for _, comp := range g.WeakComponents() {
		sub := g.Subgraph(comp)
		pos := layoutComponent(sub, opts)

		compWidth, compHeight := 0, 0
		for n, p := range pos {
			if end := p.X + opts.DisplayWidth(n); end > compWidth {
				compWidth = end
			}
			if p.Y > compHeight {
				compHeight = p.Y
			}
		}
		compHeight += 2 // room for a trailing edge row

		for n, p := range pos {
			res.Positions[n] = Position{X: p.X + opts.LeftPadding, Y: p.Y + totalHeight}
		}
		totalHeight += compHeight + opts.LayerSpacing

		if w := compWidth + opts.LeftPadding; w > res.Width {
			res.Width = w
		}
	}
	res.Height = totalHeight
	return res, nil
}

// layoutComponent picks the placement strategy for one component. The
// 3-node heuristics apply only to components of exactly that size; every
// other component is layered hierarchically.
func layoutComponent(sub *graph.Graph, opts Options) map[string]Position {
	switch selectTriad(sub, opts) {
	case triadTriangle:
		return triangleLayout(sub, opts)
	case triadVertical:
		return verticalLayout(sub, opts)
	default:
		return hierarchical(sub, opts)
	}
}
