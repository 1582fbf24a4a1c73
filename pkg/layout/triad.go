package layout

import (
	"slices"
	"strings"

	"github.com/scottvr/phart/pkg/graph"
)

// triadStrategy is the placement strategy chosen for a 3-node component.
type triadStrategy int

const (
	triadNone     triadStrategy = iota // fall through to hierarchical
	triadTriangle                      // one on top, two below, cycle order
	triadVertical                      // most important node on top
)

// maxTriadEdges is the number of directed edge slots among 3 nodes.
const maxTriadEdges = 6.0

// selectTriad picks the strategy for a component of exactly 3 nodes.
//
// Dense directed components (edge density above the threshold, or more than
// TriadMutualPairLimit mutual pairs) stack vertically by importance; those
// containing a 3-cycle draw as a triangle so edges flow around it. An
// undirected component draws as a triangle when all three edges are present.
// Anything else uses the regular hierarchical layout.
func selectTriad(g *graph.Graph, opts Options) triadStrategy {
	nodes := g.Nodes()
	if len(nodes) != 3 {
		return triadNone
	}

	if !g.IsDirected() {
		if g.HasEdge(nodes[0], nodes[1]) && g.HasEdge(nodes[1], nodes[2]) && g.HasEdge(nodes[0], nodes[2]) {
			return triadTriangle
		}
		return triadNone
	}

	directedEdges := 0
	mutual := 0
	for i, u := range nodes {
		for _, v := range nodes[i+1:] {
			uv, vu := g.HasEdge(u, v), g.HasEdge(v, u)
			if uv {
				directedEdges++
			}
			if vu {
				directedEdges++
			}
			if uv && vu {
				mutual++
			}
		}
	}

	if float64(directedEdges)/maxTriadEdges > opts.densityThreshold() || mutual > TriadMutualPairLimit {
		return triadVertical
	}
	if len(triangleCycle(g, nodes)) == 3 {
		return triadTriangle
	}
	return triadNone
}

// triangleCycle returns the 3 nodes in cycle traversal order starting from
// the smallest identifier, or nil when no 3-cycle exists. nodes must be the
// component's sorted node set.
func triangleCycle(g *graph.Graph, nodes []string) []string {
	a := nodes[0]
	rest := nodes[1:]
	for _, perm := range [][2]string{{rest[0], rest[1]}, {rest[1], rest[0]}} {
		b, c := perm[0], perm[1]
		if g.HasEdge(a, b) && g.HasEdge(b, c) && g.HasEdge(c, a) {
			return []string{a, b, c}
		}
	}
	return nil
}

// triangleLayout places a 3-node component as a triangle: one node centered
// on top, two on a bottom row. For directed components with a 3-cycle the
// nodes follow the cycle's own traversal order, so the drawn edges flow
// around the triangle.
func triangleLayout(g *graph.Graph, opts Options) map[string]Position {
	nodes := g.Nodes()
	if g.IsDirected() {
		if cycle := triangleCycle(g, nodes); cycle != nil {
			nodes = cycle
		}
	}

	top, left, right := nodes[0], nodes[1], nodes[2]
	wTop := opts.DisplayWidth(top)
	wLeft := opts.DisplayWidth(left)
	wRight := opts.DisplayWidth(right)

	total := max(wTop, wLeft+opts.NodeSpacing+wRight)

	return map[string]Position{
		top:   {X: total/2 - wTop/2, Y: 0},
		left:  {X: 0, Y: triangleHeight},
		right: {X: total - wRight, Y: triangleHeight},
	}
}

// triangleHeight is the bottom row of a triangle layout, leaving one row for
// the edge runs between the apex and the base.
const triangleHeight = 2

// verticalLayout stacks a dense 3-node component: the most important node on
// top, the other two on a row below.
//
// Importance per node is in + out + 2×(mutual neighbor count) − |in − out|,
// favoring nodes that both feed and drain the component. The bottom pair
// orders by (has edge from top, has edge to top, importance) descending,
// with identifier ties ascending.
func verticalLayout(g *graph.Graph, opts Options) map[string]Position {
	nodes := g.Nodes()

	score := func(n string) int {
		in, out := g.InDegree(n), g.OutDegree(n)
		mutual := 0
		for _, m := range g.Successors(n) {
			if g.HasEdge(m, n) {
				mutual++
			}
		}
		diff := in - out
		if diff < 0 {
			diff = -diff
		}
		return in + out + 2*mutual - diff
	}

	top := maxBy(nodes, score)
	var rest []string
	for _, n := range nodes {
		if n != top {
			rest = append(rest, n)
		}
	}
	slices.SortFunc(rest, func(a, b string) int {
		if d := rank(g, top, b) - rank(g, top, a); d != 0 {
			return d
		}
		if d := score(b) - score(a); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})

	wTop := opts.DisplayWidth(top)
	wLeft := opts.DisplayWidth(rest[0])
	wRight := opts.DisplayWidth(rest[1])
	total := max(wTop, wLeft+opts.NodeSpacing+wRight)

	return map[string]Position{
		top:     {X: total/2 - wTop/2, Y: 0},
		rest[0]: {X: 0, Y: opts.rowPitch()},
		rest[1]: {X: total - wRight, Y: opts.rowPitch()},
	}
}

// rank orders the bottom pair of a vertical layout: connection from the top
// node outranks connection to it.
func rank(g *graph.Graph, top, n string) int {
	r := 0
	if g.HasEdge(top, n) {
		r += 2
	}
	if g.HasEdge(n, top) {
		r++
	}
	return r
}
