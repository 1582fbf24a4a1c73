package layout

import (
	"cmp"
	"slices"

	"github.com/scottvr/phart/pkg/graph"
)

// rootsOf determines the BFS seed set for one component.
//
// Directed components are rooted at their in-degree-0 nodes. A directed
// component with no such node is one strongly-connected cycle; the node with
// the highest out-degree stands in as the root. Undirected components are
// rooted at the node with the highest degree. Degree ties break on the
// smaller identifier.
func rootsOf(g *graph.Graph) []string {
	nodes := g.Nodes()
	if g.IsDirected() {
		var roots []string
		for _, n := range nodes {
			if g.InDegree(n) == 0 {
				roots = append(roots, n)
			}
		}
		if len(roots) > 0 {
			return roots
		}
		return []string{maxBy(nodes, g.OutDegree)}
	}
	return []string{maxBy(nodes, g.Degree)}
}

// maxBy returns the first id with the highest score. ids must be sorted, so
// score ties resolve to the smallest identifier.
func maxBy(ids []string, score func(string) int) string {
	best := ids[0]
	bestScore := score(best)
	for _, id := range ids[1:] {
		if s := score(id); s > bestScore {
			best, bestScore = id, s
		}
	}
	return best
}

// assignLayers maps each node of one component to a layer.
//
// A node's layer is its hop distance to the nearest root: one breadth-first
// traversal is seeded with every root at depth zero, so a node reachable from
// several roots lands on the minimum distance over them. Nodes unreachable
// from every root (cut off by edge direction) share one trailing layer after
// the deepest reachable one.
//
// Each returned layer is sorted by identifier.
func assignLayers(g *graph.Graph) [][]string {
	dist := g.Distances(rootsOf(g)...)

	depth := 0
	for _, d := range dist {
		if d > depth {
			depth = d
		}
	}

	layers := make([][]string, depth+1)
	var unreached []string
	for _, n := range g.Nodes() {
		d, ok := dist[n]
		if !ok {
			unreached = append(unreached, n)
			continue
		}
		layers[d] = append(layers[d], n)
	}
	if len(unreached) > 0 {
		layers = append(layers, unreached)
	}
	return layers
}

// hierarchical computes positions for one component using layered placement:
// layers by BFS distance, each layer centered within the component's widest
// layer, x advancing by display width plus spacing.
func hierarchical(g *graph.Graph, opts Options) map[string]Position {
	layers := assignLayers(g)

	widths := make([]int, len(layers))
	maxWidth := 0
	for i, layer := range layers {
		w := (len(layer) - 1) * opts.NodeSpacing
		for _, n := range layer {
			w += opts.DisplayWidth(n)
		}
		widths[i] = w
		if w > maxWidth {
			maxWidth = w
		}
	}

	pos := make(map[string]Position, g.NodeCount())
	for i, layer := range layers {
		if opts.BinaryTreeLayout {
			layer = sortBySide(g, layer, pos)
		}
		y := i * opts.rowPitch()
		x := (maxWidth - widths[i]) / 2
		for _, n := range layer {
			pos[n] = Position{X: x, Y: y}
			x += opts.DisplayWidth(n) + opts.NodeSpacing
		}
	}
	return pos
}

// sortByID returns ids sorted by identifier.
func sortByID(ids []string) []string {
	out := slices.Clone(ids)
	slices.SortFunc(out, func(a, b string) int { return cmp.Compare(a, b) })
	return out
}
