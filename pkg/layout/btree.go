package layout

import (
	"slices"
	"strings"

	"github.com/scottvr/phart/pkg/graph"
)

// Side is a parsed left/right placement hint from an edge attribute.
type Side int

// Placement hints.
const (
	SideUnspecified Side = iota
	SideLeft
	SideRight
)

// sideKeys are the attribute keys carrying a placement hint, in priority
// order: the first key present wins, whatever its value.
var sideKeys = [...]string{"side", "position", "dir", "child"}

// parseSide extracts the placement hint from the parent → child edge.
// Values are matched case-insensitively: left/l/0 and right/r/1;
// anything else, or no hint at all, is SideUnspecified. All key-synonym
// and value-spelling handling lives here.
func parseSide(g *graph.Graph, parent, child string) Side {
	for _, key := range sideKeys {
		v, ok := g.EdgeAttr(parent, child, key)
		if !ok {
			continue
		}
		switch strings.ToLower(v) {
		case "left", "l", "0":
			return SideLeft
		case "right", "r", "1":
			return SideRight
		}
		return SideUnspecified
	}
	return SideUnspecified
}

// sortBySide orders one layer's nodes by the placement hint on their incoming
// edge. positioned holds the coordinates of nodes in earlier layers.
//
// Each node is grouped under its first already-positioned predecessor (by
// sorted predecessor order). Per parent, at most one node claims the left
// slot and one the right; later claims demote to unspecified, which sorts
// alphabetically between the two slots. Parents emit left-to-right by their
// own x coordinate, so sibling subtrees do not interleave. Nodes with no
// positioned parent (the layer's roots) come last, alphabetically.
func sortBySide(g *graph.Graph, layer []string, positioned map[string]Position) []string {
	type group struct {
		left, right string
		middle      []string
	}
	groups := make(map[string]*group)
	var parents []string
	var orphans []string

	for _, n := range sortByID(layer) {
		parent := positionedParent(g, n, positioned)
		if parent == "" {
			orphans = append(orphans, n)
			continue
		}
		gr, ok := groups[parent]
		if !ok {
			gr = &group{}
			groups[parent] = gr
			parents = append(parents, parent)
		}
		switch side := parseSide(g, parent, n); {
		case side == SideLeft && gr.left == "":
			gr.left = n
		case side == SideRight && gr.right == "":
			gr.right = n
		default:
			// Second claim on an occupied slot demotes to unspecified.
			gr.middle = append(gr.middle, n)
		}
	}

	slices.SortFunc(parents, func(a, b string) int {
		if d := positioned[a].X - positioned[b].X; d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})

	out := make([]string, 0, len(layer))
	for _, p := range parents {
		gr := groups[p]
		if gr.left != "" {
			out = append(out, gr.left)
		}
		out = append(out, gr.middle...) // already alphabetical
		if gr.right != "" {
			out = append(out, gr.right)
		}
	}
	return append(out, orphans...)
}

// positionedParent returns the first predecessor of n that already has a
// position, iterating predecessors in sorted order for determinism.
// Returns "" when no predecessor is positioned.
func positionedParent(g *graph.Graph, n string, positioned map[string]Position) string {
	for _, p := range g.Predecessors(n) {
		if _, ok := positioned[p]; ok {
			return p
		}
	}
	return ""
}
