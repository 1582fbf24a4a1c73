// Package graph provides the graph value consumed by the layout engine.
//
// A Graph is a set of string-identified nodes and attributed edges, either
// directed or undirected. It exposes exactly the query surface the layout and
// render packages need: enumeration, degrees, breadth-first distances, and
// weakly-connected components.
//
// All enumeration methods return identifier-sorted results. Layout decisions
// (layer membership, within-layer order, parent iteration) are made by
// iterating these methods, so determinism is guaranteed by construction rather
// than by the caller remembering to sort.
//
// Graph is not safe for concurrent mutation without external synchronization.
package graph

import (
	"cmp"
	"errors"
	"slices"
)

// ErrInvalidNodeID is returned by AddNode and AddEdge when a node ID is
// empty. All nodes must have non-empty identifiers.
var ErrInvalidNodeID = errors.New("node ID must not be empty")

// Attrs stores string key-value pairs attached to an edge. It is used for
// layout hints such as the binary-tree side attribute. Attrs maps may be nil;
// lookups on a nil map behave as absent keys.
type Attrs map[string]string

// Edge is an ordered pair of node IDs with optional attributes. For
// undirected graphs the pair records the orientation it was added with; the
// graph answers adjacency queries in both directions regardless.
type Edge struct {
	From  string
	To    string
	Attrs Attrs
}

// Graph is a directed or undirected graph with attributed edges.
// The zero value is not usable - use New.
type Graph struct {
	directed bool
	nodes    map[string]struct{}
	succ     map[string]map[string]Attrs // out-adjacency (both directions when undirected)
	pred     map[string]map[string]struct{}
	edges    []Edge
}

// New creates an empty graph. Directed graphs distinguish edge orientation;
// undirected graphs treat every edge as mutual.
func New(directed bool) *Graph {
	return &Graph{
		directed: directed,
		nodes:    make(map[string]struct{}),
		succ:     make(map[string]map[string]Attrs),
		pred:     make(map[string]map[string]struct{}),
	}
}

// IsDirected reports whether edge orientation is significant.
func (g *Graph) IsDirected() bool { return g.directed }

// AddNode adds a node to the graph. Adding an existing node is a no-op.
// Returns ErrInvalidNodeID if id is empty.
func (g *Graph) AddNode(id string) error {
	if id == "" {
		return ErrInvalidNodeID
	}
	g.nodes[id] = struct{}{}
	return nil
}

// AddEdge adds an edge between from and to, creating either endpoint if it
// does not exist yet. attrs may be nil. Adding the same ordered pair twice
// replaces the stored attributes but records only one edge.
func (g *Graph) AddEdge(from, to string, attrs Attrs) error {
	if from == "" || to == "" {
		return ErrInvalidNodeID
	}
	g.nodes[from] = struct{}{}
	g.nodes[to] = struct{}{}

	if _, dup := g.succ[from][to]; !dup {
		g.edges = append(g.edges, Edge{From: from, To: to, Attrs: attrs})
	} else {
		for i := range g.edges {
			if g.edges[i].From == from && g.edges[i].To == to {
				g.edges[i].Attrs = attrs
				break
			}
		}
	}

	g.link(from, to, attrs)
	if !g.directed {
		g.link(to, from, attrs)
	}
	return nil
}

func (g *Graph) link(from, to string, attrs Attrs) {
	if g.succ[from] == nil {
		g.succ[from] = make(map[string]Attrs)
	}
	g.succ[from][to] = attrs
	if g.pred[to] == nil {
		g.pred[to] = make(map[string]struct{})
	}
	g.pred[to][from] = struct{}{}
}

// HasNode reports whether id is a node of the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// HasEdge reports whether an edge from → to exists. For undirected graphs
// orientation is ignored.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.succ[from][to]
	return ok
}

// EdgeAttr returns the value of an attribute on the edge from → to.
// The second result is false if the edge or the key is absent.
func (g *Graph) EdgeAttr(from, to, key string) (string, bool) {
	attrs, ok := g.succ[from][to]
	if !ok || attrs == nil {
		return "", false
	}
	v, ok := attrs[key]
	return v, ok
}

// Nodes returns all node IDs in sorted order.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Edges returns a copy of all edges, sorted by (From, To). Undirected edges
// appear once, with the orientation they were added in.
func (g *Graph) Edges() []Edge {
	edges := slices.Clone(g.edges)
	slices.SortFunc(edges, func(a, b Edge) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		return cmp.Compare(a.To, b.To)
	})
	return edges
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of recorded edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Successors returns the sorted IDs reachable from id over one edge.
// For undirected graphs this is the neighbor set.
func (g *Graph) Successors(id string) []string {
	out := make([]string, 0, len(g.succ[id]))
	for n := range g.succ[id] {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Predecessors returns the sorted IDs with an edge into id.
// For undirected graphs this is the neighbor set.
func (g *Graph) Predecessors(id string) []string {
	in := make([]string, 0, len(g.pred[id]))
	for n := range g.pred[id] {
		in = append(in, n)
	}
	slices.Sort(in)
	return in
}

// OutDegree returns the number of outgoing edges from the node
// (neighbor count for undirected graphs).
func (g *Graph) OutDegree(id string) int { return len(g.succ[id]) }

// InDegree returns the number of incoming edges to the node
// (neighbor count for undirected graphs).
func (g *Graph) InDegree(id string) int { return len(g.pred[id]) }

// Degree returns the total degree of the node. For directed graphs this is
// in-degree plus out-degree; for undirected graphs the neighbor count.
func (g *Graph) Degree(id string) int {
	if g.directed {
		return len(g.succ[id]) + len(g.pred[id])
	}
	return len(g.succ[id])
}

// Subgraph returns the subgraph induced by ids: those nodes plus every edge
// whose endpoints are both included. Attribute maps are shared, not copied.
func (g *Graph) Subgraph(ids []string) *Graph {
	keep := make(map[string]struct{}, len(ids))
	sub := New(g.directed)
	for _, id := range ids {
		keep[id] = struct{}{}
		sub.nodes[id] = struct{}{}
	}
	for _, e := range g.edges {
		if _, okF := keep[e.From]; !okF {
			continue
		}
		if _, okT := keep[e.To]; !okT {
			continue
		}
		_ = sub.AddEdge(e.From, e.To, e.Attrs)
	}
	return sub
}
