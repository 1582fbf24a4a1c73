package graph

import "slices"

// Distances performs a breadth-first traversal seeded from every source
// simultaneously and returns each reachable node's hop distance to its
// nearest source. Directed graphs are traversed along edge direction;
// undirected graphs over neighbors. Sources absent from the graph are
// ignored; nodes unreachable from every source are absent from the result.
//
// Seeding the queue with all sources at depth 0 makes the result the minimum
// distance over sources by construction.
func (g *Graph) Distances(sources ...string) map[string]int {
	dist := make(map[string]int)
	queue := make([]string, 0, len(sources))
	for _, s := range sources {
		if !g.HasNode(s) {
			continue
		}
		if _, seen := dist[s]; seen {
			continue
		}
		dist[s] = 0
		queue = append(queue, s)
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, next := range g.Successors(curr) {
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[curr] + 1
			queue = append(queue, next)
		}
	}
	return dist
}

// WeakComponents partitions the graph into weakly-connected components:
// maximal node sets connected when every edge is treated as undirected.
// Isolated nodes form singleton components. Each component is sorted, and
// components are ordered by their smallest member, so the partition is
// deterministic for a given graph.
func (g *Graph) WeakComponents() [][]string {
	visited := make(map[string]struct{}, len(g.nodes))
	var comps [][]string

	for _, start := range g.Nodes() {
		if _, done := visited[start]; done {
			continue
		}
		comp := []string{}
		queue := []string{start}
		visited[start] = struct{}{}
		for len(queue) > 0 {
			curr := queue[0]
			queue = queue[1:]
			comp = append(comp, curr)
			for _, next := range g.undirectedNeighbors(curr) {
				if _, done := visited[next]; done {
					continue
				}
				visited[next] = struct{}{}
				queue = append(queue, next)
			}
		}
		slices.Sort(comp)
		comps = append(comps, comp)
	}
	return comps
}

func (g *Graph) undirectedNeighbors(id string) []string {
	seen := make(map[string]struct{}, len(g.succ[id])+len(g.pred[id]))
	for n := range g.succ[id] {
		seen[n] = struct{}{}
	}
	for n := range g.pred[id] {
		seen[n] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}
