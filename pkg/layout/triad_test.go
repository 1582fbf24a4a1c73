package layout

import (
	"testing"

	"github.com/scottvr/phart/pkg/graph"
)

func TestSelectTriad(t *testing.T) {
	tests := []struct {
		name  string
		build func() *graph.Graph
		want  triadStrategy
	}{
		{
			"directed 3-cycle",
			func() *graph.Graph {
				g := graph.New(true)
				g.AddEdge("A", "B", nil)
				g.AddEdge("B", "C", nil)
				g.AddEdge("C", "A", nil)
				return g
			},
			triadTriangle,
		},
		{
			"dense directed",
			func() *graph.Graph {
				g := graph.New(true)
				g.AddEdge("A", "B", nil)
				g.AddEdge("B", "A", nil)
				g.AddEdge("A", "C", nil)
				g.AddEdge("B", "C", nil)
				return g
			},
			triadVertical,
		},
		{
			"two mutual pairs",
			func() *graph.Graph {
				g := graph.New(true)
				g.AddEdge("A", "B", nil)
				g.AddEdge("B", "A", nil)
				g.AddEdge("A", "C", nil)
				g.AddEdge("C", "A", nil)
				return g
			},
			triadVertical,
		},
		{
			"sparse chain",
			func() *graph.Graph {
				g := graph.New(true)
				g.AddEdge("A", "B", nil)
				g.AddEdge("B", "C", nil)
				return g
			},
			triadNone,
		},
		{
			"undirected complete",
			func() *graph.Graph {
				g := graph.New(false)
				g.AddEdge("A", "B", nil)
				g.AddEdge("B", "C", nil)
				g.AddEdge("C", "A", nil)
				return g
			},
			triadTriangle,
		},
		{
			"undirected path",
			func() *graph.Graph {
				g := graph.New(false)
				g.AddEdge("A", "B", nil)
				g.AddEdge("B", "C", nil)
				return g
			},
			triadNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := selectTriad(tt.build(), Default()); got != tt.want {
				t.Errorf("selectTriad = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectTriadThresholdOverride(t *testing.T) {
	// 3 of 6 directed edges: density 0.5 does not exceed the default
	// threshold, but a lowered one tips it into the vertical layout.
	g := graph.New(true)
	g.AddEdge("A", "B", nil)
	g.AddEdge("A", "C", nil)
	g.AddEdge("B", "C", nil)

	if got := selectTriad(g, Default()); got != triadNone {
		t.Fatalf("default threshold: selectTriad = %v, want triadNone", got)
	}

	opts := Default()
	opts.DensityThreshold = 0.3
	if got := selectTriad(g, opts); got != triadVertical {
		t.Errorf("lowered threshold: selectTriad = %v, want triadVertical", got)
	}
}

func TestTriangleCycleOrder(t *testing.T) {
	// Cycle runs C → A → B → C; traversal starts at the smallest node.
	g := graph.New(true)
	g.AddEdge("C", "A", nil)
	g.AddEdge("A", "B", nil)
	g.AddEdge("B", "C", nil)

	got := triangleCycle(g, g.Nodes())
	if len(got) != 3 || got[0] != "A" || got[1] != "B" || got[2] != "C" {
		t.Errorf("triangleCycle = %v, want [A B C]", got)
	}
}

func TestTriangleLayoutGeometry(t *testing.T) {
	g := graph.New(true)
	g.AddEdge("A", "B", nil)
	g.AddEdge("B", "C", nil)
	g.AddEdge("C", "A", nil)

	pos := triangleLayout(g, Default())

	if pos["A"].Y != 0 {
		t.Errorf("apex A.Y = %d, want 0", pos["A"].Y)
	}
	if pos["B"].Y != triangleHeight || pos["C"].Y != triangleHeight {
		t.Errorf("base row: B.Y = %d, C.Y = %d, want %d", pos["B"].Y, pos["C"].Y, triangleHeight)
	}
	// Base: [B] at 0, [C] right-aligned; apex centered over the base.
	if pos["B"].X != 0 {
		t.Errorf("B.X = %d, want 0", pos["B"].X)
	}
	if pos["C"].X <= pos["B"].X {
		t.Errorf("C.X = %d should be right of B.X = %d", pos["C"].X, pos["B"].X)
	}
	if pos["A"].X <= pos["B"].X || pos["A"].X >= pos["C"].X {
		t.Errorf("apex A.X = %d should sit between %d and %d", pos["A"].X, pos["B"].X, pos["C"].X)
	}
}

func TestVerticalLayoutTopByImportance(t *testing.T) {
	// B participates in the mutual pair and feeds C: highest score.
	g := graph.New(true)
	g.AddEdge("A", "B", nil)
	g.AddEdge("B", "A", nil)
	g.AddEdge("B", "C", nil)
	g.AddEdge("A", "C", nil)

	pos := verticalLayout(g, Default())

	// A and B tie on score; the first maximum in sorted order wins the top.
	if pos["A"].Y != 0 {
		t.Errorf("A.Y = %d, want 0 (top)", pos["A"].Y)
	}
	pitch := Default().rowPitch()
	if pos["B"].Y != pitch || pos["C"].Y != pitch {
		t.Errorf("bottom row: B.Y = %d, C.Y = %d, want %d", pos["B"].Y, pos["C"].Y, pitch)
	}
	// B both receives from and feeds the top node, C only receives:
	// B takes the left slot.
	if pos["B"].X >= pos["C"].X {
		t.Errorf("B.X = %d should be left of C.X = %d", pos["B"].X, pos["C"].X)
	}
}
