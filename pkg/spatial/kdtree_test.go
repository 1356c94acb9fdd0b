package spatial

import (
	"testing"

	"weatherroute/pkg/graph"
)

func smallGraph() *graph.Graph {
	numNodes := uint32(4)
	return &graph.Graph{
		NumNodes: numNodes,
		NumEdges: 0,
		FirstOut: make([]uint32, numNodes+1),
		NodeLat:  []float64{10.0, 10.001, 10.01, 10.02},
		NodeLon:  []float64{106.0, 106.001, 106.01, 106.02},
	}
}

func TestNodeIndexNearest(t *testing.T) {
	g := smallGraph()
	idx := NewNodeIndex(g)

	got, err := idx.Nearest(10.0005, 106.0005)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if got != 1 {
		t.Fatalf("Nearest = %d, want 1 (closest to query point)", got)
	}
}

func TestNodeIndexEmptyGraph(t *testing.T) {
	idx := NewNodeIndex(&graph.Graph{NumNodes: 0})
	if _, err := idx.Nearest(10, 106); err == nil {
		t.Fatal("expected ErrSnapFailure on empty graph")
	}
}

func TestNodeIndexTieBreakLowerID(t *testing.T) {
	g := &graph.Graph{
		NumNodes: 2,
		FirstOut: []uint32{0, 0, 0},
		NodeLat:  []float64{10.0, 10.0},
		NodeLon:  []float64{106.0, 106.0},
	}
	idx := NewNodeIndex(g)
	got, err := idx.Nearest(10.0, 106.0)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if got != 0 {
		t.Fatalf("Nearest = %d, want 0 (tie broken by lower ID)", got)
	}
}
