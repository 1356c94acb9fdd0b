package graph

import (
	"sort"
	"testing"
)

// buildTestGraph constructs a Graph directly from edge triples (from, to,
// lengthMM), all class Residential, for SCC/compression fixtures —
// hand-built small CSR graphs rather than routing every fixture through
// the OSM parser.
func buildTestGraph(numNodes uint32, edgesIn [][3]uint32) *Graph {
	type e struct{ from, to, length uint32 }
	edges := make([]e, len(edgesIn))
	for i, x := range edgesIn {
		edges[i] = e{x[0], x[1], x[2]}
	}

	firstOut := make([]uint32, numNodes+1)
	for _, edge := range edges {
		firstOut[edge.from+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	numEdges := uint32(len(edges))
	head := make([]uint32, numEdges)
	lengthMM := make([]uint32, numEdges)
	class := make([]RoadClass, numEdges)
	speed := make([]uint16, numEdges)
	name := make([]string, numEdges)
	cursor := make([]uint32, numNodes)
	copy(cursor, firstOut[:numNodes])
	for _, edge := range edges {
		idx := cursor[edge.from]
		head[idx] = edge.to
		lengthMM[idx] = edge.length
		class[idx] = Residential
		speed[idx] = SpeedKmh(Residential)
		cursor[edge.from]++
	}

	nodeLat := make([]float64, numNodes)
	nodeLon := make([]float64, numNodes)
	for i := range nodeLat {
		nodeLat[i] = float64(i)
		nodeLon[i] = float64(i)
	}

	return &Graph{
		NumNodes: numNodes, NumEdges: numEdges,
		FirstOut: firstOut, Head: head, LengthMM: lengthMM,
		Class: class, SpeedKmh: speed, Name: name,
		NodeLat: nodeLat, NodeLon: nodeLon,
		GeoFirstOut: make([]uint32, numEdges+1),
	}
}

func TestLargestSCCMutualReachability(t *testing.T) {
	// 0<->1<->2 forms a cycle (mutually reachable); 3 is a one-way spur
	// off 2 with no way back, so it must be excluded from the LSCC.
	g := buildTestGraph(4, [][3]uint32{
		{0, 1, 1000}, {1, 0, 1000},
		{1, 2, 1000}, {2, 1, 1000},
		{2, 0, 1000}, {0, 2, 1000},
		{2, 3, 1000},
	})

	comp := LargestSCC(g)
	sort.Slice(comp, func(i, j int) bool { return comp[i] < comp[j] })

	want := []uint32{0, 1, 2}
	if len(comp) != len(want) {
		t.Fatalf("LargestSCC = %v, want %v", comp, want)
	}
	for i, v := range want {
		if comp[i] != v {
			t.Fatalf("LargestSCC = %v, want %v", comp, want)
		}
	}
}

func TestLargestSCCExcludesDanglingSpur(t *testing.T) {
	// Node 3 touches the cycle via an edge, but no directed path leads
	// back from 3, so a true LSCC must drop it even though the graph is
	// weakly connected.
	g := buildTestGraph(4, [][3]uint32{
		{0, 1, 1000}, {1, 2, 1000}, {2, 0, 1000},
		{3, 0, 1000},
	})

	comp := LargestSCC(g)
	for _, n := range comp {
		if n == 3 {
			t.Fatalf("LargestSCC incorrectly included node 3 (not mutually reachable): %v", comp)
		}
	}
	if len(comp) != 3 {
		t.Fatalf("LargestSCC = %v, want 3 nodes {0,1,2}", comp)
	}
}

func TestFilterToComponentPreservesInvariants(t *testing.T) {
	g := buildTestGraph(4, [][3]uint32{
		{0, 1, 1000}, {1, 0, 1000},
		{1, 2, 1000}, {2, 1, 1000},
		{2, 0, 1000}, {0, 2, 1000},
		{2, 3, 2000},
	})

	comp := LargestSCC(g)
	filtered := FilterToComponent(g, comp)

	if filtered.NumNodes != 3 {
		t.Fatalf("filtered NumNodes = %d, want 3", filtered.NumNodes)
	}
	if filtered.FirstOut[filtered.NumNodes] != filtered.NumEdges {
		t.Fatalf("FirstOut[N] = %d, want NumEdges = %d", filtered.FirstOut[filtered.NumNodes], filtered.NumEdges)
	}
	for i := uint32(0); i < filtered.NumNodes; i++ {
		if filtered.FirstOut[i] > filtered.FirstOut[i+1] {
			t.Fatalf("FirstOut not monotonic at %d", i)
		}
	}
	for _, h := range filtered.Head {
		if h >= filtered.NumNodes {
			t.Fatalf("edge head %d out of range (NumNodes=%d)", h, filtered.NumNodes)
		}
	}
}

func TestFilterToComponentEmpty(t *testing.T) {
	filtered := FilterToComponent(&Graph{NumNodes: 0}, nil)
	if filtered.NumNodes != 0 || filtered.NumEdges != 0 {
		t.Fatalf("expected empty graph, got NumNodes=%d NumEdges=%d", filtered.NumNodes, filtered.NumEdges)
	}
}
