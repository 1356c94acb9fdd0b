package graph

import "testing"

// buildChainGraph builds a simple path graph 0->1->2->...->n-1, each edge
// Residential, with node k as a degree-2 interior node for 0<k<n-1.
func buildChainGraph(n uint32) *Graph {
	var edges [][3]uint32
	for i := uint32(0); i < n-1; i++ {
		edges = append(edges, [3]uint32{i, i + 1, 1000})
	}
	return buildTestGraph(n, edges)
}

func TestCompressCollapsesLinearChain(t *testing.T) {
	g := buildChainGraph(5) // 0-1-2-3-4, nodes 1,2,3 are interior
	out := Compress(g)

	if out.NumNodes != 2 {
		t.Fatalf("NumNodes = %d, want 2 (endpoints 0 and 4)", out.NumNodes)
	}
	if out.NumEdges != 1 {
		t.Fatalf("NumEdges = %d, want 1", out.NumEdges)
	}
	if out.LengthMM[0] != 4000 {
		t.Fatalf("compressed length = %d, want 4000 (4 segments of 1000mm)", out.LengthMM[0])
	}
	gs, ge := out.GeoFirstOut[0], out.GeoFirstOut[1]
	if ge-gs != 3 {
		t.Fatalf("intermediate shape points = %d, want 3 (nodes 1,2,3)", ge-gs)
	}
}

func TestCompressPreservesBranchPoints(t *testing.T) {
	// 0-1-2 is a chain, but node 2 also connects to 3: node 2 has three
	// distinct neighbors (1, 3, plus itself counted once per direction) so
	// it must be retained, not compressed away.
	g := buildTestGraph(4, [][3]uint32{
		{0, 1, 1000}, {1, 0, 1000},
		{1, 2, 1000}, {2, 1, 1000},
		{2, 3, 1000}, {3, 2, 1000},
		{2, 0, 1000}, {0, 2, 1000},
	})
	out := Compress(g)

	if out.NumNodes != 4 {
		t.Fatalf("branch node was incorrectly compressed away: NumNodes = %d, want 4", out.NumNodes)
	}
}

func TestCompressIdempotent(t *testing.T) {
	g := buildChainGraph(6)
	once := Compress(g)
	twice := Compress(once)

	if once.NumNodes != twice.NumNodes || once.NumEdges != twice.NumEdges {
		t.Fatalf("compression not idempotent: once(NumNodes=%d,NumEdges=%d) twice(NumNodes=%d,NumEdges=%d)",
			once.NumNodes, once.NumEdges, twice.NumNodes, twice.NumEdges)
	}
	for i := range once.LengthMM {
		if once.LengthMM[i] != twice.LengthMM[i] {
			t.Fatalf("edge %d length changed on second compression: %d vs %d", i, once.LengthMM[i], twice.LengthMM[i])
		}
	}
}

func TestCompressDiscardsLoopBackToStart(t *testing.T) {
	// Nodes 1 and 2 are interior, forming a one-way cycle back to node 0;
	// node 0 has three distinct neighbors (1, 2, 3) so it is retained. The
	// chain walk 0->1->2->0 loops back to its own start and must be
	// discarded rather than emitted as a self-loop edge.
	g := buildTestGraph(4, [][3]uint32{
		{0, 1, 1000}, {1, 2, 1000}, {2, 0, 1000},
		{0, 3, 500}, {3, 0, 500},
	})
	out := Compress(g)
	for e := uint32(0); e < out.NumEdges; e++ {
		from := -1
		for n := uint32(0); n < out.NumNodes; n++ {
			s, end := out.EdgesFrom(n)
			if e >= s && e < end {
				from = int(n)
				break
			}
		}
		if from >= 0 && uint32(from) == out.Head[e] {
			t.Fatalf("compression produced a self-loop edge at node %d", from)
		}
	}
}
