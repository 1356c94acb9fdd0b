package routing

import (
	"context"
	"math"
	"testing"

	"weatherroute/pkg/graph"
	"weatherroute/pkg/spatial"
)

// buildLineGraph constructs the 3-node line A(0,0) -> B(0,1) -> C(0,2),
// residential class, each edge exactly one degree of latitude, directed
// forward only (node-to-node queries in these tests always go A->C).
func buildLineGraph(t *testing.T) *graph.Graph {
	t.Helper()
	const edgeLenMM = 111_195_000 // ~111.195 km, one degree of latitude

	g := &graph.Graph{
		NumNodes:    3,
		NumEdges:    2,
		FirstOut:    []uint32{0, 1, 2, 2},
		Head:        []uint32{1, 2},
		LengthMM:    []uint32{edgeLenMM, edgeLenMM},
		Class:       []graph.RoadClass{graph.Residential, graph.Residential},
		SpeedKmh:    []uint16{graph.SpeedKmh(graph.Residential), graph.SpeedKmh(graph.Residential)},
		Name:        []string{"", ""},
		NodeLat:     []float64{0, 1, 2},
		NodeLon:     []float64{0, 0, 0},
		GeoFirstOut: []uint32{0, 0, 0},
	}
	return g
}

func TestSearchLineGraphDistance(t *testing.T) {
	g := buildLineGraph(t)
	s := NewSearcher(g)

	res, err := s.Search(context.Background(), NodeEndpoint(0), NodeEndpoint(2), graph.Normal, NoOverlay)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	wantPath := []uint32{0, 1, 2}
	if len(res.Path) != len(wantPath) {
		t.Fatalf("Path = %v, want %v", res.Path, wantPath)
	}
	for i, n := range wantPath {
		if res.Path[i] != n {
			t.Fatalf("Path = %v, want %v", res.Path, wantPath)
		}
	}

	const wantKm = 222.0
	gotKm := res.DistanceM / 1000.0
	if math.Abs(gotKm-wantKm) > 2.0 {
		t.Errorf("DistanceM = %.1f km, want ~%.1f km", gotKm, wantKm)
	}
}

func TestSearchBlockedEdgeNoPath(t *testing.T) {
	g := buildLineGraph(t)
	s := NewSearcher(g)

	blocked := Overlay{Blocked: map[spatial.EdgeKey]bool{{From: 0, To: 1}: true}}
	_, err := s.Search(context.Background(), NodeEndpoint(0), NodeEndpoint(2), graph.Normal, blocked)
	if err == nil {
		t.Fatalf("Search: expected ErrNoPath, got success")
	}
}

func TestSearchUnknownEndpoint(t *testing.T) {
	g := buildLineGraph(t)
	s := NewSearcher(g)

	_, err := s.Search(context.Background(), NodeEndpoint(99), NodeEndpoint(2), graph.Normal, NoOverlay)
	if err == nil {
		t.Fatalf("Search: expected error for out-of-range node, got success")
	}
}

func TestSearchAnchorEndpoints(t *testing.T) {
	g := buildLineGraph(t)
	s := NewSearcher(g)

	origin := &VirtualAnchor{
		Lat: 0.001, Lon: 0,
		Neighbors: []AnchorNeighbor{{Node: 0, DistanceM: 50}},
	}
	dest := &VirtualAnchor{
		Lat: 2.001, Lon: 0,
		Neighbors: []AnchorNeighbor{{Node: 2, DistanceM: 30}},
	}

	res, err := s.Search(context.Background(), AnchorEndpoint(origin), AnchorEndpoint(dest), graph.Normal, NoOverlay)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Lats[0] != origin.Lat || res.Lons[0] != origin.Lon {
		t.Errorf("expected geometry to start at origin anchor, got (%f,%f)", res.Lats[0], res.Lons[0])
	}
	last := len(res.Lats) - 1
	if res.Lats[last] != dest.Lat || res.Lons[last] != dest.Lon {
		t.Errorf("expected geometry to end at destination anchor, got (%f,%f)", res.Lats[last], res.Lons[last])
	}
	if res.DistanceM <= 222_000 {
		t.Errorf("DistanceM = %f, want > plain graph distance since anchor hops add distance", res.DistanceM)
	}
}

// buildDetourGraph constructs a 5-hop direct chain 0->1->2->3->4->5 (1 km
// per hop) plus a detour 0->6->5 whose combined length is 1.5x the direct
// route, all residential. Every node sits at the same coordinates so the
// heuristic contributes nothing and the penalty arithmetic alone decides
// which branch wins.
func buildDetourGraph() *graph.Graph {
	const hopMM = 1_000_000
	const detourMM = 3_750_000 // two hops totalling 7.5 km, 1.5x the 5 km chain

	return &graph.Graph{
		NumNodes: 7,
		NumEdges: 7,
		FirstOut: []uint32{0, 2, 3, 4, 5, 6, 6, 7},
		Head:     []uint32{1, 6, 2, 3, 4, 5, 5},
		LengthMM: []uint32{hopMM, detourMM, hopMM, hopMM, hopMM, hopMM, detourMM},
		Class: []graph.RoadClass{
			graph.Residential, graph.Residential, graph.Residential, graph.Residential,
			graph.Residential, graph.Residential, graph.Residential,
		},
		SpeedKmh:    []uint16{30, 30, 30, 30, 30, 30, 30},
		Name:        []string{"", "", "", "", "", "", ""},
		NodeLat:     []float64{0, 0, 0, 0, 0, 0, 0},
		NodeLon:     []float64{0, 0, 0, 0, 0, 0, 0},
		GeoFirstOut: []uint32{0, 0, 0, 0, 0, 0, 0, 0},
	}
}

func pathContains(path []uint32, node uint32) bool {
	for _, n := range path {
		if n == node {
			return true
		}
	}
	return false
}

func TestSearchFloodPenaltyReroute(t *testing.T) {
	g := buildDetourGraph()
	s := NewSearcher(g)
	key := spatial.EdgeKey{From: 0, To: 1}

	// Penalty 3 on the first hop: direct costs 3+4 = 7 km-equivalents
	// against the detour's 7.5, so the direct chain still wins.
	mild := Overlay{Penalty: map[spatial.EdgeKey]float64{key: 3.0}}
	res, err := s.Search(context.Background(), NodeEndpoint(0), NodeEndpoint(5), graph.Normal, mild)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !pathContains(res.Path, 1) {
		t.Errorf("penalty 3.0 should not reroute, got path %v", res.Path)
	}

	// Penalty 6 pushes the direct chain to 6+4 = 10, past the detour's 7.5.
	severe := Overlay{Penalty: map[spatial.EdgeKey]float64{key: 6.0}}
	res, err = s.Search(context.Background(), NodeEndpoint(0), NodeEndpoint(5), graph.Normal, severe)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !pathContains(res.Path, 6) {
		t.Errorf("penalty 6.0 should reroute via the detour, got path %v", res.Path)
	}
}

func TestSearcherConcurrentReuse(t *testing.T) {
	g := buildLineGraph(t)
	s := NewSearcher(g)

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := s.Search(context.Background(), NodeEndpoint(0), NodeEndpoint(2), graph.Normal, NoOverlay)
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Errorf("concurrent Search: %v", err)
		}
	}
}
