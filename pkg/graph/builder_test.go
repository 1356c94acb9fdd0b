package graph

import (
	"testing"

	"weatherroute/pkg/osm"
)

// twoNodeData builds a minimal dataset: one way over two nodes 111 m apart,
// carrying the given tags.
func twoNodeData(tags map[string]string) *osm.Data {
	return &osm.Data{
		Nodes: map[osm.NodeID]*osm.Node{
			1: {ID: 1, Lat: 0, Lon: 0},
			2: {ID: 2, Lat: 0, Lon: 0.001},
		},
		Ways: []*osm.Way{{ID: 10, NodeIDs: []osm.NodeID{1, 2}, Tags: tags}},
	}
}

func TestBuildOnewayPolicy(t *testing.T) {
	tests := []struct {
		name    string
		tags    map[string]string
		wantFwd bool
		wantBwd bool
	}{
		{"untagged is bidirectional", map[string]string{"highway": "residential"}, true, true},
		{"motorway untagged is bidirectional", map[string]string{"highway": "motorway"}, true, true},
		{"roundabout untagged is bidirectional", map[string]string{"highway": "residential", "junction": "roundabout"}, true, true},
		{"oneway yes", map[string]string{"highway": "primary", "oneway": "yes"}, true, false},
		{"oneway true", map[string]string{"highway": "primary", "oneway": "true"}, true, false},
		{"oneway 1", map[string]string{"highway": "primary", "oneway": "1"}, true, false},
		{"oneway -1 is reverse only", map[string]string{"highway": "primary", "oneway": "-1"}, false, true},
		{"oneway no", map[string]string{"highway": "primary", "oneway": "no"}, true, true},
		{"oneway reversible falls back to bidirectional", map[string]string{"highway": "residential", "oneway": "reversible"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(twoNodeData(tt.tags))
			if g.NumNodes != 2 {
				t.Fatalf("NumNodes = %d, want 2", g.NumNodes)
			}
			// Node 1 is seen first along the way, so it compacts to index 0.
			_, fwd := g.FindEdge(0, 1)
			_, bwd := g.FindEdge(1, 0)
			if fwd != tt.wantFwd || bwd != tt.wantBwd {
				t.Errorf("edges (fwd, bwd) = (%v, %v), want (%v, %v)", fwd, bwd, tt.wantFwd, tt.wantBwd)
			}
		})
	}
}

func TestBuildFiltersNonDrivableWays(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
	}{
		{"footway class", map[string]string{"highway": "footway"}},
		{"cycleway class", map[string]string{"highway": "cycleway"}},
		{"no highway tag", map[string]string{"name": "Some Path"}},
		{"area highway", map[string]string{"highway": "residential", "area": "yes"}},
		{"private access", map[string]string{"highway": "residential", "access": "private"}},
		{"no access", map[string]string{"highway": "residential", "access": "no"}},
		{"motor_vehicle no", map[string]string{"highway": "residential", "motor_vehicle": "no"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(twoNodeData(tt.tags))
			if g.NumNodes != 0 || g.NumEdges != 0 {
				t.Errorf("way was not filtered: NumNodes=%d NumEdges=%d", g.NumNodes, g.NumEdges)
			}
		})
	}
}

func TestBuildSkipsSegmentsWithMissingNodes(t *testing.T) {
	// The way references node 3, which the dataset does not carry (e.g. it
	// fell outside the bbox); only the 1-2 segment must survive.
	data := &osm.Data{
		Nodes: map[osm.NodeID]*osm.Node{
			1: {ID: 1, Lat: 0, Lon: 0},
			2: {ID: 2, Lat: 0, Lon: 0.001},
		},
		Ways: []*osm.Way{{ID: 10, NodeIDs: []osm.NodeID{1, 2, 3}, Tags: map[string]string{"highway": "residential"}}},
	}

	g := Build(data)
	if g.NumNodes != 2 {
		t.Fatalf("NumNodes = %d, want 2", g.NumNodes)
	}
	if g.NumEdges != 2 {
		t.Fatalf("NumEdges = %d, want 2 (one bidirectional segment)", g.NumEdges)
	}
}

func TestBuildEdgeAttributes(t *testing.T) {
	g := Build(twoNodeData(map[string]string{"highway": "primary", "name": "Le Duan"}))
	if g.NumEdges != 2 {
		t.Fatalf("NumEdges = %d, want 2", g.NumEdges)
	}
	for e := uint32(0); e < g.NumEdges; e++ {
		if g.Class[e] != Primary {
			t.Errorf("edge %d class = %v, want primary", e, g.Class[e])
		}
		if g.SpeedKmh[e] != SpeedKmh(Primary) {
			t.Errorf("edge %d speed = %d, want %d", e, g.SpeedKmh[e], SpeedKmh(Primary))
		}
		if g.Name[e] != "Le Duan" {
			t.Errorf("edge %d name = %q, want %q", e, g.Name[e], "Le Duan")
		}
		// 0.001 degrees of longitude at the equator is ~111 m.
		if g.LengthMM[e] < 100_000 || g.LengthMM[e] > 120_000 {
			t.Errorf("edge %d length = %d mm, want ~111,000", e, g.LengthMM[e])
		}
	}
}
