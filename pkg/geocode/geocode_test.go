package geocode

import (
	"testing"

	"weatherroute/pkg/graph"
	"weatherroute/pkg/osm"
	"weatherroute/pkg/spatial"
)

// buildTestData constructs a tiny OSM dataset: one named street with two
// house numbers (80 and 100) and a POI, spanning three collinear nodes.
func buildTestData() *osm.Data {
	nodes := map[osm.NodeID]*osm.Node{
		1: {ID: 1, Lat: 0.000, Lon: 0.000},
		2: {ID: 2, Lat: 0.000, Lon: 0.001, Tags: map[string]string{"addr:housenumber": "80", "addr:street": "Phố X"}},
		3: {ID: 3, Lat: 0.000, Lon: 0.002, Tags: map[string]string{"addr:housenumber": "100", "addr:street": "Phố X"}},
		4: {ID: 4, Lat: 0.000, Lon: 0.0015, Tags: map[string]string{"name": "Cafe Sữa", "amenity": "cafe"}},
	}
	ways := []*osm.Way{
		{ID: 10, NodeIDs: []osm.NodeID{1, 2, 3}, Tags: map[string]string{"highway": "residential", "name": "Phố X"}},
	}
	return &osm.Data{Nodes: nodes, Ways: ways}
}

func buildTestGraph(t *testing.T) (*graph.Graph, *spatial.NodeIndex) {
	t.Helper()
	data := buildTestData()
	g := graph.Build(data)
	return g, spatial.NewNodeIndex(g)
}

func TestExtractAndSearch(t *testing.T) {
	data := buildTestData()
	g, nodeIdx := buildTestGraph(t)
	_ = g

	entries := Extract(data, nodeIdx)
	if len(entries) == 0 {
		t.Fatalf("Extract returned no entries")
	}

	var sawStreet, sawHouse, sawPOI bool
	for _, e := range entries {
		switch e.Kind {
		case KindStreet:
			sawStreet = true
		case KindHouse:
			sawHouse = true
		case KindPOI:
			sawPOI = true
		}
	}
	if !sawStreet || !sawHouse || !sawPOI {
		t.Errorf("Extract missing kinds: street=%v house=%v poi=%v", sawStreet, sawHouse, sawPOI)
	}

	idx := NewIndex(entries)
	matches := idx.Search("Pho X", 5)
	if len(matches) == 0 {
		t.Fatalf("Search(Pho X) returned nothing; diacritic folding should match Phố X")
	}
}

func TestParseAddress(t *testing.T) {
	n, street, ok := ParseAddress("88 Phố X")
	if !ok || n != 88 || street != "Phố X" {
		t.Errorf("ParseAddress = (%d, %q, %v), want (88, \"Phố X\", true)", n, street, ok)
	}

	_, street, ok = ParseAddress("Phố X")
	if ok {
		t.Errorf("ParseAddress(%q) ok=true, want false", "Phố X")
	}
	if street != "Phố X" {
		t.Errorf("ParseAddress street = %q, want %q", street, "Phố X")
	}
}

func TestInterpolateHouseNumber(t *testing.T) {
	data := buildTestData()
	_, nodeIdx := buildTestGraph(t)
	entries := Extract(data, nodeIdx)
	idx := NewIndex(entries)

	pt, ok := idx.InterpolateHouseNumber(88, "Phố X")
	if !ok {
		t.Fatalf("InterpolateHouseNumber(88, Phố X) not found")
	}
	if pt.Method != MethodInterpolated {
		t.Errorf("Method = %v, want interpolated", pt.Method)
	}
	wantLon := 0.0014 // t=(88-80)/(100-80)=0.4 between 0.001 and 0.002
	if diff := pt.Lon - wantLon; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Lon = %f, want %f", pt.Lon, wantLon)
	}

	exact, ok := idx.InterpolateHouseNumber(80, "Phố X")
	if !ok || exact.Method != MethodExact {
		t.Errorf("InterpolateHouseNumber(80, ...) = %+v, ok=%v, want method=exact", exact, ok)
	}
}

func TestProjectToGraph(t *testing.T) {
	g, _ := buildTestGraph(t)
	anchor, ok := ProjectToGraph(g, 0.00005, 0.0015)
	if !ok {
		t.Fatalf("ProjectToGraph did not find a nearby edge")
	}
	if len(anchor.Neighbors) != 2 {
		t.Errorf("Neighbors = %d, want 2", len(anchor.Neighbors))
	}
}
