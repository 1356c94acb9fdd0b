package graph

import (
	"os"
	"path/filepath"
	"testing"
)

func mustReadFile(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return b
}

func writeFile(t *testing.T, path string, b []byte) {
	t.Helper()
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	g := buildTestGraph(3, [][3]uint32{{0, 1, 1500}, {1, 2, 2500}})
	g.Class[0], g.Class[1] = Primary, Residential
	g.Name[0], g.Name[1] = "Le Duan", ""
	g.GeoFirstOut = []uint32{0, 1, 1}
	g.GeoShapeLat = []float64{10.78}
	g.GeoShapeLon = []float64{106.70}

	path := filepath.Join(t.TempDir(), "graph.bin")
	if err := WriteBinary(path, g); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	got, err := ReadBinary(path)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}

	if got.NumNodes != g.NumNodes || got.NumEdges != g.NumEdges {
		t.Fatalf("got NumNodes=%d NumEdges=%d, want %d %d", got.NumNodes, got.NumEdges, g.NumNodes, g.NumEdges)
	}
	for i := range g.Head {
		if got.Head[i] != g.Head[i] || got.LengthMM[i] != g.LengthMM[i] || got.Class[i] != g.Class[i] || got.Name[i] != g.Name[i] {
			t.Fatalf("edge %d mismatch: got %+v want head=%d len=%d class=%v name=%q", i, got, g.Head[i], g.LengthMM[i], g.Class[i], g.Name[i])
		}
	}
	if len(got.GeoShapeLat) != 1 || got.GeoShapeLat[0] != 10.78 {
		t.Fatalf("geometry not preserved: %v", got.GeoShapeLat)
	}
}

func TestBinaryRejectsCorruptMagic(t *testing.T) {
	g := buildTestGraph(2, [][3]uint32{{0, 1, 1000}})
	path := filepath.Join(t.TempDir(), "graph.bin")
	if err := WriteBinary(path, g); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	// Corrupt the magic bytes in place.
	corrupt := append([]byte(nil), mustReadFile(t, path)...)
	corrupt[0] = 'X'
	writeFile(t, path, corrupt)

	if _, err := ReadBinary(path); err == nil {
		t.Fatal("expected error reading file with corrupt magic bytes")
	}
}
