package osm

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

// ParsePBF reads a local .osm.pbf extract and returns the same Data shape
// Fetch produces, filtered to bbox. The file is scanned twice: ways first,
// to learn which nodes are way vertices, then nodes for coordinates and
// address tags. This is the offline alternative to the Overpass fetch for
// regions large enough that the public API would time out.
func ParsePBF(ctx context.Context, path string, bbox BBox) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pbf: %w", err)
	}
	defer f.Close()

	allowed := make(map[string]bool, len(allowedHighways))
	for _, h := range allowedHighways {
		allowed[h] = true
	}

	// Pass 1: ways.
	referenced := make(map[osm.NodeID]struct{})
	var ways []*Way

	scanner := osmpbf.New(ctx, f, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if !allowed[w.Tags.Find("highway")] || len(w.Nodes) < 2 {
			continue
		}
		way := &Way{ID: WayID(w.ID), Tags: w.Tags.Map()}
		for _, wn := range w.Nodes {
			way.NodeIDs = append(way.NodeIDs, NodeID(wn.ID))
			referenced[wn.ID] = struct{}{}
		}
		ways = append(ways, way)
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("scan ways: %w", err)
	}
	scanner.Close()
	log.Printf("osm: pbf way pass: %d ways, %d referenced nodes", len(ways), len(referenced))

	// Pass 2: nodes. Keep way vertices plus address-bearing nodes, both
	// only within bbox; way segments with an out-of-bbox endpoint are
	// dropped later by the graph builder when the node lookup misses.
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for node pass: %w", err)
	}
	nodes := make(map[NodeID]*Node, len(referenced))
	scanner = osmpbf.New(ctx, f, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if !bbox.Contains(n.Lat, n.Lon) {
			continue
		}
		_, isVertex := referenced[n.ID]
		if !isVertex && !isAddressBearing(n.Tags) {
			continue
		}
		node := &Node{ID: NodeID(n.ID), Lat: n.Lat, Lon: n.Lon}
		if len(n.Tags) > 0 {
			node.Tags = n.Tags.Map()
		}
		nodes[NodeID(n.ID)] = node
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("scan nodes: %w", err)
	}
	scanner.Close()
	log.Printf("osm: pbf node pass: %d nodes kept", len(nodes))

	return &Data{Nodes: nodes, Ways: ways}, nil
}

// isAddressBearing matches the Overpass query's address/POI node selection:
// a house number, or a name alongside an amenity/shop/tourism/building tag.
func isAddressBearing(tags osm.Tags) bool {
	if tags.Find("addr:housenumber") != "" {
		return true
	}
	if tags.Find("name") == "" {
		return false
	}
	return tags.Find("amenity") != "" || tags.Find("shop") != "" ||
		tags.Find("tourism") != "" || tags.Find("building") != ""
}
