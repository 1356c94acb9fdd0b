// Package osm fetches OpenStreetMap data for a bounding box from the
// Overpass API (or a local .osm.pbf extract) and exposes it as plain
// node/way records for the graph builder and address extractor to consume.
// Ways are narrowed to the drivable highway classes at fetch time; one-way
// direction handling and the final class filter belong to pkg/graph.
package osm

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// NodeID is an OSM node identifier.
type NodeID int64

// WayID is an OSM way identifier.
type WayID int64

// Node is a raw OSM node: coordinates plus whatever tags it carries.
// Most nodes referenced only as way vertices have no tags.
type Node struct {
	ID   NodeID
	Lat  float64
	Lon  float64
	Tags map[string]string
}

// Way is a raw OSM way: an ordered list of node references plus tags.
type Way struct {
	ID      WayID
	NodeIDs []NodeID
	Tags    map[string]string
}

// Data is the result of an ingest: every node seen (including bare
// geometry vertices) and every way within the query's filters.
type Data struct {
	Nodes map[NodeID]*Node
	Ways  []*Way
}

// Tag returns tags[key], or "" if the node/way carries no tags at all.
func Tag(tags map[string]string, key string) string {
	if tags == nil {
		return ""
	}
	return tags[key]
}

// BBox is a geographic bounding box: (min_lat, min_lon, max_lat, max_lon).
type BBox struct {
	MinLat, MinLon, MaxLat, MaxLon float64
}

// CacheKey returns the SHA1 hex digest of the bbox rendered at 6-decimal
// precision, the cache-file naming key.
func (b BBox) CacheKey() string {
	s := fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Contains reports whether (lat, lon) falls within the bbox, inclusive.
func (b BBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}
