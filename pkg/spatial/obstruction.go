package spatial

import (
	"github.com/tidwall/rtree"

	"weatherroute/pkg/geo"
	"weatherroute/pkg/graph"
)

// EdgeKey identifies a directed edge by its endpoints, the unit the
// obstruction overlay blocks/penalizes by.
type EdgeKey struct {
	From, To uint32
}

const defaultFloodPenalty = 5.0
const hardBlockPenaltyThreshold = 100.0

// Feature is a minimal GeoJSON-derived obstruction input: a polygon ring
// (closed, first point repeated last) plus its blockType/penalty
// properties.
type Feature struct {
	BlockType string // "block" or "flood"
	Penalty   float64
	RingLat   []float64
	RingLon   []float64
}

// ObstructionIndex is the immutable STRtree of every directed edge's
// polyline bounding box, built once over the final graph and queried once
// per incoming Feature list.
type ObstructionIndex struct {
	g    *graph.Graph
	tree rtree.RTreeG[uint32]
}

// NewObstructionIndex indexes every directed edge of g by its polyline's
// bounding box, keyed by edge index (from which Resolve recovers (from,to)
// via g.EdgeSource and g.Head).
func NewObstructionIndex(g *graph.Graph) *ObstructionIndex {
	idx := &ObstructionIndex{g: g}
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			lats, lons := g.GeometryFrom(u, e)
			minLat, minLon, maxLat, maxLon := boundingBox(lats, lons)
			idx.tree.Insert([2]float64{minLon, minLat}, [2]float64{maxLon, maxLat}, e)
		}
	}
	return idx
}

func boundingBox(lats, lons []float64) (minLat, minLon, maxLat, maxLon float64) {
	minLat, minLon = lats[0], lons[0]
	maxLat, maxLon = lats[0], lons[0]
	for i := 1; i < len(lats); i++ {
		if lats[i] < minLat {
			minLat = lats[i]
		}
		if lats[i] > maxLat {
			maxLat = lats[i]
		}
		if lons[i] < minLon {
			minLon = lons[i]
		}
		if lons[i] > maxLon {
			maxLon = lons[i]
		}
	}
	return minLat, minLon, maxLat, maxLon
}

// Resolve finds candidate edges via the STRtree for every feature, confirms
// precise intersection against the feature's ring, and classifies each
// confirmed edge as hard-blocked or penalized.
func (idx *ObstructionIndex) Resolve(features []Feature) (blocked map[EdgeKey]bool, penalty map[EdgeKey]float64) {
	blocked = make(map[EdgeKey]bool)
	penalty = make(map[EdgeKey]float64)

	for _, f := range features {
		minLat, minLon, maxLat, maxLon := boundingBox(f.RingLat, f.RingLon)

		var candidates []uint32
		idx.tree.Search([2]float64{minLon, minLat}, [2]float64{maxLon, maxLat},
			func(_, _ [2]float64, e uint32) bool {
				candidates = append(candidates, e)
				return true
			})

		for _, e := range candidates {
			from := idx.g.EdgeSource(e)
			to := idx.g.Head[e]
			lats, lons := idx.g.GeometryFrom(from, e)
			if !polylineIntersectsRing(lats, lons, f.RingLat, f.RingLon) {
				continue
			}

			key := EdgeKey{From: from, To: to}
			hardBlock := f.BlockType != "flood"
			if f.BlockType == "flood" {
				p := f.Penalty
				if p <= 0 {
					p = defaultFloodPenalty
				}
				if p >= hardBlockPenaltyThreshold {
					hardBlock = true
				} else if !blocked[key] {
					if existing, ok := penalty[key]; !ok || p > existing {
						penalty[key] = p
					}
				}
			}
			if hardBlock {
				blocked[key] = true
				delete(penalty, key)
			}
		}
	}

	return blocked, penalty
}

// polylineIntersectsRing tests whether any segment of the edge polyline
// crosses any segment of the feature ring, or the polyline's start point
// falls inside the ring (fully-contained edges have no crossing segment).
func polylineIntersectsRing(lats, lons, ringLat, ringLon []float64) bool {
	for i := 0; i+1 < len(lats); i++ {
		for j := 0; j+1 < len(ringLat); j++ {
			if geo.SegmentsIntersect(
				lats[i], lons[i], lats[i+1], lons[i+1],
				ringLat[j], ringLon[j], ringLat[j+1], ringLon[j+1],
			) {
				return true
			}
		}
	}
	return pointInRing(lats[0], lons[0], ringLat, ringLon)
}

// pointInRing is a standard ray-casting point-in-polygon test.
func pointInRing(lat, lon float64, ringLat, ringLon []float64) bool {
	inside := false
	n := len(ringLat)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		yi, xi := ringLat[i], ringLon[i]
		yj, xj := ringLat[j], ringLon[j]
		if (yi > lat) != (yj > lat) {
			xIntersect := (xj-xi)*(lat-yi)/(yj-yi) + xi
			if lon < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}
