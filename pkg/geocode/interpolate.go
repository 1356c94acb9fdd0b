package geocode

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"weatherroute/pkg/geo"
	"weatherroute/pkg/graph"
	"weatherroute/pkg/routing"
)

// houseNumberPattern matches a leading integer house number followed by the
// street name, e.g. "88 Phố Lạc Trung" -> (88, "Phố Lạc Trung").
var houseNumberPattern = regexp.MustCompile(`^(\d+)\s+(.+)$`)

// ParseAddress splits a free-text address into an optional house number and
// the remaining street name. ok is false when no leading integer is found,
// in which case street holds the whole input.
func ParseAddress(address string) (houseNumber int, street string, ok bool) {
	m := houseNumberPattern.FindStringSubmatch(strings.TrimSpace(address))
	if m == nil {
		return 0, strings.TrimSpace(address), false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, strings.TrimSpace(address), false
	}
	return n, strings.TrimSpace(m[2]), true
}

// InterpolationMethod is how an InterpolatedPoint's coordinates were
// derived.
type InterpolationMethod string

const (
	MethodExact        InterpolationMethod = "exact"
	MethodInterpolated InterpolationMethod = "interpolated"
	MethodFallback     InterpolationMethod = "fallback"
)

// InterpolatedPoint is the outcome of InterpolateHouseNumber.
type InterpolatedPoint struct {
	Lat, Lon    float64
	HouseNumber int
	StreetName  string
	Method      InterpolationMethod
}

// InterpolateHouseNumber resolves a house number on a street: exact match,
// else linear interpolation between the nearest lower and upper house
// numbers on the street, else whichever of the two bounds exists.
func (idx *Index) InterpolateHouseNumber(houseNumber int, street string) (InterpolatedPoint, bool) {
	type house struct {
		num      int
		lat, lon float64
	}
	var houses []house
	for _, e := range idx.entries {
		if e.Kind != KindHouse || e.StreetName != street {
			continue
		}
		n, err := strconv.Atoi(e.HouseNumber)
		if err != nil {
			continue
		}
		houses = append(houses, house{num: n, lat: e.Lat, lon: e.Lon})
	}
	if len(houses) == 0 {
		return InterpolatedPoint{}, false
	}
	sort.Slice(houses, func(i, j int) bool { return houses[i].num < houses[j].num })

	for _, h := range houses {
		if h.num == houseNumber {
			return InterpolatedPoint{Lat: h.lat, Lon: h.lon, HouseNumber: houseNumber, StreetName: street, Method: MethodExact}, true
		}
	}

	var lower, upper *house
	for i := range houses {
		h := &houses[i]
		if h.num < houseNumber && (lower == nil || h.num > lower.num) {
			lower = h
		}
		if h.num > houseNumber && (upper == nil || h.num < upper.num) {
			upper = h
		}
	}

	if lower != nil && upper != nil {
		t := float64(houseNumber-lower.num) / float64(upper.num-lower.num)
		return InterpolatedPoint{
			Lat: lower.lat + (upper.lat-lower.lat)*t,
			Lon: lower.lon + (upper.lon-lower.lon)*t,
			HouseNumber: houseNumber, StreetName: street, Method: MethodInterpolated,
		}, true
	}
	if lower != nil {
		return InterpolatedPoint{Lat: lower.lat, Lon: lower.lon, HouseNumber: houseNumber, StreetName: street, Method: MethodFallback}, true
	}
	if upper != nil {
		return InterpolatedPoint{Lat: upper.lat, Lon: upper.lon, HouseNumber: houseNumber, StreetName: street, Method: MethodFallback}, true
	}
	return InterpolatedPoint{}, false
}

// maxProjectionMeters is the edge-projection search radius for attaching an
// interpolated point to the graph.
const maxProjectionMeters = 50.0

// ProjectToGraph finds the closest edge to (lat, lon) within
// maxProjectionMeters, projects orthogonally onto it, and returns a
// VirtualAnchor whose neighbors are that edge's two endpoints weighted by
// their distance from the projection.
func ProjectToGraph(g *graph.Graph, lat, lon float64) (*routing.VirtualAnchor, bool) {
	type best struct {
		from, to         uint32
		dist             float64
		projLat, projLon float64
	}
	var b best
	found := false

	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			aLat, aLon := g.NodeLat[u], g.NodeLon[u]
			bLat, bLon := g.NodeLat[v], g.NodeLon[v]
			dist, t := geo.PointToSegmentDist(lat, lon, aLat, aLon, bLat, bLon)
			if dist > maxProjectionMeters {
				continue
			}
			if !found || dist < b.dist {
				b = best{
					from: u, to: v, dist: dist,
					projLat: aLat + t*(bLat-aLat),
					projLon: aLon + t*(bLon-aLon),
				}
				found = true
			}
		}
	}
	if !found {
		return nil, false
	}

	anchor := &routing.VirtualAnchor{Lat: b.projLat, Lon: b.projLon}
	anchor.Neighbors = append(anchor.Neighbors, routing.AnchorNeighbor{
		Node: b.from, DistanceM: geo.Haversine(b.projLat, b.projLon, g.NodeLat[b.from], g.NodeLon[b.from]),
	})
	anchor.Neighbors = append(anchor.Neighbors, routing.AnchorNeighbor{
		Node: b.to, DistanceM: geo.Haversine(b.projLat, b.projLon, g.NodeLat[b.to], g.NodeLon[b.to]),
	})
	return anchor, true
}
