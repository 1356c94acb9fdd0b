package graph

import (
	"sort"

	"weatherroute/pkg/geo"
	"weatherroute/pkg/osm"
)

// Build implements Graph Builder Steps 1–2: filter OSM ways to the
// drivable classes, then construct the raw directed multigraph from the
// surviving ways, respecting one-way semantics. LSCC extraction (Step 3)
// and degree-2 compression (Step 4) are separate passes (scc.go,
// compress.go) so each stage can be tested against its own small fixture.
func Build(data *osm.Data) *Graph {
	type rawEdge struct {
		from, to uint32
		lengthMM uint32
		class    RoadClass
		name     string
	}

	nodeIdx := make(map[osm.NodeID]uint32)
	var nodeIDs []osm.NodeID

	compact := func(id osm.NodeID) uint32 {
		if idx, ok := nodeIdx[id]; ok {
			return idx
		}
		idx := uint32(len(nodeIDs))
		nodeIdx[id] = idx
		nodeIDs = append(nodeIDs, id)
		return idx
	}

	var edges []rawEdge

	for _, way := range data.Ways {
		class, ok := ParseClass(osm.Tag(way.Tags, "highway"))
		if !ok {
			continue
		}
		if !isCarAccessible(way.Tags) {
			continue
		}
		if len(way.NodeIDs) < 2 {
			continue
		}
		fwd, bwd := directionFlags(way.Tags)
		name := osm.Tag(way.Tags, "name")

		for i := 0; i < len(way.NodeIDs)-1; i++ {
			fromID, toID := way.NodeIDs[i], way.NodeIDs[i+1]
			fromNode, okF := data.Nodes[fromID]
			toNode, okT := data.Nodes[toID]
			if !okF || !okT {
				continue
			}

			lengthM := geo.Haversine(fromNode.Lat, fromNode.Lon, toNode.Lat, toNode.Lon)
			lengthMM := uint32(lengthM * 1000)
			if lengthMM == 0 {
				lengthMM = 1
			}

			from := compact(fromID)
			to := compact(toID)

			if fwd {
				edges = append(edges, rawEdge{from: from, to: to, lengthMM: lengthMM, class: class, name: name})
			}
			if bwd {
				edges = append(edges, rawEdge{from: to, to: from, lengthMM: lengthMM, class: class, name: name})
			}
		}
	}

	numNodes := uint32(len(nodeIDs))
	if numNodes == 0 {
		return &Graph{}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].from != edges[j].from {
			return edges[i].from < edges[j].from
		}
		return edges[i].to < edges[j].to
	})

	numEdges := uint32(len(edges))
	firstOut := make([]uint32, numNodes+1)
	head := make([]uint32, numEdges)
	lengthMM := make([]uint32, numEdges)
	class := make([]RoadClass, numEdges)
	speed := make([]uint16, numEdges)
	name := make([]string, numEdges)

	for i, e := range edges {
		head[i] = e.to
		lengthMM[i] = e.lengthMM
		class[i] = e.class
		speed[i] = SpeedKmh(e.class)
		name[i] = e.name
		firstOut[e.from+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	nodeLat := make([]float64, numNodes)
	nodeLon := make([]float64, numNodes)
	for id, idx := range nodeIdx {
		n := data.Nodes[id]
		nodeLat[idx] = n.Lat
		nodeLon[idx] = n.Lon
	}

	// No intermediate shape points yet: every edge here is a single OSM
	// way segment between adjacent nodes. Compression (Step 4) populates
	// GeoShapeLat/Lon as it concatenates chains of these into longer edges.
	geoFirstOut := make([]uint32, numEdges+1)

	return &Graph{
		NumNodes:    numNodes,
		NumEdges:    numEdges,
		FirstOut:    firstOut,
		Head:        head,
		LengthMM:    lengthMM,
		Class:       class,
		SpeedKmh:    speed,
		Name:        name,
		NodeLat:     nodeLat,
		NodeLon:     nodeLon,
		GeoFirstOut: geoFirstOut,
	}
}

// isCarAccessible drops area highways (pedestrian plazas rendered as ways)
// and explicitly restricted access, even when the highway tag otherwise
// qualifies.
func isCarAccessible(tags map[string]string) bool {
	if osm.Tag(tags, "area") == "yes" {
		return false
	}
	access := osm.Tag(tags, "access")
	if access == "no" || access == "private" {
		return false
	}
	if osm.Tag(tags, "motor_vehicle") == "no" {
		return false
	}
	return true
}

// directionFlags returns (forward, backward) for a way from its oneway tag:
// bidirectional unless the tag says forward-only or reverse-only. Any other
// oneway value falls back to bidirectional.
func directionFlags(tags map[string]string) (forward, backward bool) {
	switch osm.Tag(tags, "oneway") {
	case "yes", "true", "1":
		return true, false
	case "-1":
		return false, true
	default:
		return true, true
	}
}
