package graph

// Compress implements Graph Builder Step 4: replace every maximal run of
// degree-2, single-class interior nodes with one edge carrying the
// concatenated polyline; interior nodes survive only as intermediate shape
// points.
func Compress(g *Graph) *Graph {
	if g.NumNodes == 0 {
		return g
	}

	interior := classifyInterior(g)

	var edges []chainEdge

	for u := uint32(0); u < g.NumNodes; u++ {
		if interior[u] {
			continue
		}
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			to, lengthMM, shapeLat, shapeLon, ok := walkChain(g, interior, u, e)
			if !ok {
				continue
			}
			edges = append(edges, chainEdge{
				from: u, to: to, lengthMM: lengthMM,
				class: g.Class[e], speed: g.SpeedKmh[e], name: g.Name[e],
				shapeLat: shapeLat, shapeLon: shapeLon,
			})
		}
	}

	return rebuildFromEdges(g, edges)
}

// classifyInterior computes, for every node, whether it is a chain
// interior node: exactly two distinct neighbor node IDs across every
// incident edge (incoming or outgoing), all of a single road class.
func classifyInterior(g *Graph) []bool {
	neighborSets := make([]map[uint32]bool, g.NumNodes)
	classSets := make([]map[RoadClass]bool, g.NumNodes)
	for i := range neighborSets {
		neighborSets[i] = make(map[uint32]bool, 2)
		classSets[i] = make(map[RoadClass]bool, 1)
	}

	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			c := g.Class[e]
			neighborSets[u][v] = true
			neighborSets[v][u] = true
			classSets[u][c] = true
			classSets[v][c] = true
		}
	}

	interior := make([]bool, g.NumNodes)
	for i := uint32(0); i < g.NumNodes; i++ {
		interior[i] = len(neighborSets[i]) == 2 && len(classSets[i]) == 1
	}
	return interior
}

// walkChain follows outgoing edges from u starting at edge index e0 through
// any number of interior nodes, concatenating their coordinates as
// intermediate shape points, until it reaches a non-interior node or a node
// from which the chain cannot continue directionally (treated the same
// way: as the endpoint). Returns ok=false only if the chain loops back to
// its own starting node, which the compression invariant forbids.
func walkChain(g *Graph, interior []bool, u, e0 uint32) (to uint32, lengthMM uint32, shapeLat, shapeLon []float64, ok bool) {
	cur := u
	edge := e0
	var totalLen uint64
	var lat, lon []float64

	for step := uint32(0); step <= g.NumNodes; step++ {
		next := g.Head[edge]
		totalLen += uint64(g.LengthMM[edge])
		lat = append(lat, edgeShapeLat(g, edge)...)
		lon = append(lon, edgeShapeLon(g, edge)...)

		if !interior[next] {
			if next == u {
				return 0, 0, nil, nil, false
			}
			return next, uint32(totalLen), lat, lon, true
		}

		nextEdge, found := findOutgoingExcluding(g, next, cur)
		if !found {
			if next == u {
				return 0, 0, nil, nil, false
			}
			return next, uint32(totalLen), lat, lon, true
		}

		lat = append(lat, g.NodeLat[next])
		lon = append(lon, g.NodeLon[next])
		cur = next
		edge = nextEdge
	}

	return 0, 0, nil, nil, false
}

// edgeShapeLat and edgeShapeLon return the intermediate shape points already
// stored for edge e (from a previous compression pass), so re-compressing an
// already-compressed graph never drops geometry.
func edgeShapeLat(g *Graph, e uint32) []float64 {
	if g.GeoFirstOut == nil {
		return nil
	}
	return g.GeoShapeLat[g.GeoFirstOut[e]:g.GeoFirstOut[e+1]]
}

func edgeShapeLon(g *Graph, e uint32) []float64 {
	if g.GeoFirstOut == nil {
		return nil
	}
	return g.GeoShapeLon[g.GeoFirstOut[e]:g.GeoFirstOut[e+1]]
}

// findOutgoingExcluding returns an outgoing edge index from node whose
// target is not exclude, or ok=false if none exists.
func findOutgoingExcluding(g *Graph, node, exclude uint32) (edgeIdx uint32, ok bool) {
	start, end := g.EdgesFrom(node)
	for e := start; e < end; e++ {
		if g.Head[e] != exclude {
			return e, true
		}
	}
	return 0, false
}

// chainEdge is one compressed edge before the CSR rebuild: endpoints in the
// pre-compression index space plus the accumulated attributes of its chain.
type chainEdge struct {
	from, to uint32
	lengthMM uint32
	class    RoadClass
	speed    uint16
	name     string
	shapeLat []float64
	shapeLon []float64
}

// rebuildFromEdges compacts the retained (non-interior) node set to a
// dense index range and emits a fresh CSR graph from the compressed edge
// list, identical in shape to FilterToComponent's rebuild step.
func rebuildFromEdges(g *Graph, edges []chainEdge) *Graph {
	retained := make(map[uint32]uint32)
	var order []uint32
	remap := func(old uint32) uint32 {
		if idx, ok := retained[old]; ok {
			return idx
		}
		idx := uint32(len(order))
		retained[old] = idx
		order = append(order, old)
		return idx
	}
	for _, e := range edges {
		remap(e.from)
		remap(e.to)
	}

	numNodes := uint32(len(order))
	numEdges := uint32(len(edges))

	firstOut := make([]uint32, numNodes+1)
	for _, e := range edges {
		firstOut[retained[e.from]+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	head := make([]uint32, numEdges)
	lengthMM := make([]uint32, numEdges)
	class := make([]RoadClass, numEdges)
	speed := make([]uint16, numEdges)
	name := make([]string, numEdges)
	geoFirstOut := make([]uint32, numEdges+1)
	var geoShapeLat, geoShapeLon []float64

	cursor := make([]uint32, numNodes)
	copy(cursor, firstOut[:numNodes])
	for _, e := range edges {
		from := retained[e.from]
		idx := cursor[from]
		head[idx] = retained[e.to]
		lengthMM[idx] = e.lengthMM
		class[idx] = e.class
		speed[idx] = e.speed
		name[idx] = e.name
		geoFirstOut[idx] = uint32(len(geoShapeLat))
		geoShapeLat = append(geoShapeLat, e.shapeLat...)
		geoShapeLon = append(geoShapeLon, e.shapeLon...)
		cursor[from]++
	}
	geoFirstOut[numEdges] = uint32(len(geoShapeLat))

	nodeLat := make([]float64, numNodes)
	nodeLon := make([]float64, numNodes)
	for newIdx, oldIdx := range order {
		nodeLat[newIdx] = g.NodeLat[oldIdx]
		nodeLon[newIdx] = g.NodeLon[oldIdx]
	}

	return &Graph{
		NumNodes: numNodes, NumEdges: numEdges,
		FirstOut: firstOut, Head: head, LengthMM: lengthMM,
		Class: class, SpeedKmh: speed, Name: name,
		NodeLat: nodeLat, NodeLon: nodeLon,
		GeoFirstOut: geoFirstOut, GeoShapeLat: geoShapeLat, GeoShapeLon: geoShapeLon,
	}
}
