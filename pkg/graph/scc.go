package graph

// transpose builds the reverse-direction CSR adjacency of g: for every
// edge u->v in g, an edge v->u in the result. Only Head/FirstOut are
// needed for SCC discovery, so weights and geometry are not carried.
func transpose(g *Graph) (firstOut, head []uint32) {
	firstOut = make([]uint32, g.NumNodes+1)
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			firstOut[g.Head[e]+1]++
		}
	}
	for i := uint32(1); i <= g.NumNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	head = make([]uint32, g.NumEdges)
	cursor := make([]uint32, g.NumNodes)
	copy(cursor, firstOut[:g.NumNodes])
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			head[cursor[v]] = u
			cursor[v]++
		}
	}
	return firstOut, head
}

// dfsFrame is one stack entry for the iterative DFS walks below: the node
// being visited and how far through its adjacency list we have scanned.
type dfsFrame struct {
	node uint32
	pos  uint32
}

// LargestSCC computes the Largest Strongly Connected Component via
// Kosaraju's algorithm: a forward DFS records a finish order, then a DFS
// over the transposed graph processes nodes in reverse finish order; each
// tree discovered in that second pass is exactly one SCC. Weak (undirected)
// connectivity is not enough here: retention requires mutual directed
// reachability between every pair of kept nodes.
func LargestSCC(g *Graph) []uint32 {
	if g.NumNodes == 0 {
		return nil
	}

	// Pass 1: forward DFS, iterative to bound stack depth on large graphs.
	visited := make([]bool, g.NumNodes)
	order := make([]uint32, 0, g.NumNodes)

	for s := uint32(0); s < g.NumNodes; s++ {
		if visited[s] {
			continue
		}
		visited[s] = true
		stack := []dfsFrame{{node: s, pos: g.FirstOut[s]}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			end := g.FirstOut[top.node+1]
			advanced := false
			for top.pos < end {
				v := g.Head[top.pos]
				top.pos++
				if !visited[v] {
					visited[v] = true
					stack = append(stack, dfsFrame{node: v, pos: g.FirstOut[v]})
					advanced = true
					break
				}
			}
			if advanced {
				continue
			}
			order = append(order, top.node)
			stack = stack[:len(stack)-1]
		}
	}

	// Pass 2: DFS over the transposed graph in reverse finish order.
	tFirstOut, tHead := transpose(g)
	component := make([]int32, g.NumNodes)
	for i := range component {
		component[i] = -1
	}

	var componentSizes []uint32
	for i := len(order) - 1; i >= 0; i-- {
		root := order[i]
		if component[root] != -1 {
			continue
		}
		compID := int32(len(componentSizes))
		var size uint32

		stack := []uint32{root}
		component[root] = compID
		for len(stack) > 0 {
			n := len(stack) - 1
			u := stack[n]
			stack = stack[:n]
			size++

			start, end := tFirstOut[u], tFirstOut[u+1]
			for e := start; e < end; e++ {
				v := tHead[e]
				if component[v] == -1 {
					component[v] = compID
					stack = append(stack, v)
				}
			}
		}
		componentSizes = append(componentSizes, size)
	}

	bestComp, bestSize := int32(0), uint32(0)
	for id, size := range componentSizes {
		if size > bestSize {
			bestComp, bestSize = int32(id), size
		}
	}

	nodes := make([]uint32, 0, bestSize)
	for i := uint32(0); i < g.NumNodes; i++ {
		if component[i] == bestComp {
			nodes = append(nodes, i)
		}
	}
	return nodes
}

// FilterToComponent returns a new Graph containing only the given node
// indices and the edges fully within that set, remapping indices to a
// dense [0, len(nodes)) range while preserving every per-edge attribute.
func FilterToComponent(g *Graph, nodes []uint32) *Graph {
	if len(nodes) == 0 {
		return &Graph{}
	}

	oldToNew := make(map[uint32]uint32, len(nodes))
	for newIdx, oldIdx := range nodes {
		oldToNew[oldIdx] = uint32(newIdx)
	}

	type kept struct {
		from, to         uint32
		lengthMM         uint32
		class            RoadClass
		speed            uint16
		name             string
		shapeLat, shapeLon []float64
	}
	var edges []kept

	for _, oldU := range nodes {
		start, end := g.EdgesFrom(oldU)
		for e := start; e < end; e++ {
			oldV := g.Head[e]
			newV, ok := oldToNew[oldV]
			if !ok {
				continue
			}
			var shapeLat, shapeLon []float64
			if g.GeoFirstOut != nil {
				gs, ge := g.GeoFirstOut[e], g.GeoFirstOut[e+1]
				if ge > gs {
					shapeLat = append(shapeLat, g.GeoShapeLat[gs:ge]...)
					shapeLon = append(shapeLon, g.GeoShapeLon[gs:ge]...)
				}
			}
			edges = append(edges, kept{
				from: oldToNew[oldU], to: newV,
				lengthMM: g.LengthMM[e], class: g.Class[e], speed: g.SpeedKmh[e], name: g.Name[e],
				shapeLat: shapeLat, shapeLon: shapeLon,
			})
		}
	}

	numNodes := uint32(len(nodes))
	numEdges := uint32(len(edges))

	firstOut := make([]uint32, numNodes+1)
	for _, e := range edges {
		firstOut[e.from+1]++
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
		idx := cursor[e.from]
		head[idx] = e.to
		lengthMM[idx] = e.lengthMM
		class[idx] = e.class
		speed[idx] = e.speed
		name[idx] = e.name
		geoFirstOut[idx] = uint32(len(geoShapeLat))
		geoShapeLat = append(geoShapeLat, e.shapeLat...)
		geoShapeLon = append(geoShapeLon, e.shapeLon...)
		cursor[e.from]++
	}
	geoFirstOut[numEdges] = uint32(len(geoShapeLat))

	nodeLat := make([]float64, numNodes)
	nodeLon := make([]float64, numNodes)
	for newIdx, oldIdx := range nodes {
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
