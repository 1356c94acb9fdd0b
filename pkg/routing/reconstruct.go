package routing

// reconstruct walks qs.pred back from reached (the node where the search
// met one of destination's seeds) to the true path start — the node whose
// pred is noNode, which is exactly the node the seeding loop relaxed
// directly, whether that is origin.Node or whichever one of origin.Anchor's
// neighbors A* found cheapest. Geometry stitching keeps an explicit node
// cursor and orients each predecessor edge's polyline against it.
func (s *Searcher) reconstruct(qs *queryState, origin, destination Endpoint, reached uint32, destHop float64) (path []uint32, lats, lons []float64, distM, durS float64) {
	g := s.g

	var revPath []uint32
	node := reached
	for {
		revPath = append(revPath, node)
		if qs.pred[node] == noNode {
			break
		}
		node = qs.pred[node]
	}
	path = make([]uint32, len(revPath))
	for i, n := range revPath {
		path[len(revPath)-1-i] = n
	}

	startNode := path[0]
	originHop := qs.gScore[startNode]

	if origin.Anchor != nil {
		lats = append(lats, origin.Anchor.Lat)
		lons = append(lons, origin.Anchor.Lon)
		distM += originHop
		durS += anchorHopSeconds(originHop)
	}

	cursor := startNode
	lats = append(lats, g.NodeLat[cursor])
	lons = append(lons, g.NodeLon[cursor])

	for i := 1; i < len(path); i++ {
		next := path[i]
		e := qs.predEdge[next]
		from := g.EdgeSource(e)

		segLats, segLons := g.GeometryFrom(from, e)
		if from != cursor {
			reverseInPlace(segLats)
			reverseInPlace(segLons)
		}
		// segLats[0] duplicates the last point already appended.
		lats = append(lats, segLats[1:]...)
		lons = append(lons, segLons[1:]...)

		distM += float64(g.LengthMM[e]) / 1000.0
		durS += g.TravelTimeSeconds(e)
		cursor = next
	}

	if destination.Anchor != nil {
		lats = append(lats, destination.Anchor.Lat)
		lons = append(lons, destination.Anchor.Lon)
	}
	distM += destHop
	durS += anchorHopSeconds(destHop)

	return path, lats, lons, distM, durS
}

func reverseInPlace(xs []float64) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}
