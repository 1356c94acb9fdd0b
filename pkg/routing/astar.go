package routing

import (
	"context"
	"sync"
	"time"

	"weatherroute/pkg/geo"
	"weatherroute/pkg/graph"
	"weatherroute/pkg/routeerr"
)

// assumedAnchorSpeedKmh estimates travel time across a virtual-anchor hop,
// which has no originating highway class to look a design speed up from.
const assumedAnchorSpeedKmh = 30.0

// checkInterval is how often (in pops) the search checks ctx for
// cancellation; a counter mask keeps the check off the hot path.
const checkInterval = 256

// Endpoint is either a real graph node or a VirtualAnchor (a projected
// point reached via its neighbor list). Exactly one
// of the two is meaningful; construct with NodeEndpoint or AnchorEndpoint.
type Endpoint struct {
	Node   uint32
	Anchor *VirtualAnchor
}

// NodeEndpoint wraps a graph node ID as a search endpoint.
func NodeEndpoint(node uint32) Endpoint { return Endpoint{Node: node} }

// AnchorEndpoint wraps a VirtualAnchor as a search endpoint.
func AnchorEndpoint(a *VirtualAnchor) Endpoint { return Endpoint{Anchor: a} }

// Stats reports search diagnostics alongside a PathResult.
type Stats struct {
	NodesVisited int
	ElapsedMs    float64
	PathLength   int
}

// PathResult is the outcome of a successful Search: the node sequence, the
// distance and duration it represents, and the merged, direction-corrected
// polyline.
type PathResult struct {
	Path      []uint32
	DistanceM float64
	DurationS float64
	Lats      []float64
	Lons      []float64
	Stats     Stats
}

// Searcher runs A* against one immutable Graph, reusing per-query scratch
// state across calls via a sync.Pool. The graph itself is never touched,
// so any number of Searches can run concurrently against the same Graph.
type Searcher struct {
	g      *graph.Graph
	qsPool sync.Pool
}

// NewSearcher builds a Searcher over g.
func NewSearcher(g *graph.Graph) *Searcher {
	s := &Searcher{g: g}
	s.qsPool.New = func() any { return newQueryState(g.NumNodes) }
	return s
}

// seed is a (node, distance-from-endpoint) pair shared by both ordinary node
// endpoints (one seed, distance zero) and virtual anchors (one seed per
// neighbor), so the expansion loop never needs to branch on endpoint kind.
type seed struct {
	node uint32
	dist float64
}

func seedsFor(e Endpoint) ([]seed, error) {
	if e.Anchor != nil {
		if len(e.Anchor.Neighbors) == 0 {
			return nil, routeerr.ErrUnknownEndpoint
		}
		seeds := make([]seed, len(e.Anchor.Neighbors))
		for i, nb := range e.Anchor.Neighbors {
			seeds[i] = seed{node: nb.Node, dist: nb.DistanceM}
		}
		return seeds, nil
	}
	return []seed{{node: e.Node, dist: 0}}, nil
}

func endpointCoords(g *graph.Graph, e Endpoint) (lat, lon float64) {
	if e.Anchor != nil {
		return e.Anchor.Lat, e.Anchor.Lon
	}
	return g.NodeLat[e.Node], g.NodeLon[e.Node]
}

func anchorHopSeconds(distM float64) float64 {
	return distM / (assumedAnchorSpeedKmh * 1000.0 / 3600.0)
}

// Search runs single-source admissible A* against g with the obstruction
// overlay, able to start and/or end from a VirtualAnchor instead of a real
// node (the facade's house-number-interpolation path uses both). It fails
// with ErrUnknownEndpoint for
// an out-of-range node or an anchor with no neighbors, ErrNoPath when the
// frontier empties, and ErrTimeout when ctx expires first.
func (s *Searcher) Search(ctx context.Context, origin, destination Endpoint, weather graph.Weather, overlay Overlay) (*PathResult, error) {
	g := s.g
	if origin.Anchor == nil && origin.Node >= g.NumNodes {
		return nil, routeerr.ErrUnknownEndpoint
	}
	if destination.Anchor == nil && destination.Node >= g.NumNodes {
		return nil, routeerr.ErrUnknownEndpoint
	}

	originSeeds, err := seedsFor(origin)
	if err != nil {
		return nil, err
	}
	destSeeds, err := seedsFor(destination)
	if err != nil {
		return nil, err
	}

	targetHop := make(map[uint32]float64, len(destSeeds))
	for _, sd := range destSeeds {
		if d, ok := targetHop[sd.node]; !ok || sd.dist < d {
			targetHop[sd.node] = sd.dist
		}
	}

	qs := s.qsPool.Get().(*queryState)
	defer func() {
		qs.reset()
		s.qsPool.Put(qs)
	}()

	startTime := time.Now()
	targetLat, targetLon := endpointCoords(g, destination)
	hFactor := graph.HeuristicFactor()
	h := func(v uint32) float64 {
		return geo.Haversine(g.NodeLat[v], g.NodeLon[v], targetLat, targetLon) * hFactor
	}

	var seq uint64
	for _, sd := range originSeeds {
		if sd.node >= g.NumNodes {
			continue
		}
		if qs.relax(sd.node, sd.dist, noNode, noNode) {
			seq++
			qs.pq.Push(sd.dist+h(sd.node), seq, sd.node)
		}
	}

	nodesVisited := 0
	iterations := 0

	for qs.pq.Len() > 0 {
		item := qs.pq.Pop()
		cur := item.node
		if qs.closed[cur] {
			continue
		}
		qs.closed[cur] = true
		nodesVisited++

		if hop, ok := targetHop[cur]; ok {
			path, lats, lons, distM, durS := s.reconstruct(qs, origin, destination, cur, hop)
			elapsed := time.Since(startTime)
			return &PathResult{
				Path: path, DistanceM: distM, DurationS: durS, Lats: lats, Lons: lons,
				Stats: Stats{NodesVisited: nodesVisited, ElapsedMs: float64(elapsed) / 1e6, PathLength: len(path)},
			}, nil
		}

		iterations++
		if iterations%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return &PathResult{Stats: Stats{NodesVisited: nodesVisited, ElapsedMs: float64(time.Since(startTime)) / 1e6}}, routeerr.ErrTimeout
			default:
			}
		}

		start, end := g.EdgesFrom(cur)
		for e := start; e < end; e++ {
			v := g.Head[e]
			if qs.closed[v] {
				continue
			}
			if overlay.isBlocked(cur, v) {
				continue
			}
			w := g.Weight(e, weather)
			if p, ok := overlay.penaltyFor(cur, v); ok {
				w *= p
			}
			tentative := qs.gScore[cur] + w
			if qs.relax(v, tentative, cur, e) {
				seq++
				qs.pq.Push(tentative+h(v), seq, v)
			}
		}
	}

	return &PathResult{Stats: Stats{NodesVisited: nodesVisited, ElapsedMs: float64(time.Since(startTime)) / 1e6}}, routeerr.ErrNoPath
}
