package routing

import "weatherroute/pkg/spatial"

// Overlay is the per-query obstruction adjustment: a set of hard-blocked
// directed edges and a map of penalty multipliers, produced by
// spatial.ObstructionIndex.Resolve and never persisted past one Search call.
// Passing it alongside the immutable graph instead of copying the graph
// with edges removed is what lets many queries run concurrently against one
// graph with no locking.
type Overlay struct {
	Blocked map[spatial.EdgeKey]bool
	Penalty map[spatial.EdgeKey]float64
}

// NoOverlay is the zero-value overlay: nothing blocked, nothing penalized.
var NoOverlay = Overlay{}

func (o Overlay) isBlocked(from, to uint32) bool {
	if o.Blocked == nil {
		return false
	}
	return o.Blocked[spatial.EdgeKey{From: from, To: to}]
}

func (o Overlay) penaltyFor(from, to uint32) (float64, bool) {
	if o.Penalty == nil {
		return 0, false
	}
	p, ok := o.Penalty[spatial.EdgeKey{From: from, To: to}]
	return p, ok
}

// AnchorNeighbor is one graph node reachable from a VirtualAnchor, with the
// straight-line hop distance in meters to get there.
type AnchorNeighbor struct {
	Node      uint32
	DistanceM float64
}

// VirtualAnchor is a point that is not itself a graph node: an orthogonal
// projection onto the nearest edge within the address resolver's 50 m
// limit, threaded into Search as an optional non-graph seed or goal. The anchor expands directly into its neighbor list; that
// hop is weighted by plain projected distance since it has no originating
// highway class to apply c_highway/c_context to.
type VirtualAnchor struct {
	Lat, Lon  float64
	Neighbors []AnchorNeighbor
}
