// Package spatial provides the two read-only spatial indices built once
// over the immutable final graph: a KD-Tree for nearest-node snapping and
// an STRtree of edge polylines for obstruction resolution.
package spatial

import (
	"math"

	"github.com/kyroy/kdtree"

	"weatherroute/pkg/graph"
	"weatherroute/pkg/routeerr"
)

// nodePoint wraps a graph node's (lat, lon) so it satisfies kdtree.Point.
type nodePoint struct {
	id       uint32
	lat, lon float64
}

func (p *nodePoint) Dimensions() int { return 2 }

func (p *nodePoint) Dimension(i int) float64 {
	if i == 0 {
		return p.lat
	}
	return p.lon
}

// NodeIndex is the immutable KD-Tree of every retained graph node,
// thread-safe for concurrent reads since the library never mutates once
// built and callers never insert after NewNodeIndex returns.
type NodeIndex struct {
	tree  *kdtree.KDTree
	nodes []*nodePoint
}

// NewNodeIndex builds a KD-Tree over every node of g.
func NewNodeIndex(g *graph.Graph) *NodeIndex {
	points := make([]kdtree.Point, g.NumNodes)
	nodes := make([]*nodePoint, g.NumNodes)
	for i := uint32(0); i < g.NumNodes; i++ {
		p := &nodePoint{id: i, lat: g.NodeLat[i], lon: g.NodeLon[i]}
		nodes[i] = p
		points[i] = p
	}
	return &NodeIndex{tree: kdtree.New(points), nodes: nodes}
}

// Nearest returns the graph node ID minimizing Euclidean distance in
// (lat, lon) to the query point, tie-breaking by lower ID. Returns
// ErrSnapFailure only when the index holds no nodes.
func (idx *NodeIndex) Nearest(lat, lon float64) (uint32, error) {
	if len(idx.nodes) == 0 {
		return 0, routeerr.ErrSnapFailure
	}

	query := &nodePoint{lat: lat, lon: lon}
	const fanOut = 8
	candidates := idx.tree.KNN(query, fanOut)
	if len(candidates) == 0 {
		return 0, routeerr.ErrSnapFailure
	}

	bestID := uint32(math.MaxUint32)
	bestDist := math.Inf(1)
	for _, c := range candidates {
		np, ok := c.(*nodePoint)
		if !ok {
			continue
		}
		d := squaredDist(lat, lon, np.lat, np.lon)
		if d < bestDist || (d == bestDist && np.id < bestID) {
			bestDist = d
			bestID = np.id
		}
	}
	if bestID == math.MaxUint32 {
		return 0, routeerr.ErrSnapFailure
	}
	return bestID, nil
}

// Coords returns the (lat, lon) of a previously indexed node ID.
func (idx *NodeIndex) Coords(id uint32) (lat, lon float64) {
	n := idx.nodes[id]
	return n.lat, n.lon
}

func squaredDist(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := lat1 - lat2
	dLon := lon1 - lon2
	return dLat*dLat + dLon*dLon
}
