package routing

import "math"

// queryState holds all per-query scratch A* needs: tentative costs,
// predecessor node/edge arrays, the closed set, and the frontier heap.
// Kept in a sync.Pool by Searcher and reset via a touched-list fast reset,
// so a long-running server never reallocates O(V) scratch per query.
type queryState struct {
	gScore   []float64
	pred     []uint32 // noNode = start of path (seed node)
	predEdge []uint32 // noNode = this hop came from a virtual anchor, not a graph edge
	closed   []bool
	touched  []uint32
	pq       minHeap
}

func newQueryState(n uint32) *queryState {
	gScore := make([]float64, n)
	pred := make([]uint32, n)
	predEdge := make([]uint32, n)
	closed := make([]bool, n)
	for i := range gScore {
		gScore[i] = math.Inf(1)
		pred[i] = noNode
		predEdge[i] = noNode
	}
	return &queryState{
		gScore:   gScore,
		pred:     pred,
		predEdge: predEdge,
		closed:   closed,
		touched:  make([]uint32, 0, 1024),
		pq:       minHeap{items: make([]heapItem, 0, 256)},
	}
}

// reset clears only the touched entries, not the full O(V) arrays, then
// empties the heap for reuse by the next query.
func (qs *queryState) reset() {
	for _, node := range qs.touched {
		qs.gScore[node] = math.Inf(1)
		qs.pred[node] = noNode
		qs.predEdge[node] = noNode
		qs.closed[node] = false
	}
	qs.touched = qs.touched[:0]
	qs.pq.Reset()
}

// relax updates node v's tentative cost if g improves on what is already
// known, recording v in the touched list the first time it is seen so reset
// can find it again. Returns whether the update happened.
func (qs *queryState) relax(v uint32, g float64, pred, predEdge uint32) bool {
	if g >= qs.gScore[v] {
		return false
	}
	if math.IsInf(qs.gScore[v], 1) {
		qs.touched = append(qs.touched, v)
	}
	qs.gScore[v] = g
	qs.pred[v] = pred
	qs.predEdge[v] = predEdge
	return true
}
