// Package routing implements the weighted A* search over the immutable
// compressed graph, with a per-query obstruction overlay and direction-aware
// path/geometry reconstruction. No graph mutation ever occurs here: the
// overlay is scratch state discarded at the end of each Search call.
package routing

// heapItem is one A* frontier entry: f-score, a monotonic tiebreaker, and
// the node it refers to. The explicit seq field is what makes identical
// queries deterministic when two entries tie on f — without it, ties would
// resolve on insertion order of the underlying slice, which heap rebalancing
// does not preserve.
type heapItem struct {
	f    float64
	seq  uint64
	node uint32
}

// minHeap is a concrete-typed binary min-heap ordered by (f, seq), avoiding
// the interface-boxing overhead of container/heap for a type this hot.
type minHeap struct {
	items []heapItem
}

func (h *minHeap) Len() int { return len(h.items) }

func (h *minHeap) Push(f float64, seq uint64, node uint32) {
	h.items = append(h.items, heapItem{f: f, seq: seq, node: node})
	h.siftUp(len(h.items) - 1)
}

func (h *minHeap) Pop() heapItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *minHeap) Reset() {
	h.items = h.items[:0]
}

func less(a, b heapItem) bool {
	if a.f != b.f {
		return a.f < b.f
	}
	return a.seq < b.seq
}

func (h *minHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !less(h.items[i], h.items[parent]) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *minHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && less(h.items[left], h.items[smallest]) {
			smallest = left
		}
		if right < n && less(h.items[right], h.items[smallest]) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// noNode is the predecessor-array sentinel for "no predecessor".
const noNode = ^uint32(0)
