package annquery

// heapEntry is a unit of best-bin-first search frontier: a bounding-box
// distance lower bound plus the (tree, node) it was computed for. Kept to
// 8 bytes so the heap's working set stays cache-dense even with a
// multi-thousand-entry frontier.
type heapEntry struct {
	dist uint16
	tree uint16
	node uint32
}

// bboxHeap is a hand-rolled binary min-heap over heapEntry, ordered by
// dist and tied-broken by ascending (tree, node) so that search order is
// fully deterministic given a seed. Modeled directly on distHeap's
// array-backed Push/Pop/siftUp/siftDown shape, specialised to a min-heap
// of fixed-size entries instead of a min/max switchable float heap.
type bboxHeap struct {
	items []heapEntry
}

func newBBoxHeap(capHint int) *bboxHeap {
	if capHint < 0 {
		capHint = 0
	}
	return &bboxHeap{items: make([]heapEntry, 0, capHint)}
}

func (h *bboxHeap) Len() int { return len(h.items) }

func (h *bboxHeap) Peek() heapEntry { return h.items[0] }

func (h *bboxHeap) Push(e heapEntry) {
	h.items = append(h.items, e)
	h.siftUp(len(h.items) - 1)
}

func (h *bboxHeap) Pop() heapEntry {
	n := len(h.items)
	out := h.items[0]
	last := h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.items[0] = last
		h.siftDown(0)
	}
	return out
}

func (h *bboxHeap) less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	if a.tree != b.tree {
		return a.tree < b.tree
	}
	return a.node < b.node
}

func (h *bboxHeap) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !h.less(i, p) {
			return
		}
		h.items[i], h.items[p] = h.items[p], h.items[i]
		i = p
	}
}

func (h *bboxHeap) siftDown(i int) {
	n := len(h.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		r := l + 1
		if r < n && h.less(r, l) {
			best = r
		}
		if !h.less(best, i) {
			return
		}
		h.items[i], h.items[best] = h.items[best], h.items[i]
		i = best
	}
}
