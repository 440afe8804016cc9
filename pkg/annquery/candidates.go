package annquery

import (
	"context"

	"github.com/orneryd/siftforest/pkg/descriptor"
	"github.com/orneryd/siftforest/pkg/kdforest"
)

// LeafRange is a contiguous [Begin,End) slice of tree Tree's List() array,
// emitted by the candidate enumerator for the caller to score.
type LeafRange struct {
	Tree  uint16
	Begin uint32
	End   uint32
}

// EnumerateCandidates walks a single best-bin-first frontier across every
// tree of f and returns the leaf ranges visited before the descriptor
// budget is exhausted. A single min-heap shared by all trees gives the
// globally best interleaving of which bin to expand next, rather than
// round-robin per-tree budgets.
//
// The returned count of descriptors MAY exceed maxDescriptors by at most
// the size of the last leaf popped.
func EnumerateCandidates(ctx context.Context, f *kdforest.Forest, q descriptor.Descriptor, maxDescriptors int) ([]LeafRange, error) {
	heap := newBBoxHeap(4 * f.TreeCount())
	for i, tr := range f.Trees {
		d := descriptor.L1ToBox(q, tr.BBox(0))
		heap.Push(heapEntry{dist: d, tree: uint16(i), node: 0})
	}

	var out []LeafRange
	found := 0
	for found < maxDescriptors && heap.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e := heap.Pop()
		tr := f.Trees[e.tree]

		if tr.IsLeaf(e.node) {
			begin, end := tr.LeafRange(e.node)
			out = append(out, LeafRange{Tree: e.tree, Begin: begin, End: end})
			found += int(end - begin)
			continue
		}

		left, right := tr.Left(e.node), tr.Right(e.node)
		heap.Push(heapEntry{dist: descriptor.L1ToBox(q, tr.BBox(left)), tree: e.tree, node: left})
		heap.Push(heapEntry{dist: descriptor.L1ToBox(q, tr.BBox(right)), tree: e.tree, node: right})
	}

	return out, nil
}
