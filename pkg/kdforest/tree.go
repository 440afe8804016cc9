package kdforest

import (
	"math/rand"

	"github.com/orneryd/siftforest/pkg/descriptor"
)

// node is a fixed-size record with two interpretations selected by leaf:
// internal (dim, val, right child index; left child is always the next
// node in the array) or leaf ([begin,end) range into Tree.list).
type node struct {
	leaf  bool
	dim   uint8
	val   uint8
	right uint32
	begin uint32
	end   uint32
}

// Tree owns three parallel arrays: nodes (index 0 is the root), bbox (the
// bounding box of each node, kept separate so traversal touches only box
// cache lines), and list (a permutation of descriptor indices whose leaf
// ranges partition [0,N) in left-first DFS order).
type Tree struct {
	nodes []node
	bbox  []descriptor.BoundingBox
	list  []uint32
}

// NodeCount returns the number of nodes in the tree.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// IsLeaf reports whether node n is a leaf.
func (t *Tree) IsLeaf(n uint32) bool { return t.nodes[n].leaf }

// Left returns n's left child index. Only valid when n is not a leaf.
func (t *Tree) Left(n uint32) uint32 { return n + 1 }

// Right returns n's right child index. Only valid when n is not a leaf.
func (t *Tree) Right(n uint32) uint32 { return t.nodes[n].right }

// Dim and Val return the splitting dimension and value of internal node n.
func (t *Tree) Dim(n uint32) uint8 { return t.nodes[n].dim }
func (t *Tree) Val(n uint32) uint8 { return t.nodes[n].val }

// LeafRange returns the [begin,end) half-open range into List() owned by
// leaf node n. Only valid when n is a leaf.
func (t *Tree) LeafRange(n uint32) (begin, end uint32) {
	return t.nodes[n].begin, t.nodes[n].end
}

// BBox returns the bounding box stored at node n.
func (t *Tree) BBox(n uint32) descriptor.BoundingBox { return t.bbox[n] }

// List returns the permutation array of descriptor indices; leaf ranges
// are contiguous subranges of it.
func (t *Tree) List() []uint32 { return t.list }

// buildFrame is one entry of the explicit work stack that replaces direct
// recursion, keyed by node index. The stack holds one frame per node on the
// path from the root to the node being built, so its depth equals the depth
// of the tree; splits are not balanced, so that depth is not bounded by
// log2(N).
type buildFrame struct {
	nodeIdx uint32
	l, r    uint32
	state   uint8 // 0: not started, 1: left child done, 2: right child done
	mid     uint32
	lc, rc  uint32
}

// buildTree constructs one tree over descs using the shared split
// dimensions and effective leaf size (leafSizeInput + 16, to prevent
// pathologically tiny leaves). rng must not be shared with any
// concurrently-building tree.
func buildTree(descs []descriptor.Descriptor, sdim SplitDimensions, leafSizeInput uint32, rng *rand.Rand) (*Tree, error) {
	n := uint32(len(descs))
	leafEffective := leafSizeInput + 16

	list := make([]uint32, n)
	for i := range list {
		list[i] = uint32(i)
	}

	t := &Tree{
		nodes: make([]node, 1, 2*int(n)/int(leafEffective)+2),
		bbox:  make([]descriptor.BoundingBox, 1, 2*int(n)/int(leafEffective)+2),
		list:  list,
	}

	stack := make([]buildFrame, 0, 64)
	stack = append(stack, buildFrame{nodeIdx: 0, l: 0, r: n})

	for len(stack) > 0 {
		i := len(stack) - 1
		f := stack[i]

		switch f.state {
		case 0:
			if f.r-f.l <= leafEffective {
				t.nodes[f.nodeIdx] = node{leaf: true, begin: f.l, end: f.r}
				t.bbox[f.nodeIdx] = descriptor.BoxOf(descs, list[f.l:f.r])
				stack = stack[:i]
				continue
			}

			dim, val, mid, ok := partition(descs, list, f.l, f.r, sdim, rng)
			if !ok {
				return nil, ErrPartitionFailure
			}
			t.nodes[f.nodeIdx] = node{leaf: false, dim: dim, val: val}

			lc := uint32(len(t.nodes))
			t.nodes = append(t.nodes, node{})
			t.bbox = append(t.bbox, descriptor.BoundingBox{})

			stack[i].state = 1
			stack[i].mid = mid
			stack[i].lc = lc
			stack = append(stack, buildFrame{nodeIdx: lc, l: f.l, r: mid})

		case 1:
			rc := uint32(len(t.nodes))
			t.nodes = append(t.nodes, node{})
			t.bbox = append(t.bbox, descriptor.BoundingBox{})
			t.nodes[f.nodeIdx].right = rc

			stack[i].state = 2
			stack[i].rc = rc
			stack = append(stack, buildFrame{nodeIdx: rc, l: f.mid, r: f.r})

		case 2:
			t.bbox[f.nodeIdx] = descriptor.Union(t.bbox[f.lc], t.bbox[f.rc])
			stack = stack[:i]
		}
	}

	if err := t.validate(n); err != nil {
		return nil, err
	}
	return t, nil
}

// validate runs the cheap, always-on invariant checks: node/bbox arrays
// agree in length, every bounding box satisfies
// Min<=Max component-wise, every internal node's right child comes after
// it, every leaf index is below N, and the leaf ranges' index values sum
// to N(N-1)/2 (a checksum for every index 0..N-1 being referenced by
// exactly one leaf; the sum alone does not rule out every mix-up).
func (t *Tree) validate(n uint32) error {
	if len(t.nodes) != len(t.bbox) {
		return ErrInvariantViolation
	}
	var sum uint64
	for idx := range t.nodes {
		nd := &t.nodes[idx]
		bb := t.bbox[idx]
		for d := 0; d < descriptor.Dims; d++ {
			if bb.Min[d] > bb.Max[d] {
				return ErrInvariantViolation
			}
		}
		if nd.leaf {
			for i := nd.begin; i < nd.end; i++ {
				if t.list[i] >= n {
					return ErrInvariantViolation
				}
				sum += uint64(t.list[i])
			}
		} else if int(nd.right) <= idx {
			return ErrInvariantViolation
		}
	}
	want := uint64(n-1) * uint64(n) / 2
	if n == 0 {
		want = 0
	}
	if sum != want {
		return ErrInvariantViolation
	}
	return nil
}

// partition tries up to 16 times to find a usable split. The first
// splitting dimension is drawn uniformly from sdim; every subsequent
// attempt (after a degenerate-spread or one-sided-partition retry) draws
// uniformly from all 128 dimensions instead — resolved this way from
// design decision recorded in DESIGN.md.
func partition(descs []descriptor.Descriptor, list []uint32, l, r uint32, sdim SplitDimensions, rng *rand.Rand) (dim, val uint8, mid uint32, ok bool) {
	splitDim := sdim[rng.Intn(SplitCount)]

	for attempt := 0; attempt < 16; attempt++ {
		minV, maxV := byte(255), byte(0)
		for i := l; i < r; i++ {
			v := descs[list[i]][splitDim]
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}

		if int(maxV)-int(minV) <= 1 {
			splitDim = uint8(rng.Intn(descriptor.Dims))
			continue
		}

		splitVal := minV + byte(rng.Intn(int(maxV)-int(minV)+1))
		pivot := partitionRange(list, l, r, func(idx uint32) bool {
			return descs[list[idx]][splitDim] < splitVal
		})
		if pivot == l || pivot == r {
			splitDim = uint8(rng.Intn(descriptor.Dims))
			continue
		}

		return splitDim, splitVal, pivot, true
	}
	return 0, 0, 0, false
}

// partitionRange reorders list[l:r] in place so that every index i in
// [l,r) for which pred(i) holds (evaluated against list[i] as the loop
// proceeds) ends up before the rest, and returns the split point.
func partitionRange(list []uint32, l, r uint32, pred func(uint32) bool) uint32 {
	i := l
	for j := l; j < r; j++ {
		if pred(j) {
			list[i], list[j] = list[j], list[i]
			i++
		}
	}
	return i
}
