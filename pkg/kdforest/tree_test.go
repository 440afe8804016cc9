package kdforest

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/siftforest/pkg/descriptor"
)

func randomDescriptors(n int, seed int64) []descriptor.Descriptor {
	rng := rand.New(rand.NewSource(seed))
	out := make([]descriptor.Descriptor, n)
	for i := range out {
		for d := 0; d < descriptor.Dims; d++ {
			out[i][d] = byte(rng.Intn(256))
		}
	}
	return out
}

// walk visits every node of the tree and returns the set of leaf-covered
// descriptor indices and the count of leaves visited. It fails the test if
// a descriptor is covered twice or a structural invariant (left child ==
// n+1, right child index > n) does not hold.
func walk(t *testing.T, tr *Tree) (covered map[uint32]bool, leaves int) {
	t.Helper()
	covered = map[uint32]bool{}

	var visit func(n uint32)
	visit = func(n uint32) {
		if tr.IsLeaf(n) {
			leaves++
			begin, end := tr.LeafRange(n)
			for i := begin; i < end; i++ {
				idx := tr.List()[i]
				require.False(t, covered[idx], "descriptor %d covered by more than one leaf", idx)
				covered[idx] = true
			}
			return
		}
		left, right := tr.Left(n), tr.Right(n)
		require.Equal(t, n+1, left)
		require.Greater(t, right, n)
		visit(left)
		visit(right)
	}
	visit(0)
	return covered, leaves
}

func TestBuildTreeCoversEveryDescriptor(t *testing.T) {
	descs := randomDescriptors(500, 1)
	sdim := ComputeSplitDimensions(descs)
	rng := rand.New(rand.NewSource(42))

	tr, err := buildTree(descs, sdim, 8, rng)
	require.NoError(t, err)

	covered, leaves := walk(t, tr)
	assert.Equal(t, len(descs), len(covered))
	assert.Greater(t, leaves, 0)
}

func TestBuildTreeLeafSizeRespected(t *testing.T) {
	descs := randomDescriptors(2000, 2)
	sdim := ComputeSplitDimensions(descs)
	rng := rand.New(rand.NewSource(7))

	leafSizeInput := uint32(16)
	tr, err := buildTree(descs, sdim, leafSizeInput, rng)
	require.NoError(t, err)

	var checkLeaf func(n uint32)
	checkLeaf = func(n uint32) {
		if tr.IsLeaf(n) {
			begin, end := tr.LeafRange(n)
			assert.LessOrEqual(t, end-begin, leafSizeInput+16)
			return
		}
		checkLeaf(tr.Left(n))
		checkLeaf(tr.Right(n))
	}
	checkLeaf(0)
}

func TestBuildTreeBoundingBoxesContainMembers(t *testing.T) {
	descs := randomDescriptors(300, 3)
	sdim := ComputeSplitDimensions(descs)
	rng := rand.New(rand.NewSource(99))

	tr, err := buildTree(descs, sdim, 8, rng)
	require.NoError(t, err)

	var check func(n uint32)
	check = func(n uint32) {
		bb := tr.BBox(n)
		if tr.IsLeaf(n) {
			begin, end := tr.LeafRange(n)
			for i := begin; i < end; i++ {
				d := descs[tr.List()[i]]
				for dim := 0; dim < descriptor.Dims; dim++ {
					assert.LessOrEqual(t, bb.Min[dim], d[dim])
					assert.GreaterOrEqual(t, bb.Max[dim], d[dim])
				}
			}
			return
		}
		check(tr.Left(n))
		check(tr.Right(n))
	}
	check(0)
}

func TestBuildTreeAllIdenticalDescriptorsFailsPartition(t *testing.T) {
	descs := make([]descriptor.Descriptor, 64)
	for i := range descs {
		for d := 0; d < descriptor.Dims; d++ {
			descs[i][d] = 7
		}
	}
	sdim := ComputeSplitDimensions(descs)
	rng := rand.New(rand.NewSource(1))

	_, err := buildTree(descs, sdim, 4, rng)
	require.ErrorIs(t, err, ErrPartitionFailure)
}

func TestBuildTreeSmallerThanLeafIsSingleLeaf(t *testing.T) {
	descs := randomDescriptors(5, 4)
	sdim := ComputeSplitDimensions(descs)
	rng := rand.New(rand.NewSource(5))

	tr, err := buildTree(descs, sdim, 16, rng)
	require.NoError(t, err)
	require.Equal(t, 1, tr.NodeCount())
	require.True(t, tr.IsLeaf(0))
	begin, end := tr.LeafRange(0)
	assert.Equal(t, uint32(0), begin)
	assert.Equal(t, uint32(5), end)
}

func TestPartitionRangeSplitsByPredicate(t *testing.T) {
	list := []uint32{0, 1, 2, 3, 4, 5}
	pivot := partitionRange(list, 0, uint32(len(list)), func(i uint32) bool {
		return list[i]%2 == 0
	})
	for i := uint32(0); i < pivot; i++ {
		assert.Equal(t, uint32(0), list[i]%2)
	}
	for i := pivot; i < uint32(len(list)); i++ {
		assert.Equal(t, uint32(1), list[i]%2)
	}
}
