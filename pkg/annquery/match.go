package annquery

import (
	"context"
	"sync"

	"github.com/orneryd/siftforest/pkg/descriptor"
	"github.com/orneryd/siftforest/pkg/kdforest"
)

// parallelScoreThreshold is the candidate-range count at or above which scoring
// splits across goroutines. Below it, goroutine setup would cost more than
// the exact-distance loop itself.
const parallelScoreThreshold = 8

// Query2NN runs the candidate enumerator over f and exactly scores every
// candidate against q with L1, returning the two nearest indices. i1 is
// NoIndex if fewer than two distinct distances were found.
func Query2NN(ctx context.Context, f *kdforest.Forest, q descriptor.Descriptor, maxDescriptors int) (i0, i1 int32, err error) {
	ranges, err := EnumerateCandidates(ctx, f, q, maxDescriptors)
	if err != nil {
		return NoIndex, NoIndex, err
	}
	best := scoreCandidates(ctx, f, q, ranges, false)
	if err := ctx.Err(); err != nil {
		return NoIndex, NoIndex, err
	}
	return best.Idx0(), best.Idx1(), nil
}

// scoreCandidates exactly scores every descriptor referenced by ranges
// against q, using L1 or squared-L2 depending on squared, and returns the
// merged Best2. Large candidate sets are scored in parallel chunks and
// folded back together with Combine, left to right, to demonstrate (and
// exercise) Combine's associativity: candidate scoring within a single
// query can be parallelised by splitting the candidate index list and
// combining accumulators.
func scoreCandidates(ctx context.Context, f *kdforest.Forest, q descriptor.Descriptor, ranges []LeafRange, squared bool) Best2 {
	if ctx.Err() != nil {
		return NewBest2()
	}
	if len(ranges) < parallelScoreThreshold {
		return scoreRangeChunk(f, q, ranges, squared)
	}

	chunks := splitRanges(ranges, parallelScoreThreshold)
	partial := make([]Best2, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []LeafRange) {
			defer wg.Done()
			partial[i] = scoreRangeChunk(f, q, chunk, squared)
		}(i, chunk)
	}
	wg.Wait()

	out := partial[0]
	for _, p := range partial[1:] {
		out = Combine(out, p)
	}
	return out
}

func scoreRangeChunk(f *kdforest.Forest, q descriptor.Descriptor, ranges []LeafRange, squared bool) Best2 {
	best := NewBest2()
	for _, lr := range ranges {
		tr := f.Trees[lr.Tree]
		list := tr.List()
		for i := lr.Begin; i < lr.End; i++ {
			idx := list[i]
			var d uint32
			if squared {
				d = descriptor.L2Sq(q, f.Descriptors[idx])
			} else {
				d = uint32(descriptor.L1(q, f.Descriptors[idx]))
			}
			best.Update(d, int32(idx))
		}
	}
	return best
}

func splitRanges(ranges []LeafRange, n int) [][]LeafRange {
	if n > len(ranges) {
		n = len(ranges)
	}
	if n < 1 {
		n = 1
	}
	out := make([][]LeafRange, 0, n)
	chunkSize := (len(ranges) + n - 1) / n
	for i := 0; i < len(ranges); i += chunkSize {
		end := i + chunkSize
		if end > len(ranges) {
			end = len(ranges)
		}
		out = append(out, ranges[i:end])
	}
	return out
}

// MatchAll matches every descriptor in a against the forest built over b's
// descriptors, returning, for each a[i], the accepted match index into b
// or NoIndex. When the scored candidates yield only one distinct distance
// (Idx1() == NoIndex), the slot-0 candidate is accepted automatically
// rather than rejected for want of a second distance to ratio against.
func MatchAll(ctx context.Context, f *kdforest.Forest, a []descriptor.Descriptor, maxDescriptors int, squared bool) ([]int32, error) {
	if len(a) == 0 || len(f.Descriptors) == 0 {
		return nil, nil
	}
	matches := make([]int32, len(a))
	for i, qa := range a {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ranges, err := EnumerateCandidates(ctx, f, qa, maxDescriptors)
		if err != nil {
			return nil, err
		}
		best := scoreCandidates(ctx, f, qa, ranges, squared)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		matches[i] = matchOne(best, squared)
	}
	return matches, nil
}

// matchOne applies the ratio test to a fully-scored Best2, with the
// single-candidate degenerate case accepted outright.
func matchOne(best Best2, squared bool) int32 {
	if best.Idx0() == NoIndex {
		return NoIndex
	}
	if best.Idx1() == NoIndex {
		return best.Idx0()
	}
	if RatioAccept(best.Dist0(), best.Dist1(), squared) {
		return best.Idx0()
	}
	return NoIndex
}
