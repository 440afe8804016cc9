package annquery

// NoIndex marks an unfilled Best2 slot.
const NoIndex = int32(-1)

// infDist represents the +∞ distance an unfilled Best2 slot starts at. Any
// real L1 (max 32640) or squared-L2 (max 255*255*128) distance is smaller.
const infDist = ^uint32(0)

// Best2 accumulates the two smallest distinct distances seen so far,
// together with the candidate index each belongs to.
type Best2 struct {
	dist [2]uint32
	idx  [2]int32
}

// NewBest2 returns an accumulator with both slots empty.
func NewBest2() Best2 {
	return Best2{dist: [2]uint32{infDist, infDist}, idx: [2]int32{NoIndex, NoIndex}}
}

// Dist0, Dist1, Idx0, Idx1 expose the accumulator's slots.
func (b Best2) Dist0() uint32 { return b.dist[0] }
func (b Best2) Dist1() uint32 { return b.dist[1] }
func (b Best2) Idx0() int32   { return b.idx[0] }
func (b Best2) Idx1() int32   { return b.idx[1] }

// Update folds one more (distance, candidate index) observation in. The
// `d != dist[0]` guard on the slot-1 branch is essential: without it, two
// candidates tied for best distance would collapse dist[0] == dist[1] and
// make the ratio test always reject.
func (b *Best2) Update(d uint32, i int32) {
	if d < b.dist[0] {
		b.dist[1], b.idx[1] = b.dist[0], b.idx[0]
		b.dist[0], b.idx[0] = d, i
		return
	}
	if d != b.dist[0] && d < b.dist[1] {
		b.dist[1], b.idx[1] = d, i
	}
}

// Combine merges two accumulators built over disjoint candidate ranges.
// The operation is associative and commutative in the resulting pair of
// distances; when a.Dist0() == b.Dist0() the tie is broken in favour of
// a's index.
func Combine(a, b Best2) Best2 {
	out := a
	out.Update(b.dist[0], b.idx[0])
	out.Update(b.dist[1], b.idx[1])
	return out
}

// RatioAccept implements Lowe's ratio test d0/d1 < 0.8 using integer
// arithmetic: d0*5 < d1*4 for L1 distances, or d0*100 < d1*64 for
// squared-L2 distances (the threshold squared to match the squared
// distance domain).
func RatioAccept(d0, d1 uint32, squared bool) bool {
	if squared {
		return d0*100 < d1*64
	}
	return d0*5 < d1*4
}
