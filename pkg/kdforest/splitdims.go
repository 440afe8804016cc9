package kdforest

import "github.com/orneryd/siftforest/pkg/descriptor"

// SplitCount is the number of dimensions every split draws from.
const SplitCount = 5

// SplitDimensions is the ordered tuple of the five dimensions with highest
// sample variance over a whole descriptor array, computed once and shared
// by every tree of a forest.
type SplitDimensions [SplitCount]uint8

// ComputeSplitDimensions returns the SplitCount dimensions with the
// largest sample variance over descs, breaking ties by lower dimension
// index. descs must be non-empty.
func ComputeSplitDimensions(descs []descriptor.Descriptor) SplitDimensions {
	var mean, m2 [descriptor.Dims]float64
	n := float64(len(descs))

	// Two-pass mean/variance: a single pass over a dataset this small
	// (128 dims, one byte each) is cheap enough that a numerically simpler
	// two-pass loop beats Welford's running-variance bookkeeping.
	for _, d := range descs {
		for i := 0; i < descriptor.Dims; i++ {
			mean[i] += float64(d[i])
		}
	}
	for i := range mean {
		mean[i] /= n
	}
	for _, d := range descs {
		for i := 0; i < descriptor.Dims; i++ {
			delta := float64(d[i]) - mean[i]
			m2[i] += delta * delta
		}
	}

	type dimVar struct {
		dim int
		v   float64
	}
	all := make([]dimVar, descriptor.Dims)
	for i := range all {
		all[i] = dimVar{dim: i, v: m2[i]}
	}

	var out SplitDimensions
	for k := 0; k < SplitCount; k++ {
		best := -1
		for i, dv := range all {
			if dv.dim < 0 {
				continue
			}
			if best == -1 {
				best = i
				continue
			}
			bv := all[best]
			if dv.v > bv.v || (dv.v == bv.v && dv.dim < bv.dim) {
				best = i
			}
		}
		out[k] = uint8(all[best].dim)
		all[best].dim = -1
	}
	return out
}
