package descriptor

// L1 returns the sum of absolute per-component differences between a and b.
//
// Components are bytes, so the result is bounded by 128*255 = 32640 and
// fits comfortably in 16 bits — the annquery candidate heap relies on this
// bound to pack its distance field into two bytes.
func L1(a, b Descriptor) uint16 {
	var sum int
	for i := 0; i < Dims; i++ {
		d := int(a[i]) - int(b[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return uint16(sum)
}

// L2Sq returns the sum of squared per-component differences between a and b.
func L2Sq(a, b Descriptor) uint32 {
	var sum uint32
	for i := 0; i < Dims; i++ {
		d := int32(a[i]) - int32(b[i])
		sum += uint32(d * d)
	}
	return sum
}

// L1ToBox returns the L1 lower bound from q to the nearest point inside bb:
// for each component, the gap by which q falls outside [min[i], max[i]],
// summed. Zero when q lies inside bb, and monotonically increasing with the
// shortest-axis escape — this is what makes heap-ordered traversal by
// L1ToBox admissible as a priority-queue traversal key.
func L1ToBox(q Descriptor, bb BoundingBox) uint16 {
	var sum int
	for i := 0; i < Dims; i++ {
		lo := int(bb.Min[i]) - int(q[i])
		hi := int(q[i]) - int(bb.Max[i])
		if lo > 0 {
			sum += lo
		} else if hi > 0 {
			sum += hi
		}
	}
	return uint16(sum)
}
