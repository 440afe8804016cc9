package descriptor

// BoundingBox is the component-wise (min, max) extrema of a set of
// descriptors. The invariant Min[i] <= Max[i] holds for every component i
// of any BoundingBox produced by this package.
type BoundingBox struct {
	Min, Max Descriptor
}

// BoxOf returns the bounding box of descs[indexes[i]] for every i, or the
// zero BoundingBox if indexes is empty.
func BoxOf(descs []Descriptor, indexes []uint32) BoundingBox {
	var bb BoundingBox
	if len(indexes) == 0 {
		return bb
	}
	bb.Min = descs[indexes[0]]
	bb.Max = descs[indexes[0]]
	for _, idx := range indexes[1:] {
		d := descs[idx]
		for i := 0; i < Dims; i++ {
			if d[i] < bb.Min[i] {
				bb.Min[i] = d[i]
			}
			if d[i] > bb.Max[i] {
				bb.Max[i] = d[i]
			}
		}
	}
	return bb
}

// Union returns the component-wise min/max of a and b.
func Union(a, b BoundingBox) BoundingBox {
	var out BoundingBox
	for i := 0; i < Dims; i++ {
		if a.Min[i] < b.Min[i] {
			out.Min[i] = a.Min[i]
		} else {
			out.Min[i] = b.Min[i]
		}
		if a.Max[i] > b.Max[i] {
			out.Max[i] = a.Max[i]
		} else {
			out.Max[i] = b.Max[i]
		}
	}
	return out
}
