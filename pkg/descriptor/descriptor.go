// Package descriptor defines the fixed-width SIFT descriptor type and the
// distance primitives the rest of siftforest builds on.
package descriptor

// Dims is the component count of a descriptor.
const Dims = 128

// Descriptor is an immutable 128-component byte vector produced by an
// external feature detector. The zero value is the all-zero descriptor.
//
// Callers own an array of these (typically allocated as one contiguous
// []Descriptor slice); siftforest never mutates a descriptor it did not
// build itself, and an index's Descriptors slice is read-only for the
// lifetime of the index.
//
// Every Descriptor in a []Descriptor is Dims bytes apart in the backing
// array, so SIMD-width loads over any of the four 32-byte lanes of a given
// descriptor never cross into another descriptor's storage.
type Descriptor [Dims]byte
