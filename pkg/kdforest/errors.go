package kdforest

import "errors"

// ErrCapacityExceeded is returned when a descriptor count reaches the
// 2^31 ceiling the packed index/node fields rely on.
var ErrCapacityExceeded = errors.New("kdforest: descriptor count exceeds capacity")

// ErrPartitionFailure is returned when 16 randomised partition attempts on
// a range all fail to find a usable split. Fatal to the current build; a
// caller may retry BuildForest with a different seed.
var ErrPartitionFailure = errors.New("kdforest: partition failed after 16 attempts")

// ErrInvariantViolation is returned when post-build validation finds the
// tree structurally inconsistent. Always a builder bug.
var ErrInvariantViolation = errors.New("kdforest: post-build invariant violation")
