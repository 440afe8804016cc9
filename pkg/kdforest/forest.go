package kdforest

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/orneryd/siftforest/pkg/descriptor"
)

// maxDescriptors is the 2^31 ceiling so that node and list indices fit in
// a uint32 with room to spare for the sign-like sentinel values annquery
// uses for "no candidate".
const maxDescriptors = 1 << 31

// Config holds the parameters of a forest build. TreeCount and LeafSize
// are caller-supplied; Seed drives every tree's RNG substream and is the
// only source of randomness the tree builds consume (the build ID used in
// log lines is drawn separately and does not affect the forest).
type Config struct {
	TreeCount uint32
	LeafSize  uint32
	Seed      uint64
}

// Forest is treeCount independently-built randomised KD-trees sharing one
// set of split dimensions, plus the descriptor slice they all index into.
type Forest struct {
	Descriptors []descriptor.Descriptor
	Split       SplitDimensions
	Trees       []*Tree
}

// BuildForest computes the shared split dimensions once, then builds
// Config.TreeCount trees in parallel, each with its own descendant RNG
// substream derived from Config.Seed (see DESIGN.md's Open Question
// decision on substream derivation). Returns ErrCapacityExceeded if descs
// is too large to index. Otherwise, once every tree's build has finished,
// it returns the error of the lowest-numbered failing tree: ctx.Err() as is
// if ctx was done before that tree started, or the build error wrapped with
// the build ID and tree index, so callers can see which tree's build failed.
func BuildForest(ctx context.Context, descs []descriptor.Descriptor, cfg Config) (*Forest, error) {
	if len(descs) >= maxDescriptors {
		return nil, ErrCapacityExceeded
	}
	if len(descs) == 0 {
		return nil, fmt.Errorf("kdforest: BuildForest requires at least one descriptor")
	}
	if cfg.TreeCount == 0 {
		return nil, fmt.Errorf("kdforest: BuildForest requires TreeCount > 0")
	}

	buildID := uuid.New()
	log.Printf("kdforest: build %s starting: %d descriptors, %d trees, leaf size %d", buildID, len(descs), cfg.TreeCount, cfg.LeafSize)

	sdim := ComputeSplitDimensions(descs)

	trees := make([]*Tree, cfg.TreeCount)
	errs := make([]error, cfg.TreeCount)

	var wg sync.WaitGroup
	for i := uint32(0); i < cfg.TreeCount; i++ {
		wg.Add(1)
		go func(i uint32) {
			defer wg.Done()
			if ctx.Err() != nil {
				errs[i] = ctx.Err()
				return
			}
			substream := cfg.Seed*uint64(cfg.TreeCount) + uint64(i)
			rng := rand.New(rand.NewSource(int64(substream)))
			tr, err := buildTree(descs, sdim, cfg.LeafSize, rng)
			if err != nil {
				errs[i] = fmt.Errorf("kdforest: build %s: tree %d: %w", buildID, i, err)
				return
			}
			trees[i] = tr
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	log.Printf("kdforest: build %s complete", buildID)
	return &Forest{Descriptors: descs, Split: sdim, Trees: trees}, nil
}

// TreeCount returns the number of trees in the forest.
func (f *Forest) TreeCount() int { return len(f.Trees) }
