package annquery

import (
	"context"
	"fmt"
	"testing"

	"github.com/orneryd/siftforest/pkg/kdforest"
)

// BenchmarkQuery2NN benchmarks single-query 2-NN search across dataset sizes.
func BenchmarkQuery2NN(b *testing.B) {
	sizes := []int{1000, 10000, 100000}

	for _, n := range sizes {
		b.Run(fmt.Sprintf("N=%d", n), func(b *testing.B) {
			descs := randomDescriptors(n, 42)
			f, err := kdforest.BuildForest(context.Background(), descs, kdforest.Config{TreeCount: 8, LeafSize: 16, Seed: 1})
			if err != nil {
				b.Fatalf("BuildForest failed: %v", err)
			}
			q := descs[0]

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, _, err := Query2NN(context.Background(), f, q, 1000); err != nil {
					b.Fatalf("Query2NN failed: %v", err)
				}
			}
		})
	}
}

// BenchmarkMatchAll benchmarks whole-match throughput.
func BenchmarkMatchAll(b *testing.B) {
	descs := randomDescriptors(5000, 7)
	f, err := kdforest.BuildForest(context.Background(), descs, kdforest.Config{TreeCount: 8, LeafSize: 16, Seed: 1})
	if err != nil {
		b.Fatalf("BuildForest failed: %v", err)
	}
	queries := descs[:200]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := MatchAll(context.Background(), f, queries, 1000, false); err != nil {
			b.Fatalf("MatchAll failed: %v", err)
		}
	}
}
