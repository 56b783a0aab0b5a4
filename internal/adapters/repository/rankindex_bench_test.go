package repository

import (
	"fmt"
	"math/rand"
	"testing"
)

func BenchmarkRankIndex_Insert(b *testing.B) {
	for _, balanced := range []bool{false, true} {
		b.Run(fmt.Sprintf("balanced=%v", balanced), func(b *testing.B) {
			rng := rand.New(rand.NewSource(1))
			ix := NewRankIndex(WithBalancing(balanced))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ix.Insert(entry(fmt.Sprintf("p%d", i), rng.Int63n(1_000_000)))
			}
		})
	}
}

func BenchmarkRankIndex_RankOfEntry(b *testing.B) {
	ix := NewRankIndex(WithBalancing(true))
	rng := rand.New(rand.NewSource(1))
	const n = 100_000
	for i := 0; i < n; i++ {
		ix.Insert(entry(fmt.Sprintf("p%d", i), rng.Int63n(1_000_000)))
	}
	listing := ix.Listing()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ix.RankOfEntry(listing[i%n])
	}
}

func BenchmarkRankIndex_Top100(b *testing.B) {
	ix := NewRankIndex(WithBalancing(true))
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100_000; i++ {
		ix.Insert(entry(fmt.Sprintf("p%d", i), rng.Int63n(1_000_000)))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ix.Top(100)
	}
}
