package weave

import (
	"context"
	"fmt"
	"testing"
)

// BenchmarkApply measures the permutation across buffer geometries and
// worker counts.
func BenchmarkApply(b *testing.B) {
	benchmarks := []struct {
		name   string
		width  int
		height int
		size   int
	}{
		{"640x480_size8", 640, 480, 8},
		{"1920x1080_size8", 1920, 1080, 8},
		{"1920x1080_size24", 1920, 1080, 24},
	}

	for _, bm := range benchmarks {
		src := NewPixmap(bm.width, bm.height)
		for i := range src.Data() {
			src.Data()[i] = uint8(i)
		}
		pat := Reversed(bm.size)

		for _, workers := range []int{1, 4} {
			b.Run(fmt.Sprintf("%s_workers%d", bm.name, workers), func(b *testing.B) {
				eng := NewEngine(WithWorkers(workers))
				ctx := context.Background()

				b.SetBytes(int64(bm.width * bm.height * 4))
				b.ReportAllocs()
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					if _, err := eng.Apply(ctx, src, pat); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// BenchmarkApplyProgressOverhead compares Apply with and without a progress
// callback.
func BenchmarkApplyProgressOverhead(b *testing.B) {
	src := NewPixmap(1280, 720)
	for i := range src.Data() {
		src.Data()[i] = uint8(i)
	}
	pat := Reversed(8)
	ctx := context.Background()

	b.Run("NoProgress", func(b *testing.B) {
		eng := NewEngine()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := eng.Apply(ctx, src, pat); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("WithProgress", func(b *testing.B) {
		var last Progress
		eng := NewEngine(WithProgress(func(p Progress) { last = p }))
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := eng.Apply(ctx, src, pat); err != nil {
				b.Fatal(err)
			}
		}
		_ = last
	})
}
