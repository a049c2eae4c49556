package vecmath

import (
	"testing"

	"gonum.org/v1/gonum/blas/blas32"
)

// Benchmark the per-particle integration step with indexed helpers.
func BenchmarkIntegrateIndexed(b *testing.B) {
	n := 64 * 64
	pos := make([]float32, 3*n)
	vel := make([]float32, 3*n)
	for i := range vel {
		vel[i] = float32(i%7) * 0.01
	}
	dt := float32(1.0 / 900.0)

	b.ResetTimer()
	for k := 0; k < b.N; k++ {
		for i := 0; i < n; i++ {
			Add(pos, i, vel, i, dt)
		}
	}
}

// Benchmark the same update as a single blas32 axpy over the flat buffer.
func BenchmarkIntegrateBLAS(b *testing.B) {
	n := 64 * 64
	pos := make([]float32, 3*n)
	vel := make([]float32, 3*n)
	for i := range vel {
		vel[i] = float32(i%7) * 0.01
	}
	dt := float32(1.0 / 900.0)

	vp := blas32.Vector{N: 3 * n, Inc: 1, Data: pos}
	vv := blas32.Vector{N: 3 * n, Inc: 1, Data: vel}

	b.ResetTimer()
	for k := 0; k < b.N; k++ {
		blas32.Axpy(dt, vv, vp)
	}
}
