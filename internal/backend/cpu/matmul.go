package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/latent/internal/parallel"
	"github.com/born-ml/latent/internal/tensor"
)

// Dot performs matrix multiplication.
// For 2D operands: (M, K) @ (K, N) -> (M, N).
func (cpu *CPUBackend) Dot(a, b mat.Matrix) *mat.Dense {
	m, k := a.Dims()
	kAlt, n := b.Dims()
	if k != kAlt {
		panic(&tensor.ShapeError{Op: "dot", Got: tensor.Shape{kAlt, n}, Want: tensor.Shape{k, -1}})
	}

	result := mat.NewDense(m, n, nil)
	result.Mul(a, b)
	return result
}

// BatchDot contracts a·w·b per example.
//
// Parameters:
//   - a: (N, K) batch
//   - w: (K, M) matrix
//   - b: (N, M) batch
//   - axis: 1 reduces over units (one value per example), 0 reduces over
//     the batch (one value per column of w)
func (cpu *CPUBackend) BatchDot(a, w, b mat.Matrix, axis int) *mat.VecDense {
	n, _ := a.Dims()
	_, m := w.Dims()
	tensor.CheckShape("batch_dot", tensor.ShapeOf(b), tensor.Shape{n, m})

	aw := cpu.Dot(a, w)
	bd := denseOf(b)

	switch axis {
	case 1:
		out := make([]float64, n)
		parallel.For(n, func(i int) {
			out[i] = floats.Dot(aw.RawRowView(i), bd.RawRowView(i))
		}, cpu.par)
		return mat.NewVecDense(n, out)
	case 0:
		partials := make([][]float64, parallel.NumChunks(n, cpu.par))
		parallel.ForChunksIndexed(n, func(chunk, start, end int) {
			partial := make([]float64, m)
			for i := start; i < end; i++ {
				awRow, bRow := aw.RawRowView(i), bd.RawRowView(i)
				for j := range partial {
					partial[j] += awRow[j] * bRow[j]
				}
			}
			partials[chunk] = partial
		}, cpu.par)

		// Merge in chunk order so the sum does not depend on scheduling.
		out := make([]float64, m)
		for _, partial := range partials {
			floats.Add(out, partial)
		}
		return mat.NewVecDense(m, out)
	default:
		panic(fmt.Sprintf("batch_dot: axis %d out of range for 2D operands", axis))
	}
}

// BatchOuter sums the outer products of matching rows of a and b.
// (N, K) ⊗ (N, M) -> (K, M)
func (cpu *CPUBackend) BatchOuter(a, b mat.Matrix) *mat.Dense {
	n, k := a.Dims()
	nAlt, m := b.Dims()
	if n != nAlt {
		panic(&tensor.ShapeError{Op: "batch_outer", Got: tensor.Shape{nAlt, m}, Want: tensor.Shape{n, -1}})
	}

	ad, bd := denseOf(a), denseOf(b)
	partials := make([]*mat.Dense, parallel.NumChunks(n, cpu.par))
	parallel.ForChunksIndexed(n, func(chunk, start, end int) {
		partial := mat.NewDense(k, m, nil)
		for i := start; i < end; i++ {
			aRow := mat.NewVecDense(k, ad.RawRowView(i))
			bRow := mat.NewVecDense(m, bd.RawRowView(i))
			partial.RankOne(partial, 1, aRow, bRow)
		}
		partials[chunk] = partial
	}, cpu.par)

	result := mat.NewDense(k, m, nil)
	for _, partial := range partials {
		result.Add(result, partial)
	}
	return result
}
