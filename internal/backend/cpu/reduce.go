package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/latent/internal/parallel"
)

// Mean returns the mean of all elements of x.
func (cpu *CPUBackend) Mean(x mat.Matrix) float64 {
	r, c := x.Dims()
	return mat.Sum(x) / float64(r*c)
}

// SumDim sums x along the given axis.
//
// axis 0 sums over rows (one value per column); axis 1 sums over columns
// (one value per row). Negative axes count from the end.
//
// Example:
//
//	x := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
//	cpu.SumDim(x, 0) // [5, 7, 9]
//	cpu.SumDim(x, 1) // [6, 15]
func (cpu *CPUBackend) SumDim(x mat.Matrix, axis int) *mat.VecDense {
	xd := denseOf(x)
	r, c := xd.Dims()

	switch normalizeAxis(axis) {
	case 0:
		out := make([]float64, c)
		for i := 0; i < r; i++ {
			floats.Add(out, xd.RawRowView(i))
		}
		return mat.NewVecDense(c, out)
	default:
		out := make([]float64, r)
		parallel.For(r, func(i int) {
			out[i] = floats.Sum(xd.RawRowView(i))
		}, cpu.par)
		return mat.NewVecDense(r, out)
	}
}

// MeanDim averages x along the given axis (see SumDim).
func (cpu *CPUBackend) MeanDim(x mat.Matrix, axis int) *mat.VecDense {
	r, c := x.Dims()
	out := cpu.SumDim(x, axis)
	if normalizeAxis(axis) == 0 {
		out.ScaleVec(1/float64(r), out)
	} else {
		out.ScaleVec(1/float64(c), out)
	}
	return out
}

func normalizeAxis(axis int) int {
	if axis < 0 {
		axis += 2
	}
	if axis < 0 || axis > 1 {
		panic(fmt.Sprintf("reduce: axis %d out of range for 2D tensor", axis))
	}
	return axis
}
