// Package backend defines the dense-tensor primitives the models are written
// against.
//
// A batch is a matrix whose rows are examples and whose columns are units.
// Implementations panic with a *tensor.ShapeError when operands do not fit;
// the models never recover those panics.
//
// Implementations:
//   - cpu: gonum-backed, data-parallel across the batch dimension
package backend

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/latent/internal/tensor"
)

// Backend is the set of tensor primitives used by every model.
type Backend interface {
	// Matrix operations
	Dot(a, b mat.Matrix) *mat.Dense // (M, K) @ (K, N) -> (M, N)

	// BatchDot contracts a·w·b per example.
	// a is (N, K), w is (K, M), b is (N, M).
	// axis 1 returns the N per-example scalars a_n·w·b_n;
	// axis 0 returns the M per-unit sums Σ_n (a_n·w)_m b_nm.
	BatchDot(a, w, b mat.Matrix, axis int) *mat.VecDense

	// BatchOuter sums the per-example outer products a_n ⊗ b_n.
	// a is (N, K), b is (N, M); the result is (K, M).
	BatchOuter(a, b mat.Matrix) *mat.Dense

	// Reductions
	Mean(x mat.Matrix) float64                     // mean of all elements
	MeanDim(x mat.Matrix, axis int) *mat.VecDense // mean along axis (0 = over rows)
	SumDim(x mat.Matrix, axis int) *mat.VecDense  // sum along axis (0 = over rows)

	// Broadcast operations
	AddRow(x *mat.Dense, v mat.Vector)            // x[i, :] += v, in place
	ScaleRows(x *mat.Dense, s mat.Vector)         // x[i, :] *= s[i] (or s[0]), in place
	ScaleElems(x *mat.VecDense, s mat.Vector)     // x[i] *= s[i] (or s[0]), in place
	DivRow(x mat.Matrix, v mat.Vector) *mat.Dense // x[i, :] / v

	// Element-wise operations
	Exp(v mat.Vector, scale float64) *mat.VecDense            // exp(scale * v)
	Apply(x mat.Matrix, fn func(float64) float64) *mat.Dense // fn(x) element-wise
	Clone(x mat.Matrix) *mat.Dense

	// Constructors, rounded to Precision()
	Zeros(shape tensor.Shape) []float64
	Ones(shape tensor.Shape) []float64
	Randn(shape tensor.Shape) []float64

	// Metadata
	Name() string
	Precision() tensor.DataType
}
