package cpu

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/latent/internal/parallel"
	"github.com/born-ml/latent/internal/tensor"
)

// AddRow adds v to every row of x in place.
func (cpu *CPUBackend) AddRow(x *mat.Dense, v mat.Vector) {
	r, c := x.Dims()
	tensor.CheckShape("add_row", tensor.Shape{v.Len()}, tensor.Shape{c})

	vd := vecData(v)
	parallel.For(r, func(i int) {
		row := x.RawRowView(i)
		for j := range row {
			row[j] += vd[j]
		}
	}, cpu.par)
}

// ScaleRows multiplies row i of x by s[i] in place.
// A length-1 s scales every row by the same factor.
func (cpu *CPUBackend) ScaleRows(x *mat.Dense, s mat.Vector) {
	r, _ := x.Dims()
	if s.Len() == 1 {
		x.Scale(s.AtVec(0), x)
		return
	}
	tensor.CheckShape("scale_rows", tensor.Shape{s.Len()}, tensor.Shape{r})

	sd := vecData(s)
	parallel.For(r, func(i int) {
		row := x.RawRowView(i)
		for j := range row {
			row[j] *= sd[i]
		}
	}, cpu.par)
}

// ScaleElems multiplies x[i] by s[i] in place.
// A length-1 s scales every element by the same factor.
func (cpu *CPUBackend) ScaleElems(x *mat.VecDense, s mat.Vector) {
	if s.Len() == 1 {
		x.ScaleVec(s.AtVec(0), x)
		return
	}
	tensor.CheckShape("scale_elems", tensor.Shape{s.Len()}, tensor.Shape{x.Len()})
	x.MulElemVec(x, s)
}

// DivRow divides every row of x element-wise by v.
func (cpu *CPUBackend) DivRow(x mat.Matrix, v mat.Vector) *mat.Dense {
	r, c := x.Dims()
	tensor.CheckShape("div_row", tensor.Shape{v.Len()}, tensor.Shape{c})

	result := mat.DenseCopyOf(x)
	vd := vecData(v)
	parallel.For(r, func(i int) {
		row := result.RawRowView(i)
		for j := range row {
			row[j] /= vd[j]
		}
	}, cpu.par)
	return result
}

// Exp returns exp(scale * v) element-wise.
func (cpu *CPUBackend) Exp(v mat.Vector, scale float64) *mat.VecDense {
	n := v.Len()
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Exp(scale * v.AtVec(i))
	}
	return mat.NewVecDense(n, out)
}

// Apply returns fn applied to every element of x.
func (cpu *CPUBackend) Apply(x mat.Matrix, fn func(float64) float64) *mat.Dense {
	result := mat.DenseCopyOf(x)
	r, _ := result.Dims()
	parallel.For(r, func(i int) {
		row := result.RawRowView(i)
		for j, v := range row {
			row[j] = fn(v)
		}
	}, cpu.par)
	return result
}
