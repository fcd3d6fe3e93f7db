package models

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/latent/internal/tensor"
)

// Parameter is a named, fixed-shape model tensor.
//
// Weight matrices have shape (nvis, nhid) and per-unit vectors shape (n),
// both stored row-major. Parameters returned by a model (Param, Params,
// Derivatives) are copies owned by the caller.
type Parameter struct {
	name  string       // Parameter name (e.g., "weights", "visible_bias")
	shape tensor.Shape // Fixed for the lifetime of the model
	data  []float64
}

// NewParameter creates a parameter that takes ownership of data.
// Panics with a *tensor.ShapeError if len(data) does not match shape.
func NewParameter(name string, shape tensor.Shape, data []float64) *Parameter {
	tensor.CheckShape(name, tensor.Shape{len(data)}, tensor.Shape{shape.NumElements()})
	return &Parameter{name: name, shape: shape.Clone(), data: data}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Shape returns the parameter shape.
func (p *Parameter) Shape() tensor.Shape {
	return p.shape.Clone()
}

// Data returns the row-major values.
//
// WARNING: the slice aliases the parameter's storage.
func (p *Parameter) Data() []float64 {
	return p.data
}

// Clone returns a deep copy.
func (p *Parameter) Clone() *Parameter {
	data := make([]float64, len(p.data))
	copy(data, p.data)
	return &Parameter{name: p.name, shape: p.shape.Clone(), data: data}
}

// Matrix returns a view of a 2-D parameter, or of a vector as a single row.
func (p *Parameter) Matrix() *mat.Dense {
	return mat.NewDense(p.shape.Rows(), p.shape.Cols(), p.data)
}

// Vector returns a view of a 1-D parameter.
func (p *Parameter) Vector() *mat.VecDense {
	return mat.NewVecDense(len(p.data), p.data)
}

func paramFromDense(name string, m *mat.Dense) *Parameter {
	r, c := m.Dims()
	return NewParameter(name, tensor.Shape{r, c}, mat.DenseCopyOf(m).RawMatrix().Data)
}

func paramFromVec(name string, v *mat.VecDense) *Parameter {
	data := make([]float64, v.Len())
	for i := range data {
		data[i] = v.AtVec(i)
	}
	return NewParameter(name, tensor.Shape{len(data)}, data)
}
