package tensor

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Shape represents the dimensions of a tensor.
//
// Parameters use Shape{n} for per-unit vectors and Shape{nvis, nhid} for
// weight matrices.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Rows returns the leading dimension, treating a vector as a single row.
func (s Shape) Rows() int {
	if len(s) < 2 {
		return 1
	}
	return s[0]
}

// Cols returns the trailing dimension.
func (s Shape) Cols() int {
	if len(s) == 0 {
		return 1
	}
	return s[len(s)-1]
}

// String formats the shape as (d0, d1, ...).
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = fmt.Sprint(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ShapeOf returns the shape of a gonum matrix.
func ShapeOf(m mat.Matrix) Shape {
	r, c := m.Dims()
	return Shape{r, c}
}
