// Package tensor provides the shape, precision and error types shared by the
// backend, the unit layers and the models.
//
// Dense storage itself is gonum's mat.Dense; this package only describes it.
package tensor

import "math"

// DataType selects the numeric precision of values produced by backend
// constructors.
type DataType int

// Supported precisions.
const (
	Float64 DataType = iota
	Float32
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// Round rounds x to the precision of the data type.
//
// Storage is always float64; Float32 rounds values through float32 so that
// results match a single-precision run.
func (dt DataType) Round(x float64) float64 {
	if dt == Float32 {
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return x
		}
		return float64(float32(x))
	}
	return x
}

// RoundAll rounds every element of data in place.
func (dt DataType) RoundAll(data []float64) {
	if dt != Float32 {
		return
	}
	for i, v := range data {
		data[i] = dt.Round(v)
	}
}
