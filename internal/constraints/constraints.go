// Package constraints implements the named projections applied to model
// parameters after every update.
package constraints

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/latent/internal/tensor"
)

// ErrUnknownConstraint is returned when a name matches no constraint.
var ErrUnknownConstraint = errors.New("unknown constraint")

// Kind identifies a projection.
type Kind int

// Available constraints.
const (
	NonNegative Kind = iota // clamp every entry to >= 0
	NonPositive             // clamp every entry to <= 0
	ClipNorm                // rescale each column (or the whole vector) to norm <= 1
)

var kindNames = map[Kind]string{
	NonNegative: "non_negative",
	NonPositive: "non_positive",
	ClipNorm:    "clip_norm",
}

// String returns the registry name of k.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k names a constraint.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Parse resolves a constraint name such as "non_negative".
func Parse(name string) (Kind, error) {
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			return k, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownConstraint, "%q", name)
}

// Apply projects data, laid out row-major with the given shape, in place.
func (k Kind) Apply(data []float64, shape tensor.Shape) {
	switch k {
	case NonNegative:
		for i, v := range data {
			data[i] = math.Max(v, 0)
		}
	case NonPositive:
		for i, v := range data {
			data[i] = math.Min(v, 0)
		}
	case ClipNorm:
		clipNorm(data, shape)
	default:
		panic(fmt.Sprintf("constraints: apply of invalid kind %v", k))
	}
}

// clipNorm rescales every column of a matrix, or a whole vector, whose
// Euclidean norm exceeds 1 back onto the unit sphere.
func clipNorm(data []float64, shape tensor.Shape) {
	if len(shape) < 2 {
		if n := floats.Norm(data, 2); n > 1 {
			floats.Scale(1/n, data)
		}
		return
	}

	rows, cols := shape.Rows(), shape.Cols()
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			col[i] = data[i*cols+j]
		}
		n := floats.Norm(col, 2)
		if n <= 1 {
			continue
		}
		for i := 0; i < rows; i++ {
			data[i*cols+j] /= n
		}
	}
}
