// Package layers implements the unit-layer distributions of a two-layer
// energy-based model.
//
// A layer knows how to turn a natural-parameter field (computed by a model
// from the other layer's state) into samples, conditional means, modes and
// log-partition values. Layers hold no parameters of their own.
package layers

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/latent/internal/backend"
)

// ErrUnknownKind is returned when a unit-type tag names no known layer.
var ErrUnknownKind = errors.New("unknown unit type")

// Kind identifies a unit distribution.
type Kind int

// Supported unit types.
const (
	Bernoulli Kind = iota // {0, 1} units
	Ising                 // {-1, +1} units
	Gaussian              // real-valued units with identity link
)

var kindNames = map[Kind]string{
	Bernoulli: "bernoulli",
	Ising:     "ising",
	Gaussian:  "gaussian",
}

// String returns the unit-type tag.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the supported unit types.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind resolves a unit-type tag such as "ising".
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			return k, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownKind, "%q", name)
}

// Layer is the capability set every unit type provides.
//
// All methods take a batch field of shape (batch, units) and return a new
// matrix of the same shape; inputs are never modified.
type Layer interface {
	// Kind returns the unit type.
	Kind() Kind

	// SampleState draws one sample per entry from the conditional
	// distribution with natural parameter field.
	//
	// scale is a per-unit standard deviation used by Gaussian units;
	// nil means unit scale. Binary units ignore it.
	SampleState(field *mat.Dense, scale mat.Vector) *mat.Dense

	// Mean returns the conditional expectation given field.
	Mean(field *mat.Dense) *mat.Dense

	// Prox returns the most probable state given field.
	Prox(field *mat.Dense) *mat.Dense

	// LogPartitionFunction returns the per-unit log normalizer of the
	// conditional distribution.
	LogPartitionFunction(field *mat.Dense) *mat.Dense

	// Random returns an uninformed random state with the shape of ref.
	Random(ref mat.Matrix) *mat.Dense
}

// New creates the layer for kind.
//
// Sampling draws from rng, which the caller owns; layers built from the same
// rng share one random stream.
func New(kind Kind, be backend.Backend, rng *rand.Rand) (Layer, error) {
	switch kind {
	case Bernoulli:
		return &BernoulliLayer{backend: be, rng: rng}, nil
	case Ising:
		return &IsingLayer{backend: be, rng: rng}, nil
	case Gaussian:
		return &GaussianLayer{backend: be, rng: rng}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "%v", kind)
	}
}

// sampleEach fills a matrix shaped like ref with draw(i, j), row by row.
// Draws are sequential so a seeded rng yields a reproducible stream.
func sampleEach(ref mat.Matrix, draw func(i, j int) float64) *mat.Dense {
	r, c := ref.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		row := out.RawRowView(i)
		for j := range row {
			row[j] = draw(i, j)
		}
	}
	return out
}
