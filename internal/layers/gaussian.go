package layers

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/latent/internal/backend"
	"github.com/born-ml/latent/internal/tensor"
)

// halfLog2Pi is ½·log(2π), the normalizer of a unit-variance Gaussian.
var halfLog2Pi = 0.5 * math.Log(2*math.Pi)

// GaussianLayer has real-valued units with identity link: the field is the
// location of the conditional distribution.
type GaussianLayer struct {
	backend backend.Backend
	rng     *rand.Rand
}

// Kind returns Gaussian.
func (l *GaussianLayer) Kind() Kind { return Gaussian }

// SampleState draws s ~ N(field, scale²) per unit.
func (l *GaussianLayer) SampleState(field *mat.Dense, scale mat.Vector) *mat.Dense {
	_, c := field.Dims()
	if scale != nil {
		tensor.CheckShape("gaussian.sample_state", tensor.Shape{scale.Len()}, tensor.Shape{c})
	}
	return sampleEach(field, func(i, j int) float64 {
		sigma := 1.0
		if scale != nil {
			sigma = scale.AtVec(j)
		}
		return distuv.Normal{Mu: field.At(i, j), Sigma: sigma, Src: l.rng}.Rand()
	})
}

// Mean returns the location.
func (l *GaussianLayer) Mean(field *mat.Dense) *mat.Dense {
	return l.backend.Clone(field)
}

// Prox returns the location; mean and mode coincide for a Gaussian.
func (l *GaussianLayer) Prox(field *mat.Dense) *mat.Dense {
	return l.backend.Clone(field)
}

// LogPartitionFunction returns field²/2 + ½·log(2π) for unit variance.
func (l *GaussianLayer) LogPartitionFunction(field *mat.Dense) *mat.Dense {
	return l.backend.Apply(field, func(f float64) float64 {
		return 0.5*f*f + halfLog2Pi
	})
}

// Random returns standard normal draws shaped like ref.
func (l *GaussianLayer) Random(ref mat.Matrix) *mat.Dense {
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: l.rng}
	return sampleEach(ref, func(_, _ int) float64 { return normal.Rand() })
}
