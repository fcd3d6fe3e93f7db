package layers

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/latent/internal/backend"
)

// BernoulliLayer has units in {0, 1} with P(s=1 | f) = σ(f).
type BernoulliLayer struct {
	backend backend.Backend
	rng     *rand.Rand
}

// Kind returns Bernoulli.
func (l *BernoulliLayer) Kind() Kind { return Bernoulli }

// SampleState draws s ~ Bernoulli(σ(field)).
func (l *BernoulliLayer) SampleState(field *mat.Dense, _ mat.Vector) *mat.Dense {
	p := l.Mean(field)
	return sampleEach(field, func(i, j int) float64 {
		return distuv.Bernoulli{P: p.At(i, j), Src: l.rng}.Rand()
	})
}

// Mean returns σ(field).
func (l *BernoulliLayer) Mean(field *mat.Dense) *mat.Dense {
	return l.backend.Apply(field, sigmoid)
}

// Prox returns 1 where field > 0 and 0 elsewhere.
func (l *BernoulliLayer) Prox(field *mat.Dense) *mat.Dense {
	return l.backend.Apply(field, func(f float64) float64 {
		if f > 0 {
			return 1
		}
		return 0
	})
}

// LogPartitionFunction returns log(1 + e^field).
func (l *BernoulliLayer) LogPartitionFunction(field *mat.Dense) *mat.Dense {
	return l.backend.Apply(field, softplus)
}

// Random returns fair coin flips shaped like ref.
func (l *BernoulliLayer) Random(ref mat.Matrix) *mat.Dense {
	coin := distuv.Bernoulli{P: 0.5, Src: l.rng}
	return sampleEach(ref, func(_, _ int) float64 { return coin.Rand() })
}

// IsingLayer has units in {-1, +1} with P(s | f) ∝ e^(s·f).
type IsingLayer struct {
	backend backend.Backend
	rng     *rand.Rand
}

// Kind returns Ising.
func (l *IsingLayer) Kind() Kind { return Ising }

// SampleState draws s = +1 with probability (1 + tanh(field)) / 2.
func (l *IsingLayer) SampleState(field *mat.Dense, _ mat.Vector) *mat.Dense {
	return sampleEach(field, func(i, j int) float64 {
		up := distuv.Bernoulli{P: sigmoid(2 * field.At(i, j)), Src: l.rng}.Rand()
		return 2*up - 1
	})
}

// Mean returns tanh(field).
func (l *IsingLayer) Mean(field *mat.Dense) *mat.Dense {
	return l.backend.Apply(field, math.Tanh)
}

// Prox returns sign(field), mapping 0 to -1.
func (l *IsingLayer) Prox(field *mat.Dense) *mat.Dense {
	return l.backend.Apply(field, func(f float64) float64 {
		if f > 0 {
			return 1
		}
		return -1
	})
}

// LogPartitionFunction returns log(2·cosh(field)).
func (l *IsingLayer) LogPartitionFunction(field *mat.Dense) *mat.Dense {
	return l.backend.Apply(field, func(f float64) float64 {
		a := math.Abs(f)
		return a + math.Log1p(math.Exp(-2*a))
	})
}

// Random returns fair ±1 flips shaped like ref.
func (l *IsingLayer) Random(ref mat.Matrix) *mat.Dense {
	coin := distuv.Bernoulli{P: 0.5, Src: l.rng}
	return sampleEach(ref, func(_, _ int) float64 { return 2*coin.Rand() - 1 })
}

// sigmoid is the numerically stable logistic function.
func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// softplus computes log(1 + e^x) without overflow.
func softplus(x float64) float64 {
	return math.Max(x, 0) + math.Log1p(math.Exp(-math.Abs(x)))
}
