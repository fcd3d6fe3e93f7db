// Package models implements two-layer energy-based latent-variable models
// (the restricted Boltzmann machine family).
//
// This package provides:
//   - LatentModel: the model-independent engine (Gibbs chains, mean-field
//     and deterministic relaxation, constraints, penalties)
//   - RBM: bilinear energy between two binary layers
//   - Hopfield: binary visible units with fixed Gaussian hidden units
//   - GaussianRBM: Gaussian visible units with a learned log-variance
//
// Batches are *mat.Dense with one example per row. beta, the inverse
// temperature, is an optional vector of length 1 or batch size; it scales the
// data-dependent bilinear term only, never a bias. nil means no annealing.
package models

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/latent/internal/backend"
	"github.com/born-ml/latent/internal/constraints"
	"github.com/born-ml/latent/internal/initialize"
	"github.com/born-ml/latent/internal/layers"
	"github.com/born-ml/latent/internal/parallel"
	"github.com/born-ml/latent/internal/penalties"
	"github.com/born-ml/latent/internal/tensor"
)

// Role names one of the two layers of a model.
type Role string

// Layer roles.
const (
	Visible Role = "visible"
	Hidden  Role = "hidden"
)

// Parameter names.
const (
	ParamWeights      = "weights"
	ParamVisibleBias  = "visible_bias"
	ParamHiddenBias   = "hidden_bias"
	ParamVisibleScale = "visible_scale"
)

// Config configures model construction.
type Config struct {
	// Seed for parameter draws and sampling. -1 = random.
	Seed int64

	// Precision of constructed parameter values.
	Precision tensor.DataType

	// Parallel controls batch-dimension parallelism in the default backend.
	Parallel parallel.Config

	// Backend overrides the default CPU backend built from the fields above.
	Backend backend.Backend
}

// DefaultConfig returns a randomly seeded float64 configuration.
func DefaultConfig() Config {
	return Config{
		Seed:      -1,
		Precision: tensor.Float64,
		Parallel:  parallel.DefaultConfig(),
	}
}

// Model is the operation set shared by every variant.
type Model interface {
	NumVisible() int
	NumHidden() int
	Layer(role Role) layers.Layer

	// Parameters
	ParamNames() []string
	HasParam(name string) bool
	Param(name string) (*Parameter, error)
	Params() map[string]*Parameter
	SetParam(name string, data []float64) error
	Initialize(data mat.Matrix, method initialize.Method) error

	// Constraints and penalties
	AddConstraint(param string, kind constraints.Kind) error
	AddConstraints(cons map[string]constraints.Kind) error
	Constraints() map[string]constraints.Kind
	EnforceConstraints()
	AddPenalty(param string, p penalties.Penalty) error
	AddWeightDecay(strength float64, kind penalties.Kind) error
	Penalties() map[string]penalties.Penalty

	// Conditionals
	SampleHidden(v mat.Matrix, beta *mat.VecDense) *mat.Dense
	SampleVisible(h mat.Matrix, beta *mat.VecDense) *mat.Dense
	HiddenMean(v mat.Matrix, beta *mat.VecDense) *mat.Dense
	VisibleMean(h mat.Matrix, beta *mat.VecDense) *mat.Dense
	HiddenMode(v mat.Matrix, beta *mat.VecDense) *mat.Dense
	VisibleMode(h mat.Matrix, beta *mat.VecDense) *mat.Dense

	// Iteration
	Random(visible mat.Matrix) *mat.Dense
	MCStep(v mat.Matrix, beta *mat.VecDense) *mat.Dense
	MarkovChain(v mat.Matrix, steps int, beta *mat.VecDense) *mat.Dense
	MeanFieldStep(v mat.Matrix, beta *mat.VecDense) *mat.Dense
	MeanFieldIteration(v mat.Matrix, steps int, beta *mat.VecDense) *mat.Dense
	DeterministicStep(v mat.Matrix, beta *mat.VecDense) *mat.Dense
	DeterministicIteration(v mat.Matrix, steps int, beta *mat.VecDense) *mat.Dense

	// Statistics
	Derivatives(v mat.Matrix) map[string]*Parameter
	JointEnergy(v, h mat.Matrix, beta *mat.VecDense) float64
	MarginalFreeEnergy(v mat.Matrix, beta *mat.VecDense) *mat.VecDense
}

// ParseUnitKind resolves a unit-type tag, failing with a *DefinitionError.
func ParseUnitKind(name string) (layers.Kind, error) {
	kind, err := layers.ParseKind(name)
	if err != nil {
		return 0, &DefinitionError{Model: "model", Field: "unit type", Reason: "unsupported tag", Err: err}
	}
	return kind, nil
}
