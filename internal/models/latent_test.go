package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/latent/internal/constraints"
	"github.com/born-ml/latent/internal/initialize"
	"github.com/born-ml/latent/internal/layers"
	"github.com/born-ml/latent/internal/parallel"
	"github.com/born-ml/latent/internal/penalties"
	"github.com/born-ml/latent/internal/tensor"
)

// Weights and hidden bias used across the model tests. For v = [1, 0, 1] the
// RBM hidden field is [-0.35, 0.35].
var (
	testWeights    = []float64{0.1, -0.2, 0.3, 0.4, -0.5, 0.6}
	testHiddenBias = []float64{0.05, -0.05}
)

func testConfig(seed int64) Config {
	cfg := DefaultConfig()
	cfg.Seed = seed
	cfg.Parallel = parallel.Sequential()
	return cfg
}

func newTestRBM(t *testing.T, nvis, nhid int, visKind, hidKind layers.Kind, seed int64) *RBM {
	t.Helper()
	m, err := NewRBM(nvis, nhid, visKind, hidKind, testConfig(seed))
	require.NoError(t, err)
	return m
}

func setParam(t *testing.T, m Model, name string, data ...float64) {
	t.Helper()
	require.NoError(t, m.SetParam(name, data))
}

func vec(values ...float64) *mat.VecDense {
	return mat.NewVecDense(len(values), values)
}

func TestNewModels_Definition(t *testing.T) {
	cfg := testConfig(1)

	tests := []struct {
		name  string
		build func() error
		field string
		cause error
	}{
		{"rbm zero visible", func() error { _, err := NewRBM(0, 2, layers.Bernoulli, layers.Bernoulli, cfg); return err }, "nvis", nil},
		{"rbm zero hidden", func() error { _, err := NewRBM(2, 0, layers.Bernoulli, layers.Bernoulli, cfg); return err }, "nhid", nil},
		{"rbm gaussian visible", func() error { _, err := NewRBM(2, 2, layers.Gaussian, layers.Bernoulli, cfg); return err }, "visible", layers.ErrUnknownKind},
		{"rbm gaussian hidden", func() error { _, err := NewRBM(2, 2, layers.Ising, layers.Gaussian, cfg); return err }, "hidden", layers.ErrUnknownKind},
		{"hopfield gaussian visible", func() error { _, err := NewHopfield(2, 2, layers.Gaussian, cfg); return err }, "visible", layers.ErrUnknownKind},
		{"grbm gaussian hidden", func() error { _, err := NewGaussianRBM(2, 2, layers.Gaussian, cfg); return err }, "hidden", layers.ErrUnknownKind},
		{"grbm unknown hidden", func() error { _, err := NewGaussianRBM(2, 2, layers.Kind(9), cfg); return err }, "hidden", layers.ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()
			require.Error(t, err)

			var defErr *DefinitionError
			require.ErrorAs(t, err, &defErr)
			assert.Equal(t, tt.field, defErr.Field)
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause)
			}
		})
	}
}

func TestParseUnitKind(t *testing.T) {
	kind, err := ParseUnitKind("ising")
	require.NoError(t, err)
	assert.Equal(t, layers.Ising, kind)

	_, err = ParseUnitKind("softmax")
	var defErr *DefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.ErrorIs(t, err, layers.ErrUnknownKind)
}

func TestLatentModel_Params(t *testing.T) {
	m := newTestRBM(t, 3, 2, layers.Bernoulli, layers.Bernoulli, 1)

	assert.Equal(t, []string{ParamWeights, ParamVisibleBias, ParamHiddenBias}, m.ParamNames())
	assert.True(t, m.HasParam(ParamWeights))
	assert.False(t, m.HasParam(ParamVisibleScale))
	assert.Equal(t, 3, m.NumVisible())
	assert.Equal(t, 2, m.NumHidden())
	assert.Equal(t, layers.Bernoulli, m.Layer(Visible).Kind())

	w, err := m.Param(ParamWeights)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 2}, w.Shape())

	// Param returns a copy.
	w.Data()[0] = 42
	again, err := m.Param(ParamWeights)
	require.NoError(t, err)
	assert.NotEqual(t, 42.0, again.Data()[0])

	_, err = m.Param("gain")
	assert.ErrorIs(t, err, ErrUnknownParameter)

	err = m.SetParam(ParamWeights, []float64{1, 2})
	var shapeErr *tensor.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, tensor.Shape{3, 2}, shapeErr.Want)

	assert.ErrorIs(t, m.SetParam("gain", []float64{1}), ErrUnknownParameter)

	params := m.Params()
	assert.Len(t, params, 3)
	assert.Equal(t, tensor.Shape{2}, params[ParamHiddenBias].Shape())
}

func TestLatentModel_SeededConstruction(t *testing.T) {
	a := newTestRBM(t, 4, 3, layers.Ising, layers.Ising, 11)
	b := newTestRBM(t, 4, 3, layers.Ising, layers.Ising, 11)

	wa, _ := a.Param(ParamWeights)
	wb, _ := b.Param(ParamWeights)
	assert.Equal(t, wa.Data(), wb.Data())
}

func TestLatentModel_Float32Precision(t *testing.T) {
	cfg := testConfig(5)
	cfg.Precision = tensor.Float32
	m, err := NewRBM(4, 3, layers.Bernoulli, layers.Bernoulli, cfg)
	require.NoError(t, err)

	w, _ := m.Param(ParamWeights)
	for _, x := range w.Data() {
		assert.Equal(t, float64(float32(x)), x)
	}
}

func TestLatentModel_Constraints(t *testing.T) {
	m := newTestRBM(t, 3, 2, layers.Bernoulli, layers.Bernoulli, 1)

	require.NoError(t, m.AddConstraint(ParamWeights, constraints.NonNegative))
	require.NoError(t, m.AddConstraint(ParamHiddenBias, constraints.NonNegative))
	require.NoError(t, m.AddConstraint(ParamHiddenBias, constraints.NonPositive))

	assert.Equal(t, map[string]constraints.Kind{
		ParamWeights:    constraints.NonNegative,
		ParamHiddenBias: constraints.NonPositive,
	}, m.Constraints())

	setParam(t, m, ParamWeights, testWeights...)
	setParam(t, m, ParamHiddenBias, testHiddenBias...)
	m.EnforceConstraints()

	w, _ := m.Param(ParamWeights)
	assert.Equal(t, []float64{0.1, 0, 0.3, 0.4, 0, 0.6}, w.Data())
	b, _ := m.Param(ParamHiddenBias)
	assert.Equal(t, []float64{0, -0.05}, b.Data())

	err := m.AddConstraint("gain", constraints.NonNegative)
	var defErr *DefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.ErrorIs(t, err, ErrUnknownParameter)

	err = m.AddConstraint(ParamWeights, constraints.Kind(7))
	assert.ErrorIs(t, err, constraints.ErrUnknownConstraint)
}

func TestLatentModel_AddConstraints(t *testing.T) {
	m := newTestRBM(t, 3, 2, layers.Bernoulli, layers.Bernoulli, 1)

	err := m.AddConstraints(map[string]constraints.Kind{
		ParamWeights: constraints.ClipNorm,
		"gain":       constraints.NonNegative,
	})
	assert.ErrorIs(t, err, ErrUnknownParameter)
	assert.Empty(t, m.Constraints(), "nothing registered on failure")

	err = m.AddConstraints(map[string]constraints.Kind{
		ParamWeights:     constraints.ClipNorm,
		ParamVisibleBias: constraints.Kind(7),
	})
	assert.ErrorIs(t, err, constraints.ErrUnknownConstraint)
	assert.Empty(t, m.Constraints())

	require.NoError(t, m.AddConstraints(map[string]constraints.Kind{
		ParamWeights:     constraints.ClipNorm,
		ParamVisibleBias: constraints.NonPositive,
	}))
	assert.Len(t, m.Constraints(), 2)
}

func TestLatentModel_Penalties(t *testing.T) {
	m := newTestRBM(t, 3, 2, layers.Bernoulli, layers.Bernoulli, 1)

	require.NoError(t, m.AddWeightDecay(0.1, penalties.L2))
	require.NoError(t, m.AddWeightDecay(0.2, penalties.L1))

	got := m.Penalties()
	require.Len(t, got, 1)
	assert.Equal(t, penalties.L1, got[ParamWeights].Kind())
	assert.Equal(t, 0.2, got[ParamWeights].Strength())

	p, err := penalties.New(penalties.Log, 0.5)
	require.NoError(t, err)
	require.NoError(t, m.AddPenalty(ParamHiddenBias, p))
	assert.Len(t, m.Penalties(), 2)

	err = m.AddPenalty("gain", p)
	assert.ErrorIs(t, err, ErrUnknownParameter)

	err = m.AddWeightDecay(0.1, penalties.Kind(9))
	var defErr *DefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.ErrorIs(t, err, penalties.ErrUnknownPenalty)
}

func TestLatentModel_Initialize(t *testing.T) {
	m := newTestRBM(t, 2, 3, layers.Bernoulli, layers.Bernoulli, 1)
	setParam(t, m, ParamHiddenBias, 1, 1, 1)
	require.NoError(t, m.AddConstraint(ParamVisibleBias, constraints.NonNegative))

	data := mat.NewDense(4, 2, []float64{
		1, 1,
		1, 0,
		0, 0,
		0, 0,
	})
	require.NoError(t, m.Initialize(data, initialize.Hinton))

	// logit(0.5) = 0, logit(0.25) < 0 clamped by the constraint.
	b, _ := m.Param(ParamVisibleBias)
	assert.InDeltaSlice(t, []float64{0, 0}, b.Data(), 1e-9)
	h, _ := m.Param(ParamHiddenBias)
	assert.Equal(t, []float64{0, 0, 0}, h.Data())

	err := m.Initialize(data, initialize.Method(9))
	var cfgErr *initialize.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLatentModel_MarkovChainZeroSteps(t *testing.T) {
	m := newTestRBM(t, 3, 2, layers.Bernoulli, layers.Bernoulli, 1)
	v := mat.NewDense(2, 3, []float64{1, 0, 1, 0, 1, 1})

	out := m.MarkovChain(v, 0, nil)
	assert.True(t, mat.Equal(v, out))

	out.Set(0, 0, 5)
	assert.Equal(t, 1.0, v.At(0, 0), "input must not alias output")
}

func TestLatentModel_MarkovChainComposes(t *testing.T) {
	a := newTestRBM(t, 5, 4, layers.Ising, layers.Ising, 3)
	b := newTestRBM(t, 5, 4, layers.Ising, layers.Ising, 3)
	v := a.Random(mat.NewDense(6, 5, nil))
	// Consume the same draw on b so both streams line up.
	b.Random(mat.NewDense(6, 5, nil))

	beta := vec(0.8)
	whole := a.MarkovChain(v, 5, beta)
	split := b.MarkovChain(b.MarkovChain(v, 2, beta), 3, beta)
	assert.True(t, mat.Equal(whole, split))
}

func TestLatentModel_MarkovChainKeepsInput(t *testing.T) {
	m := newTestRBM(t, 3, 2, layers.Bernoulli, layers.Bernoulli, 1)
	v := mat.NewDense(2, 3, []float64{1, 0, 1, 0, 1, 1})
	before := mat.DenseCopyOf(v)

	m.MarkovChain(v, 4, nil)
	m.MeanFieldIteration(v, 4, nil)
	m.DeterministicIteration(v, 4, nil)
	assert.True(t, mat.Equal(before, v))
}

func TestLatentModel_RandomState(t *testing.T) {
	m := newTestRBM(t, 3, 2, layers.Ising, layers.Bernoulli, 1)
	state := m.Random(mat.NewDense(10, 3, nil))

	r, c := state.Dims()
	assert.Equal(t, 10, r)
	assert.Equal(t, 3, c)
	for _, x := range state.RawMatrix().Data {
		assert.Contains(t, []float64{-1, 1}, x)
	}
}

func TestLatentModel_MeanFieldFixedPoint(t *testing.T) {
	m := newTestRBM(t, 4, 3, layers.Bernoulli, layers.Bernoulli, 2)
	setParam(t, m, ParamVisibleBias, 0.5, -0.5, 1, -1)
	setParam(t, m, ParamHiddenBias, 0.2, -0.2, 0)

	v := mat.NewDense(2, 4, []float64{1, 0, 1, 0, 0, 0, 0, 1})
	fixed := m.MeanFieldIteration(v, 200, nil)
	next := m.MeanFieldStep(fixed, nil)
	assert.True(t, mat.EqualApprox(fixed, next, 1e-10))
}

func TestLatentModel_DeterministicFixedPoint(t *testing.T) {
	m := newTestRBM(t, 4, 3, layers.Bernoulli, layers.Bernoulli, 2)
	setParam(t, m, ParamWeights, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01)
	setParam(t, m, ParamVisibleBias, 2, -2, 2, -2)

	v := m.Random(mat.NewDense(3, 4, nil))
	fixed := m.DeterministicIteration(v, 5, nil)
	for i := 0; i < 3; i++ {
		assert.Equal(t, []float64{1, 0, 1, 0}, fixed.RawRowView(i))
	}
	assert.True(t, mat.Equal(fixed, m.DeterministicStep(fixed, nil)))
}
