package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/latent/internal/layers"
)

func newScenarioRBM(t *testing.T, visKind, hidKind layers.Kind) *RBM {
	t.Helper()
	m := newTestRBM(t, 3, 2, visKind, hidKind, 1)
	setParam(t, m, ParamWeights, testWeights...)
	setParam(t, m, ParamHiddenBias, testHiddenBias...)
	return m
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func TestRBM_HiddenConditionals(t *testing.T) {
	m := newScenarioRBM(t, layers.Bernoulli, layers.Bernoulli)
	v := mat.NewDense(1, 3, []float64{1, 0, 1})

	mean := m.HiddenMean(v, nil)
	assert.InDeltaSlice(t, []float64{sigmoid(-0.35), sigmoid(0.35)}, mean.RawRowView(0), 1e-12)
	assert.Equal(t, []float64{0, 1}, m.HiddenMode(v, nil).RawRowView(0))

	annealed := m.HiddenMean(v, vec(0.5))
	assert.InDeltaSlice(t, []float64{sigmoid(-0.15), sigmoid(0.15)}, annealed.RawRowView(0), 1e-12)
}

func TestRBM_PerExampleBeta(t *testing.T) {
	m := newScenarioRBM(t, layers.Bernoulli, layers.Bernoulli)
	v := mat.NewDense(2, 3, []float64{1, 0, 1, 1, 0, 1})

	mean := m.HiddenMean(v, vec(1, 0.5))
	assert.InDeltaSlice(t, []float64{sigmoid(-0.35), sigmoid(0.35)}, mean.RawRowView(0), 1e-12)
	assert.InDeltaSlice(t, []float64{sigmoid(-0.15), sigmoid(0.15)}, mean.RawRowView(1), 1e-12)

	// beta = 0 leaves only the biases.
	cold := m.HiddenMean(v, vec(0))
	assert.InDeltaSlice(t, []float64{sigmoid(0.05), sigmoid(-0.05)}, cold.RawRowView(0), 1e-12)
}

func TestRBM_SampleHiddenSaturated(t *testing.T) {
	m := newScenarioRBM(t, layers.Bernoulli, layers.Bernoulli)
	w := make([]float64, len(testWeights))
	floats.ScaleTo(w, 100, testWeights)
	setParam(t, m, ParamWeights, w...)

	v := mat.NewDense(3, 3, []float64{1, 0, 1, 1, 0, 1, 1, 0, 1})
	h := m.SampleHidden(v, nil)
	for i := 0; i < 3; i++ {
		assert.Equal(t, []float64{0, 1}, h.RawRowView(i))
	}
}

func TestRBM_SampleHiddenSeeded(t *testing.T) {
	v := mat.NewDense(6, 3, nil)
	for i := 0; i < 6; i++ {
		v.SetRow(i, []float64{1, 0, 1})
	}

	// p = [σ(-0.35), σ(0.35)] ≈ [0.413, 0.587]; seed 42 fixes the draws.
	want := []float64{
		0, 1,
		0, 1,
		0, 0,
		0, 0,
		0, 1,
		0, 1,
	}
	first := newTestRBM(t, 3, 2, layers.Bernoulli, layers.Bernoulli, 42)
	setParam(t, first, ParamWeights, testWeights...)
	setParam(t, first, ParamHiddenBias, testHiddenBias...)
	assert.Equal(t, want, first.SampleHidden(v, nil).RawMatrix().Data)

	second := newTestRBM(t, 3, 2, layers.Bernoulli, layers.Bernoulli, 42)
	setParam(t, second, ParamWeights, testWeights...)
	setParam(t, second, ParamHiddenBias, testHiddenBias...)
	assert.Equal(t, want, second.SampleHidden(v, nil).RawMatrix().Data)
}

func TestRBM_VisibleConditionals(t *testing.T) {
	m := newScenarioRBM(t, layers.Ising, layers.Bernoulli)
	setParam(t, m, ParamVisibleBias, 0.1, 0, -0.1)
	h := mat.NewDense(1, 2, []float64{0, 1})

	// h·Wᵀ picks the second column of W.
	want := []float64{math.Tanh(-0.1), math.Tanh(0.4), math.Tanh(0.5)}
	assert.InDeltaSlice(t, want, m.VisibleMean(h, nil).RawRowView(0), 1e-12)
	assert.Equal(t, []float64{-1, 1, 1}, m.VisibleMode(h, nil).RawRowView(0))

	s := m.SampleVisible(h, nil)
	for _, x := range s.RawRowView(0) {
		assert.Contains(t, []float64{-1, 1}, x)
	}
}

func TestRBM_JointEnergy(t *testing.T) {
	m := newScenarioRBM(t, layers.Bernoulli, layers.Bernoulli)
	v := mat.NewDense(1, 3, []float64{1, 0, 1})
	h := mat.NewDense(1, 2, []float64{0, 1})

	// -(v·W·h) - h·b_h = -0.4 + 0.05
	assert.InDelta(t, -0.35, m.JointEnergy(v, h, nil), 1e-12)
	assert.InDelta(t, -0.15, m.JointEnergy(v, h, vec(0.5)), 1e-12)
}

func TestRBM_JointEnergyBiasOnly(t *testing.T) {
	m := newTestRBM(t, 3, 2, layers.Bernoulli, layers.Bernoulli, 1)
	setParam(t, m, ParamWeights, 0, 0, 0, 0, 0, 0)
	setParam(t, m, ParamVisibleBias, 1, 2, 3)

	v := mat.NewDense(2, 3, []float64{1, 0, 1, 0, 1, 1})
	h := mat.NewDense(2, 2, []float64{1, 1, 0, 1})
	assert.InDelta(t, -4.5, m.JointEnergy(v, h, nil), 1e-12)
	assert.InDelta(t, -4.5, m.JointEnergy(v, h, vec(0.3)), 1e-12, "beta never scales a bias")
}

// bruteFreeEnergy computes -log Σ_h exp(-E(v, h)) for one example.
func bruteFreeEnergy(w, bv, bh, v []float64, states []float64, beta float64) float64 {
	nvis, nhid := len(bv), len(bh)
	var total float64
	h := make([]float64, nhid)
	var walk func(j int)
	walk = func(j int) {
		if j == nhid {
			var e float64
			for i := 0; i < nvis; i++ {
				for k := 0; k < nhid; k++ {
					e -= beta * v[i] * w[i*nhid+k] * h[k]
				}
				e -= v[i] * bv[i]
			}
			e -= floats.Dot(h, bh)
			total += math.Exp(-e)
			return
		}
		for _, s := range states {
			h[j] = s
			walk(j + 1)
		}
	}
	walk(0)
	return -math.Log(total)
}

func TestRBM_MarginalFreeEnergyEnumeration(t *testing.T) {
	w := []float64{0.3, -0.7, 0.5, 0.2}
	bv := []float64{0.1, -0.4}
	bh := []float64{0.25, -0.15}
	rows := []float64{1, 0, 0, 1, 1, 1}

	tests := []struct {
		name    string
		hidKind layers.Kind
		states  []float64
	}{
		{"bernoulli hidden", layers.Bernoulli, []float64{0, 1}},
		{"ising hidden", layers.Ising, []float64{-1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestRBM(t, 2, 2, layers.Bernoulli, tt.hidKind, 1)
			setParam(t, m, ParamWeights, w...)
			setParam(t, m, ParamVisibleBias, bv...)
			setParam(t, m, ParamHiddenBias, bh...)
			v := mat.NewDense(3, 2, rows)

			for _, beta := range []float64{1, 0.4} {
				var b *mat.VecDense
				if beta != 1 {
					b = vec(beta)
				}
				got := m.MarginalFreeEnergy(v, b)
				require.Equal(t, 3, got.Len())
				for n := 0; n < 3; n++ {
					want := bruteFreeEnergy(w, bv, bh, v.RawRowView(n), tt.states, beta)
					assert.InDelta(t, want, got.AtVec(n), 1e-10, "example %d beta %v", n, beta)
				}
			}
		})
	}
}

func TestRBM_Derivatives(t *testing.T) {
	m := newScenarioRBM(t, layers.Bernoulli, layers.Bernoulli)
	setParam(t, m, ParamVisibleBias, 0.2, -0.1, 0.3)
	v := mat.NewDense(3, 3, []float64{1, 0, 1, 0, 1, 1, 1, 1, 0})

	derivs := m.Derivatives(v)
	assertDerivativeShapes(t, m, derivs)

	assert.InDeltaSlice(t, []float64{-2.0 / 3, -2.0 / 3, -2.0 / 3}, derivs[ParamVisibleBias].Data(), 1e-12)

	for _, name := range m.ParamNames() {
		assertMatchesFiniteDifference(t, m, name, derivs[name], func() float64 {
			return mat.Sum(m.MarginalFreeEnergy(v, nil)) / 3
		})
	}
}

func assertDerivativeShapes(t *testing.T, m Model, derivs map[string]*Parameter) {
	t.Helper()
	require.Len(t, derivs, len(m.ParamNames()))
	for _, name := range m.ParamNames() {
		p, err := m.Param(name)
		require.NoError(t, err)
		require.Contains(t, derivs, name)
		assert.Equal(t, p.Shape(), derivs[name].Shape(), name)
		assert.Equal(t, name, derivs[name].Name())
	}
}

// assertMatchesFiniteDifference compares the derivative of objective with
// respect to every entry of the named parameter against central differences.
func assertMatchesFiniteDifference(t *testing.T, m Model, name string, deriv *Parameter, objective func() float64) {
	t.Helper()
	const h = 1e-6

	p, err := m.Param(name)
	require.NoError(t, err)
	base := p.Data()

	for i := range base {
		shifted := append([]float64(nil), base...)
		shifted[i] = base[i] + h
		require.NoError(t, m.SetParam(name, shifted))
		up := objective()

		shifted[i] = base[i] - h
		require.NoError(t, m.SetParam(name, shifted))
		down := objective()

		assert.InDelta(t, (up-down)/(2*h), deriv.Data()[i], 1e-6, "%s[%d]", name, i)
	}
	require.NoError(t, m.SetParam(name, base))
}
