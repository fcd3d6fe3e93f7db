package models

import (
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"

	"github.com/born-ml/latent/internal/layers"
	"github.com/born-ml/latent/internal/tensor"
)

// Hopfield is an associative-memory model: binary visible units coupled to
// Gaussian hidden units whose location and scale are fixed.
//
// Summing out the hidden units leaves the classic Hopfield energy over the
// visible layer with coupling matrix J = W·Wᵀ.
//
// See Hopfield, "Neural networks and physical systems with emergent
// collective computational abilities", PNAS 79.8 (1982).
type Hopfield struct {
	*LatentModel

	// Not trainable: the hidden layer is a fixed continuous readout.
	hiddenBias  *mat.VecDense
	hiddenScale *mat.VecDense
}

var _ Model = (*Hopfield)(nil)

// NewHopfield creates a Hopfield model with nvis visible and nhid hidden
// units. The visible layer is Ising or Bernoulli. Weights start at
// 0.1·N(0, 1), the visible bias at zero.
func NewHopfield(nvis, nhid int, visKind layers.Kind, cfg Config) (*Hopfield, error) {
	const name = "Hopfield"
	if err := requireBinary(name, Visible, visKind); err != nil {
		return nil, err
	}

	m := &Hopfield{}
	base, err := newLatentModel(name, nvis, nhid, visKind, layers.Gaussian, cfg, m)
	if err != nil {
		return nil, err
	}
	m.LatentModel = base

	be := base.backend
	base.addParam(ParamWeights, tensor.Shape{nvis, nhid}, base.randn(tensor.Shape{nvis, nhid}, 0.1))
	base.addParam(ParamVisibleBias, tensor.Shape{nvis}, be.Zeros(tensor.Shape{nvis}))

	m.hiddenBias = mat.NewVecDense(nhid, be.Zeros(tensor.Shape{nhid}))
	m.hiddenScale = mat.NewVecDense(nhid, be.Ones(tensor.Shape{nhid}))

	klog.V(1).Infof("created %s %dx%d (%s visible) on %s", name, nvis, nhid, visKind, be.Name())
	return m, nil
}

// hiddenLoc is beta*(v·W) + hidden_bias.
func (m *Hopfield) hiddenLoc(v mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.bilinearField(v, m.param(ParamWeights).Matrix(), m.hiddenBias, beta)
}

// SampleHidden draws h ~ N(loc_h(v), hidden_scale²).
func (m *Hopfield) SampleHidden(v mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.layers[Hidden].SampleState(m.hiddenLoc(v, beta), m.hiddenScale)
}

// HiddenMean returns the hidden location.
func (m *Hopfield) HiddenMean(v mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.layers[Hidden].Mean(m.hiddenLoc(v, beta))
}

// HiddenMode returns the hidden location.
func (m *Hopfield) HiddenMode(v mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.layers[Hidden].Prox(m.hiddenLoc(v, beta))
}

// SampleVisible draws v ~ p(v | h).
func (m *Hopfield) SampleVisible(h mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.layers[Visible].SampleState(m.visibleField(h, beta), nil)
}

// VisibleMean returns E[v | h].
func (m *Hopfield) VisibleMean(h mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.layers[Visible].Mean(m.visibleField(h, beta))
}

// VisibleMode returns the most probable v given h.
func (m *Hopfield) VisibleMode(h mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.layers[Visible].Prox(m.visibleField(h, beta))
}

// Derivatives returns the positive-phase statistics of the trainable
// parameters, visible_bias and weights. The weight statistic is the batch
// average of the per-example outer products v_n ⊗ E[h|v_n].
func (m *Hopfield) Derivatives(v mat.Matrix) map[string]*Parameter {
	meanHidden := m.HiddenMean(v, nil)

	w := m.backend.BatchOuter(v, meanHidden)
	w.Scale(-1/batchSize(v), w)

	return map[string]*Parameter{
		ParamVisibleBias: m.negMeanRows(ParamVisibleBias, v),
		ParamWeights:     paramFromDense(ParamWeights, w),
	}
}

// JointEnergy returns the batch mean of
//
//	E(v, h) = -beta·(v·W·h) - v·b_v - Σ_j h_j²
func (m *Hopfield) JointEnergy(v, h mat.Matrix, beta *mat.VecDense) float64 {
	energy := m.backend.BatchDot(v, m.param(ParamWeights).Matrix(), h, 1)
	energy.ScaleVec(-1, energy)
	m.anneal(energy, beta)
	energy.SubVec(energy, m.rowDot(v, m.param(ParamVisibleBias).Vector()))

	squares := m.backend.Apply(h, func(x float64) float64 { return x * x })
	energy.SubVec(energy, m.backend.SumDim(squares, 1))
	return m.backend.Mean(energy)
}

// MarginalFreeEnergy returns, per example, the closed-form Hopfield energy
//
//	F(v) = -beta²·(v·J·v) - v·b_v,  J = W·Wᵀ
func (m *Hopfield) MarginalFreeEnergy(v mat.Matrix, beta *mat.VecDense) *mat.VecDense {
	w := m.param(ParamWeights).Matrix()
	j := m.backend.Dot(w, w.T())

	energy := m.backend.BatchDot(v, j, v, 1)
	energy.ScaleVec(-1, energy)
	if beta != nil {
		betaSq := mat.NewVecDense(beta.Len(), nil)
		betaSq.MulElemVec(beta, beta)
		m.anneal(energy, betaSq)
	}
	energy.SubVec(energy, m.rowDot(v, m.param(ParamVisibleBias).Vector()))
	return energy
}
