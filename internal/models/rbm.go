package models

import (
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"

	"github.com/born-ml/latent/internal/layers"
	"github.com/born-ml/latent/internal/tensor"
)

// RBM is a restricted Boltzmann machine with binary visible and hidden units.
//
// Energy:
//
//	E(v, h) = -beta·(v·W·h) - v·b_v - h·b_h
//
// See Hinton, "A practical guide to training restricted Boltzmann machines"
// (2010).
type RBM struct {
	*LatentModel
}

// BernoulliRBM is the conventional name for an RBM with Bernoulli units.
type BernoulliRBM = RBM

var _ Model = (*RBM)(nil)

// NewRBM creates an RBM with nvis visible and nhid hidden units.
//
// Each layer is Ising or Bernoulli; any other unit type is a
// *DefinitionError. Weights start at 0.01·N(0, 1), biases at zero.
func NewRBM(nvis, nhid int, visKind, hidKind layers.Kind, cfg Config) (*RBM, error) {
	const name = "RBM"
	if err := requireBinary(name, Visible, visKind); err != nil {
		return nil, err
	}
	if err := requireBinary(name, Hidden, hidKind); err != nil {
		return nil, err
	}

	m := &RBM{}
	base, err := newLatentModel(name, nvis, nhid, visKind, hidKind, cfg, m)
	if err != nil {
		return nil, err
	}
	m.LatentModel = base

	be := base.backend
	base.addParam(ParamWeights, tensor.Shape{nvis, nhid}, base.randn(tensor.Shape{nvis, nhid}, 0.01))
	base.addParam(ParamVisibleBias, tensor.Shape{nvis}, be.Zeros(tensor.Shape{nvis}))
	base.addParam(ParamHiddenBias, tensor.Shape{nhid}, be.Zeros(tensor.Shape{nhid}))

	klog.V(1).Infof("created %s %dx%d (%s visible, %s hidden) on %s", name, nvis, nhid, visKind, hidKind, be.Name())
	return m, nil
}

// hiddenField is beta*(v·W) + b_h.
func (m *RBM) hiddenField(v mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.bilinearField(v, m.param(ParamWeights).Matrix(), m.param(ParamHiddenBias).Vector(), beta)
}

// SampleHidden draws h ~ p(h | v).
func (m *RBM) SampleHidden(v mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.layers[Hidden].SampleState(m.hiddenField(v, beta), nil)
}

// HiddenMean returns E[h | v].
func (m *RBM) HiddenMean(v mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.layers[Hidden].Mean(m.hiddenField(v, beta))
}

// HiddenMode returns the most probable h given v.
func (m *RBM) HiddenMode(v mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.layers[Hidden].Prox(m.hiddenField(v, beta))
}

// SampleVisible draws v ~ p(v | h).
func (m *RBM) SampleVisible(h mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.layers[Visible].SampleState(m.visibleField(h, beta), nil)
}

// VisibleMean returns E[v | h].
func (m *RBM) VisibleMean(h mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.layers[Visible].Mean(m.visibleField(h, beta))
}

// VisibleMode returns the most probable v given h.
func (m *RBM) VisibleMode(h mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.layers[Visible].Prox(m.visibleField(h, beta))
}

// Derivatives returns the positive-phase gradient statistics of the data
// batch v, evaluated without annealing:
//
//	visible_bias: -<v>
//	hidden_bias:  -<E[h|v]>
//	weights:      -<v ⊗ E[h|v]>
//
// where <·> averages over the batch.
func (m *RBM) Derivatives(v mat.Matrix) map[string]*Parameter {
	meanHidden := m.HiddenMean(v, nil)
	n := batchSize(v)

	w := m.backend.Dot(v.T(), meanHidden)
	w.Scale(-1/n, w)

	return map[string]*Parameter{
		ParamVisibleBias: m.negMeanRows(ParamVisibleBias, v),
		ParamHiddenBias:  m.negMeanRows(ParamHiddenBias, meanHidden),
		ParamWeights:     paramFromDense(ParamWeights, w),
	}
}

// JointEnergy returns the batch mean of E(v, h).
func (m *RBM) JointEnergy(v, h mat.Matrix, beta *mat.VecDense) float64 {
	energy := m.backend.BatchDot(v, m.param(ParamWeights).Matrix(), h, 1)
	energy.ScaleVec(-1, energy)
	m.anneal(energy, beta)
	energy.SubVec(energy, m.rowDot(v, m.param(ParamVisibleBias).Vector()))
	energy.SubVec(energy, m.rowDot(h, m.param(ParamHiddenBias).Vector()))
	return m.backend.Mean(energy)
}

// MarginalFreeEnergy returns, per example, the free energy with the hidden
// units summed out:
//
//	F(v) = -Σ_j log Z_j(field_h(v, beta)) - v·b_v
func (m *RBM) MarginalFreeEnergy(v mat.Matrix, beta *mat.VecDense) *mat.VecDense {
	logZ := m.layers[Hidden].LogPartitionFunction(m.hiddenField(v, beta))
	energy := m.backend.SumDim(logZ, 1)
	energy.ScaleVec(-1, energy)
	energy.SubVec(energy, m.rowDot(v, m.param(ParamVisibleBias).Vector()))
	return energy
}
