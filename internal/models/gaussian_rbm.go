package models

import (
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"

	"github.com/born-ml/latent/internal/layers"
	"github.com/born-ml/latent/internal/tensor"
)

// GaussianRBM is an RBM with Gaussian visible units.
//
// Each visible unit carries a learned log-variance visible_scale; with
// σ² = exp(visible_scale):
//
//	E(v, h) = -beta·((v/σ²)·W·h) + ½·mean_i((v_i - b_v,i)²/σ²_i) - h·b_h
type GaussianRBM struct {
	*LatentModel
}

// GRBM is the short name of GaussianRBM.
type GRBM = GaussianRBM

var _ Model = (*GaussianRBM)(nil)

// NewGaussianRBM creates a Gaussian-visible RBM with nvis visible and nhid
// hidden units. The hidden layer is Ising or Bernoulli. Weights start at
// 0.01·N(0, 1); biases and log-variances at zero.
func NewGaussianRBM(nvis, nhid int, hidKind layers.Kind, cfg Config) (*GaussianRBM, error) {
	const name = "GaussianRBM"
	if err := requireBinary(name, Hidden, hidKind); err != nil {
		return nil, err
	}

	m := &GaussianRBM{}
	base, err := newLatentModel(name, nvis, nhid, layers.Gaussian, hidKind, cfg, m)
	if err != nil {
		return nil, err
	}
	m.LatentModel = base

	be := base.backend
	base.addParam(ParamWeights, tensor.Shape{nvis, nhid}, base.randn(tensor.Shape{nvis, nhid}, 0.01))
	base.addParam(ParamVisibleBias, tensor.Shape{nvis}, be.Zeros(tensor.Shape{nvis}))
	base.addParam(ParamVisibleScale, tensor.Shape{nvis}, be.Zeros(tensor.Shape{nvis}))
	base.addParam(ParamHiddenBias, tensor.Shape{nhid}, be.Zeros(tensor.Shape{nhid}))

	klog.V(1).Infof("created %s %dx%d (%s hidden) on %s", name, nvis, nhid, hidKind, be.Name())
	return m, nil
}

// variance returns exp(visible_scale).
func (m *GaussianRBM) variance() *mat.VecDense {
	return m.backend.Exp(m.param(ParamVisibleScale).Vector(), 1)
}

// stddev returns exp(visible_scale / 2).
func (m *GaussianRBM) stddev() *mat.VecDense {
	return m.backend.Exp(m.param(ParamVisibleScale).Vector(), 0.5)
}

// hiddenField is beta*((v/σ²)·W) + b_h.
func (m *GaussianRBM) hiddenField(v mat.Matrix, beta *mat.VecDense) *mat.Dense {
	scaled := m.backend.DivRow(v, m.variance())
	return m.bilinearField(scaled, m.param(ParamWeights).Matrix(), m.param(ParamHiddenBias).Vector(), beta)
}

// SampleHidden draws h ~ p(h | v).
func (m *GaussianRBM) SampleHidden(v mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.layers[Hidden].SampleState(m.hiddenField(v, beta), nil)
}

// HiddenMean returns E[h | v].
func (m *GaussianRBM) HiddenMean(v mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.layers[Hidden].Mean(m.hiddenField(v, beta))
}

// HiddenMode returns the most probable h given v.
func (m *GaussianRBM) HiddenMode(v mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.layers[Hidden].Prox(m.hiddenField(v, beta))
}

// SampleVisible draws v ~ N(loc_v(h), σ²).
func (m *GaussianRBM) SampleVisible(h mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.layers[Visible].SampleState(m.visibleField(h, beta), m.stddev())
}

// VisibleMean returns the visible location.
func (m *GaussianRBM) VisibleMean(h mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.layers[Visible].Mean(m.visibleField(h, beta))
}

// VisibleMode returns the visible location.
func (m *GaussianRBM) VisibleMode(h mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.layers[Visible].Prox(m.visibleField(h, beta))
}

// Derivatives returns the positive-phase statistics of the data batch v:
//
//	visible_bias:  -<v/σ²>
//	hidden_bias:   -<E[h|v]>
//	weights:       -<(v/σ²) ⊗ E[h|v]>
//	visible_scale: (-½<(v - b_v)²> + <(E[h|v]·Wᵀ) ∘ v>) / σ²
func (m *GaussianRBM) Derivatives(v mat.Matrix) map[string]*Parameter {
	meanHidden := m.HiddenMean(v, nil)
	variance := m.variance()
	scaled := m.backend.DivRow(v, variance)
	n := batchSize(v)

	w := m.backend.Dot(scaled.T(), meanHidden)
	w.Scale(-1/n, w)

	scale := m.backend.MeanDim(m.centeredSquares(v, m.param(ParamVisibleBias).Vector()), 0)
	scale.ScaleVec(-0.5, scale)
	coupling := m.backend.BatchDot(meanHidden, m.param(ParamWeights).Matrix().T(), v, 0)
	scale.AddScaledVec(scale, 1/n, coupling)
	scale.DivElemVec(scale, variance)

	return map[string]*Parameter{
		ParamVisibleBias:  m.negMeanRows(ParamVisibleBias, scaled),
		ParamHiddenBias:   m.negMeanRows(ParamHiddenBias, meanHidden),
		ParamWeights:      paramFromDense(ParamWeights, w),
		ParamVisibleScale: paramFromVec(ParamVisibleScale, scale),
	}
}

// quadratic returns ½·mean_i((v_i - b_v,i)²/σ²_i) per example.
func (m *GaussianRBM) quadratic(v mat.Matrix) *mat.VecDense {
	sq := m.centeredSquares(v, m.param(ParamVisibleBias).Vector())
	q := m.backend.MeanDim(m.backend.DivRow(sq, m.variance()), 1)
	q.ScaleVec(0.5, q)
	return q
}

// JointEnergy returns the batch mean of E(v, h).
func (m *GaussianRBM) JointEnergy(v, h mat.Matrix, beta *mat.VecDense) float64 {
	scaled := m.backend.DivRow(v, m.variance())
	energy := m.backend.BatchDot(scaled, m.param(ParamWeights).Matrix(), h, 1)
	energy.ScaleVec(-1, energy)
	m.anneal(energy, beta)
	energy.AddVec(energy, m.quadratic(v))
	energy.SubVec(energy, m.rowDot(h, m.param(ParamHiddenBias).Vector()))
	return m.backend.Mean(energy)
}

// MarginalFreeEnergy returns, per example, the free energy with the hidden
// units summed out. The log-partition is evaluated at the hidden field of
// the variance-scaled state v/σ²:
//
//	F(v) = ½·mean_i((v_i - b_v,i)²/σ²_i) - Σ_j log Z_j(field_h(v/σ², beta))
func (m *GaussianRBM) MarginalFreeEnergy(v mat.Matrix, beta *mat.VecDense) *mat.VecDense {
	scaled := m.backend.DivRow(v, m.variance())
	logZ := m.layers[Hidden].LogPartitionFunction(m.hiddenField(scaled, beta))
	energy := m.quadratic(v)
	energy.SubVec(energy, m.backend.SumDim(logZ, 1))
	return energy
}
