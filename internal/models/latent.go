package models

import (
	"fmt"
	"slices"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"

	"github.com/born-ml/latent/internal/backend"
	"github.com/born-ml/latent/internal/backend/cpu"
	"github.com/born-ml/latent/internal/constraints"
	"github.com/born-ml/latent/internal/initialize"
	"github.com/born-ml/latent/internal/layers"
	"github.com/born-ml/latent/internal/penalties"
	"github.com/born-ml/latent/internal/tensor"
)

// conditionals are the per-model primitives the engine iterates.
type conditionals interface {
	SampleHidden(v mat.Matrix, beta *mat.VecDense) *mat.Dense
	SampleVisible(h mat.Matrix, beta *mat.VecDense) *mat.Dense
	HiddenMean(v mat.Matrix, beta *mat.VecDense) *mat.Dense
	VisibleMean(h mat.Matrix, beta *mat.VecDense) *mat.Dense
	HiddenMode(v mat.Matrix, beta *mat.VecDense) *mat.Dense
	VisibleMode(h mat.Matrix, beta *mat.VecDense) *mat.Dense
}

type constraintEntry struct {
	param string
	kind  constraints.Kind
}

// LatentModel is the model-independent part of a two-layer network.
//
// It owns the layers, the parameters, the constraints and the penalties, and
// drives Markov chains and relaxations through the conditionals of the
// concrete model that embeds it. Parameters are exclusively owned: reads
// return copies and writes go through SetParam.
//
// A LatentModel is not safe for concurrent use.
type LatentModel struct {
	name       string
	nvis, nhid int

	backend backend.Backend
	layers  map[Role]layers.Layer

	params      []*Parameter // declaration order
	constraints []constraintEntry
	penalty     map[string]penalties.Penalty

	self conditionals
}

func newLatentModel(name string, nvis, nhid int, visKind, hidKind layers.Kind, cfg Config, self conditionals) (*LatentModel, error) {
	if nvis <= 0 {
		return nil, &DefinitionError{Model: name, Field: "nvis", Reason: fmt.Sprintf("must be > 0, got %d", nvis)}
	}
	if nhid <= 0 {
		return nil, &DefinitionError{Model: name, Field: "nhid", Reason: fmt.Sprintf("must be > 0, got %d", nhid)}
	}

	be := cfg.Backend
	if be == nil {
		backendSeed := cfg.Seed
		if backendSeed >= 0 {
			backendSeed++
		}
		be = cpu.NewWithConfig(cpu.Config{Precision: cfg.Precision, Parallel: cfg.Parallel, Seed: backendSeed})
	}

	// Both layers draw from one stream so a seeded chain is reproducible.
	rng := cpu.NewRand(cfg.Seed)
	vis, err := layers.New(visKind, be, rng)
	if err != nil {
		return nil, &DefinitionError{Model: name, Field: string(Visible), Reason: "unsupported unit type", Err: err}
	}
	hid, err := layers.New(hidKind, be, rng)
	if err != nil {
		return nil, &DefinitionError{Model: name, Field: string(Hidden), Reason: "unsupported unit type", Err: err}
	}

	return &LatentModel{
		name:    name,
		nvis:    nvis,
		nhid:    nhid,
		backend: be,
		layers:  map[Role]layers.Layer{Visible: vis, Hidden: hid},
		penalty: make(map[string]penalties.Penalty),
		self:    self,
	}, nil
}

// requireBinary rejects unit types other than Bernoulli and Ising.
func requireBinary(model string, role Role, kind layers.Kind) error {
	if kind == layers.Bernoulli || kind == layers.Ising {
		return nil
	}
	return &DefinitionError{
		Model:  model,
		Field:  string(role),
		Reason: fmt.Sprintf("unit type %v not supported (want ising or bernoulli)", kind),
		Err:    layers.ErrUnknownKind,
	}
}

// addParam declares a parameter; declaration order is the order of
// ParamNames.
func (m *LatentModel) addParam(name string, shape tensor.Shape, data []float64) {
	m.params = append(m.params, NewParameter(name, shape, data))
}

// randn draws shape values from N(0, std²) at the backend precision.
func (m *LatentModel) randn(shape tensor.Shape, std float64) []float64 {
	data := m.backend.Randn(shape)
	floats.Scale(std, data)
	m.backend.Precision().RoundAll(data)
	return data
}

// param returns the live parameter; the name must be declared.
func (m *LatentModel) param(name string) *Parameter {
	for _, p := range m.params {
		if p.name == name {
			return p
		}
	}
	panic(fmt.Sprintf("%s: parameter %q not declared", m.name, name))
}

// NumVisible returns the number of visible units.
func (m *LatentModel) NumVisible() int { return m.nvis }

// NumHidden returns the number of hidden units.
func (m *LatentModel) NumHidden() int { return m.nhid }

// Layer returns the layer playing role.
func (m *LatentModel) Layer(role Role) layers.Layer { return m.layers[role] }

// VisibleKind returns the unit type of the visible layer.
func (m *LatentModel) VisibleKind() layers.Kind { return m.layers[Visible].Kind() }

// Backend returns the tensor backend.
func (m *LatentModel) Backend() backend.Backend { return m.backend }

// ParamNames lists the trainable parameters in declaration order.
func (m *LatentModel) ParamNames() []string {
	names := make([]string, len(m.params))
	for i, p := range m.params {
		names[i] = p.name
	}
	return names
}

// HasParam reports whether name is a trainable parameter.
func (m *LatentModel) HasParam(name string) bool {
	return slices.Contains(m.ParamNames(), name)
}

// Param returns a copy of the named parameter.
func (m *LatentModel) Param(name string) (*Parameter, error) {
	if !m.HasParam(name) {
		return nil, errors.Wrapf(ErrUnknownParameter, "%s: %q", m.name, name)
	}
	return m.param(name).Clone(), nil
}

// Params returns copies of all parameters keyed by name.
func (m *LatentModel) Params() map[string]*Parameter {
	out := make(map[string]*Parameter, len(m.params))
	for _, p := range m.params {
		out[p.name] = p.Clone()
	}
	return out
}

// SetParam overwrites the named parameter with a copy of data.
//
// The shape of a parameter never changes, so data must hold exactly as many
// values as the parameter. Constraints are not applied; call
// EnforceConstraints after the last write.
func (m *LatentModel) SetParam(name string, data []float64) error {
	if !m.HasParam(name) {
		return errors.Wrapf(ErrUnknownParameter, "%s: %q", m.name, name)
	}
	p := m.param(name)
	if len(data) != len(p.data) {
		return &tensor.ShapeError{Op: "set_param " + name, Got: tensor.Shape{len(data)}, Want: p.shape.Clone()}
	}
	copy(p.data, data)
	return nil
}

// Initialize sets the parameters from a representative data batch using
// method, then applies the registered constraints.
func (m *LatentModel) Initialize(data mat.Matrix, method initialize.Method) error {
	if err := initialize.Run(method, data, m); err != nil {
		return err
	}
	m.EnforceConstraints()
	return nil
}

// AddConstraint registers a projection for param. Registering a second
// constraint for the same parameter replaces the first in place.
func (m *LatentModel) AddConstraint(param string, kind constraints.Kind) error {
	if !m.HasParam(param) {
		return &DefinitionError{Model: m.name, Field: "constraints", Reason: fmt.Sprintf("no parameter %q", param), Err: ErrUnknownParameter}
	}
	if !kind.Valid() {
		return &DefinitionError{Model: m.name, Field: "constraints", Reason: fmt.Sprintf("invalid constraint %v", kind), Err: constraints.ErrUnknownConstraint}
	}
	for i := range m.constraints {
		if m.constraints[i].param == param {
			m.constraints[i].kind = kind
			return nil
		}
	}
	m.constraints = append(m.constraints, constraintEntry{param: param, kind: kind})
	return nil
}

// AddConstraints registers several constraints. Every key is validated before
// any is registered; keys are registered in sorted order.
func (m *LatentModel) AddConstraints(cons map[string]constraints.Kind) error {
	keys := make([]string, 0, len(cons))
	for k := range cons {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !m.HasParam(k) {
			return &DefinitionError{Model: m.name, Field: "constraints", Reason: fmt.Sprintf("no parameter %q", k), Err: ErrUnknownParameter}
		}
		if !cons[k].Valid() {
			return &DefinitionError{Model: m.name, Field: "constraints", Reason: fmt.Sprintf("invalid constraint %v", cons[k]), Err: constraints.ErrUnknownConstraint}
		}
	}
	for _, k := range keys {
		if err := m.AddConstraint(k, cons[k]); err != nil {
			return err
		}
	}
	return nil
}

// Constraints returns the registered constraints keyed by parameter.
func (m *LatentModel) Constraints() map[string]constraints.Kind {
	out := make(map[string]constraints.Kind, len(m.constraints))
	for _, c := range m.constraints {
		out[c.param] = c.kind
	}
	return out
}

// EnforceConstraints projects every constrained parameter in place, in
// registration order.
func (m *LatentModel) EnforceConstraints() {
	for _, c := range m.constraints {
		p := m.param(c.param)
		c.kind.Apply(p.data, p.shape)
		klog.V(1).Infof("%s: applied %s to %s", m.name, c.kind, c.param)
	}
}

// AddPenalty attaches a regularization term to param, replacing any previous
// penalty on it.
func (m *LatentModel) AddPenalty(param string, p penalties.Penalty) error {
	if !m.HasParam(param) {
		return &DefinitionError{Model: m.name, Field: "penalty", Reason: fmt.Sprintf("no parameter %q", param), Err: ErrUnknownParameter}
	}
	m.penalty[param] = p
	return nil
}

// AddWeightDecay attaches a penalty of the given strength to the weights,
// replacing any previous weight penalty.
func (m *LatentModel) AddWeightDecay(strength float64, kind penalties.Kind) error {
	p, err := penalties.New(kind, strength)
	if err != nil {
		return &DefinitionError{Model: m.name, Field: "penalty", Reason: "invalid weight decay", Err: err}
	}
	return m.AddPenalty(ParamWeights, p)
}

// Penalties returns the registered penalties keyed by parameter.
func (m *LatentModel) Penalties() map[string]penalties.Penalty {
	out := make(map[string]penalties.Penalty, len(m.penalty))
	for k, v := range m.penalty {
		out[k] = v
	}
	return out
}

// Random returns an uninformed visible state shaped like visible.
func (m *LatentModel) Random(visible mat.Matrix) *mat.Dense {
	return m.layers[Visible].Random(visible)
}

// MCStep performs one Gibbs step v -> h -> v'.
func (m *LatentModel) MCStep(v mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.self.SampleVisible(m.self.SampleHidden(v, beta), beta)
}

// MarkovChain applies MCStep steps times: v -> h -> v_1 -> ... -> v_steps.
// The input is never modified; steps = 0 returns a copy of v.
func (m *LatentModel) MarkovChain(v mat.Matrix, steps int, beta *mat.VecDense) *mat.Dense {
	return m.iterate("markov_chain", v, steps, beta, m.MCStep)
}

// MeanFieldStep replaces sampling with conditional expectations:
// v -> E[h|v] -> E[v|h].
func (m *LatentModel) MeanFieldStep(v mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.self.VisibleMean(m.self.HiddenMean(v, beta), beta)
}

// MeanFieldIteration applies MeanFieldStep steps times.
func (m *LatentModel) MeanFieldIteration(v mat.Matrix, steps int, beta *mat.VecDense) *mat.Dense {
	return m.iterate("mean_field_iteration", v, steps, beta, m.MeanFieldStep)
}

// DeterministicStep replaces sampling with the most probable state of each
// conditional.
func (m *LatentModel) DeterministicStep(v mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.self.VisibleMode(m.self.HiddenMode(v, beta), beta)
}

// DeterministicIteration applies DeterministicStep steps times.
func (m *LatentModel) DeterministicIteration(v mat.Matrix, steps int, beta *mat.VecDense) *mat.Dense {
	return m.iterate("deterministic_iteration", v, steps, beta, m.DeterministicStep)
}

func (m *LatentModel) iterate(op string, v mat.Matrix, steps int, beta *mat.VecDense, step func(mat.Matrix, *mat.VecDense) *mat.Dense) *mat.Dense {
	state := m.backend.Clone(v)
	for t := 0; t < steps; t++ {
		state = step(state, beta)
		if klogV := klog.V(2); klogV.Enabled() {
			klogV.Infof("%s: %s step %d/%d mean state %.4f", m.name, op, t+1, steps, m.backend.Mean(state))
		}
	}
	return state
}

// bilinearField computes beta*(x·w) + bias, the field every model feeds to a
// layer. beta scales the data-dependent term only.
func (m *LatentModel) bilinearField(x, w mat.Matrix, bias mat.Vector, beta *mat.VecDense) *mat.Dense {
	result := m.backend.Dot(x, w)
	if beta != nil {
		m.backend.ScaleRows(result, beta)
	}
	m.backend.AddRow(result, bias)
	return result
}

// visibleField is beta*(h·Wᵀ) + visible_bias, shared by every variant.
func (m *LatentModel) visibleField(h mat.Matrix, beta *mat.VecDense) *mat.Dense {
	return m.bilinearField(h, m.param(ParamWeights).Matrix().T(), m.param(ParamVisibleBias).Vector(), beta)
}

// rowDot returns x_n·v for every row of x.
func (m *LatentModel) rowDot(x mat.Matrix, v *mat.VecDense) *mat.VecDense {
	r, _ := x.Dims()
	return mat.NewVecDense(r, m.backend.Dot(x, v).RawMatrix().Data)
}

// anneal scales per-example energies by beta, if given.
func (m *LatentModel) anneal(energy *mat.VecDense, beta *mat.VecDense) {
	if beta != nil {
		m.backend.ScaleElems(energy, beta)
	}
}

// negMeanRows returns -mean over the batch of x as a parameter-shaped vector.
func (m *LatentModel) negMeanRows(name string, x mat.Matrix) *Parameter {
	mean := m.backend.MeanDim(x, 0)
	mean.ScaleVec(-1, mean)
	return paramFromVec(name, mean)
}

// centeredSquares returns (x - bias)² element-wise.
func (m *LatentModel) centeredSquares(x mat.Matrix, bias *mat.VecDense) *mat.Dense {
	neg := mat.NewVecDense(bias.Len(), nil)
	neg.ScaleVec(-1, bias)
	centered := m.backend.Clone(x)
	m.backend.AddRow(centered, neg)
	return m.backend.Apply(centered, func(d float64) float64 { return d * d })
}

func batchSize(x mat.Matrix) float64 {
	r, _ := x.Dims()
	return float64(r)
}

var _ initialize.Target = (*LatentModel)(nil)
