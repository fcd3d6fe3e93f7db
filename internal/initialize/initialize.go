// Package initialize sets model parameters from a representative data batch
// before training.
//
// Methods are a closed set resolved up front: an unknown name fails with a
// *ConfigurationError before anything is touched.
package initialize

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"k8s.io/klog/v2"

	"github.com/born-ml/latent/internal/backend"
	"github.com/born-ml/latent/internal/layers"
	"github.com/born-ml/latent/internal/tensor"
)

// Parameter names written by the initializers.
const (
	weights      = "weights"
	visibleBias  = "visible_bias"
	visibleScale = "visible_scale"
	hiddenBias   = "hidden_bias"
)

// ErrEmptyBatch is returned when the data batch has no rows.
var ErrEmptyBatch = errors.New("empty data batch")

// clipEpsilon keeps data statistics away from the saturated ends of the
// logit/atanh links and from zero variance.
const clipEpsilon = 1e-6

// Method identifies an initialization heuristic.
type Method int

// Available methods.
const (
	Hinton Method = iota
	GlorotNormal
)

var methodNames = map[Method]string{
	Hinton:       "hinton",
	GlorotNormal: "glorot_normal",
}

// String returns the registry name of m.
func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ConfigurationError reports an initialization method that does not exist.
type ConfigurationError struct {
	Method string // Requested method name
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	known := make([]string, 0, len(methodNames))
	for _, m := range []Method{Hinton, GlorotNormal} {
		known = append(known, m.String())
	}
	return fmt.Sprintf("%q is not a valid initialization method for latent models (known: %s)",
		e.Method, strings.Join(known, ", "))
}

// Parse resolves a method name such as "hinton".
func Parse(name string) (Method, error) {
	for m, n := range methodNames {
		if strings.EqualFold(n, name) {
			return m, nil
		}
	}
	return 0, &ConfigurationError{Method: name}
}

// Target is the view of a model that initializers write into.
type Target interface {
	NumVisible() int
	NumHidden() int
	VisibleKind() layers.Kind
	HasParam(name string) bool
	SetParam(name string, data []float64) error
	Backend() backend.Backend
}

// Func mutates the parameters of target in place from a data batch.
type Func func(data mat.Matrix, target Target) error

// Lookup returns the function for m.
func Lookup(m Method) (Func, error) {
	switch m {
	case Hinton:
		return hinton, nil
	case GlorotNormal:
		return glorotNormal, nil
	default:
		return nil, &ConfigurationError{Method: m.String()}
	}
}

// Run applies method m to target.
func Run(m Method, data mat.Matrix, target Target) error {
	fn, err := Lookup(m)
	if err != nil {
		return err
	}
	klog.V(1).Infof("initializing %dx%d model with %s", target.NumVisible(), target.NumHidden(), m)
	return fn(data, target)
}

// hinton follows "A practical guide to training restricted Boltzmann
// machines": small random weights, visible biases from the data marginals.
func hinton(data mat.Matrix, target Target) error {
	return initParams(data, target, 0.01)
}

// glorotNormal draws weights from N(0, 2/(nvis+nhid)).
func glorotNormal(data mat.Matrix, target Target) error {
	std := math.Sqrt(2 / float64(target.NumVisible()+target.NumHidden()))
	return initParams(data, target, std)
}

func initParams(data mat.Matrix, target Target, weightStd float64) error {
	nvis, nhid := target.NumVisible(), target.NumHidden()
	rows, cols := data.Dims()
	if cols != nvis {
		return errors.Wrap(&tensor.ShapeError{Op: "initialize", Got: tensor.Shape{rows, cols}, Want: tensor.Shape{-1, nvis}},
			"data does not match the visible layer")
	}
	if rows == 0 {
		return errors.Wrapf(ErrEmptyBatch, "initialize %d visible units", nvis)
	}

	be := target.Backend()
	w := be.Randn(tensor.Shape{nvis, nhid})
	floats.Scale(weightStd, w)
	be.Precision().RoundAll(w)
	if err := target.SetParam(weights, w); err != nil {
		return err
	}

	means := make([]float64, nvis)
	variances := make([]float64, nvis)
	col := make([]float64, rows)
	for j := 0; j < nvis; j++ {
		mat.Col(col, j, data)
		means[j], variances[j] = stat.PopMeanVariance(col, nil)
	}

	bias, clipped := visibleBiasFromMeans(target.VisibleKind(), means)
	if clipped > 0 {
		klog.Warningf("initialize: clipped %d of %d saturated visible marginals", clipped, nvis)
	}
	be.Precision().RoundAll(bias)
	if err := target.SetParam(visibleBias, bias); err != nil {
		return err
	}

	if target.HasParam(visibleScale) {
		logVar := make([]float64, nvis)
		for j, v := range variances {
			logVar[j] = math.Log(v + clipEpsilon)
		}
		be.Precision().RoundAll(logVar)
		if err := target.SetParam(visibleScale, logVar); err != nil {
			return err
		}
	}

	if target.HasParam(hiddenBias) {
		if err := target.SetParam(hiddenBias, be.Zeros(tensor.Shape{nhid})); err != nil {
			return err
		}
	}
	return nil
}

// visibleBiasFromMeans inverts the visible layer's mean function at the data
// marginals. It returns the biases and how many marginals had to be clipped.
func visibleBiasFromMeans(kind layers.Kind, means []float64) ([]float64, int) {
	bias := make([]float64, len(means))
	clipped := 0
	clip := func(x, lo, hi float64) float64 {
		if x < lo {
			clipped++
			return lo
		}
		if x > hi {
			clipped++
			return hi
		}
		return x
	}

	for j, m := range means {
		switch kind {
		case layers.Bernoulli:
			p := clip(m, clipEpsilon, 1-clipEpsilon)
			bias[j] = math.Log(p / (1 - p))
		case layers.Ising:
			bias[j] = math.Atanh(clip(m, -1+clipEpsilon, 1-clipEpsilon))
		default:
			bias[j] = m
		}
	}
	return bias, clipped
}
