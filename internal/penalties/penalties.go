// Package penalties implements regularization terms attached to model
// parameters.
//
// The models only store penalties; an external optimizer evaluates Value and
// adds Grad to the parameter gradient.
package penalties

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownPenalty is returned when a name matches no penalty.
var ErrUnknownPenalty = errors.New("unknown penalty")

// Kind identifies a regularizer.
type Kind int

// Available penalties.
const (
	L2 Kind = iota
	L1
	Log
)

var kindNames = map[Kind]string{
	L2:  "l2_penalty",
	L1:  "l1_penalty",
	Log: "log_penalty",
}

// String returns the registry name of k.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Parse resolves a penalty name such as "l2_penalty".
func Parse(name string) (Kind, error) {
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			return k, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownPenalty, "%q", name)
}

// Penalty is a regularization term with a fixed strength.
type Penalty interface {
	Kind() Kind
	Strength() float64

	// Value returns the penalty of a parameter.
	Value(data []float64) float64

	// Grad returns the derivative of Value with respect to each entry.
	Grad(data []float64) []float64
}

// New returns the penalty of the given kind.
func New(kind Kind, strength float64) (Penalty, error) {
	if _, ok := kindNames[kind]; !ok {
		return nil, errors.Wrapf(ErrUnknownPenalty, "%v", kind)
	}
	return penalty{kind: kind, strength: strength}, nil
}

type penalty struct {
	kind     Kind
	strength float64
}

func (p penalty) Kind() Kind        { return p.kind }
func (p penalty) Strength() float64 { return p.strength }

func (p penalty) Value(data []float64) float64 {
	var sum float64
	switch p.kind {
	case L2:
		for _, x := range data {
			sum += 0.5 * x * x
		}
	case L1:
		for _, x := range data {
			sum += math.Abs(x)
		}
	case Log:
		for _, x := range data {
			sum += math.Log1p(x * x)
		}
	}
	return p.strength * sum
}

func (p penalty) Grad(data []float64) []float64 {
	grad := make([]float64, len(data))
	for i, x := range data {
		switch p.kind {
		case L2:
			grad[i] = p.strength * x
		case L1:
			grad[i] = p.strength * sign(x)
		case Log:
			grad[i] = p.strength * 2 * x / (1 + x*x)
		}
	}
	return grad
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
