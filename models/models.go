// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package models

import (
	"github.com/born-ml/latent/internal/constraints"
	"github.com/born-ml/latent/internal/initialize"
	"github.com/born-ml/latent/internal/layers"
	internalmodels "github.com/born-ml/latent/internal/models"
	"github.com/born-ml/latent/internal/penalties"
)

// Model is the operation set shared by every variant.
type Model = internalmodels.Model

// Config configures model construction.
type Config = internalmodels.Config

// DefaultConfig returns a randomly seeded float64 configuration.
func DefaultConfig() Config {
	return internalmodels.DefaultConfig()
}

// Parameter is a named, fixed-shape model tensor.
type Parameter = internalmodels.Parameter

// Role names one of the two layers of a model.
type Role = internalmodels.Role

// Layer roles.
const (
	Visible = internalmodels.Visible
	Hidden  = internalmodels.Hidden
)

// Parameter names.
const (
	ParamWeights      = internalmodels.ParamWeights
	ParamVisibleBias  = internalmodels.ParamVisibleBias
	ParamHiddenBias   = internalmodels.ParamHiddenBias
	ParamVisibleScale = internalmodels.ParamVisibleScale
)

// Errors

// DefinitionError reports a model that cannot be built or extended.
type DefinitionError = internalmodels.DefinitionError

// ConfigurationError reports an unknown initialization method.
type ConfigurationError = initialize.ConfigurationError

// ErrUnknownParameter is returned when a name matches no parameter.
var ErrUnknownParameter = internalmodels.ErrUnknownParameter

// Unit types

// UnitKind identifies a layer's unit distribution.
type UnitKind = layers.Kind

// Layer is the capability set of a unit layer.
type Layer = layers.Layer

// Supported unit types.
const (
	Bernoulli = layers.Bernoulli
	Ising     = layers.Ising
	Gaussian  = layers.Gaussian
)

// ParseUnitKind resolves a unit-type tag such as "ising".
func ParseUnitKind(name string) (UnitKind, error) {
	return internalmodels.ParseUnitKind(name)
}

// Constraints

// Constraint identifies a parameter projection.
type Constraint = constraints.Kind

// Available constraints.
const (
	NonNegative = constraints.NonNegative
	NonPositive = constraints.NonPositive
	ClipNorm    = constraints.ClipNorm
)

// ParseConstraint resolves a constraint name such as "non_negative".
func ParseConstraint(name string) (Constraint, error) {
	return constraints.Parse(name)
}

// Penalties

// Penalty is a regularization term with a fixed strength.
type Penalty = penalties.Penalty

// PenaltyKind identifies a regularizer.
type PenaltyKind = penalties.Kind

// Available penalties.
const (
	L2Penalty  = penalties.L2
	L1Penalty  = penalties.L1
	LogPenalty = penalties.Log
)

// NewPenalty returns the penalty of the given kind and strength.
func NewPenalty(kind PenaltyKind, strength float64) (Penalty, error) {
	return penalties.New(kind, strength)
}

// Initialization

// InitMethod identifies an initialization heuristic.
type InitMethod = initialize.Method

// Available initialization methods.
const (
	Hinton       = initialize.Hinton
	GlorotNormal = initialize.GlorotNormal
)

// ParseInitMethod resolves a method name such as "hinton", failing with a
// *ConfigurationError.
func ParseInitMethod(name string) (InitMethod, error) {
	return initialize.Parse(name)
}

// Variants

// RBM is a restricted Boltzmann machine with binary layers.
type RBM = internalmodels.RBM

// BernoulliRBM is an RBM, usually with Bernoulli units on both layers.
type BernoulliRBM = internalmodels.BernoulliRBM

// NewRBM creates an RBM with nvis visible and nhid hidden units.
//
// Example:
//
//	rbm, err := models.NewRBM(784, 128, models.Bernoulli, models.Bernoulli, models.DefaultConfig())
func NewRBM(nvis, nhid int, visKind, hidKind UnitKind, cfg Config) (*RBM, error) {
	return internalmodels.NewRBM(nvis, nhid, visKind, hidKind, cfg)
}

// Hopfield is an associative-memory model with fixed Gaussian hidden units.
type Hopfield = internalmodels.Hopfield

// NewHopfield creates a Hopfield model with nvis visible and nhid hidden
// units.
//
// Example:
//
//	hop, err := models.NewHopfield(100, 10, models.Ising, models.DefaultConfig())
func NewHopfield(nvis, nhid int, visKind UnitKind, cfg Config) (*Hopfield, error) {
	return internalmodels.NewHopfield(nvis, nhid, visKind, cfg)
}

// GaussianRBM is an RBM with Gaussian visible units.
type GaussianRBM = internalmodels.GaussianRBM

// GRBM is the short name of GaussianRBM.
type GRBM = internalmodels.GRBM

// NewGaussianRBM creates a Gaussian-visible RBM with nvis visible and nhid
// hidden units.
//
// Example:
//
//	grbm, err := models.NewGaussianRBM(64, 32, models.Bernoulli, models.DefaultConfig())
func NewGaussianRBM(nvis, nhid int, hidKind UnitKind, cfg Config) (*GaussianRBM, error) {
	return internalmodels.NewGaussianRBM(nvis, nhid, hidKind, cfg)
}
