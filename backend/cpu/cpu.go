// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/latent/internal/backend/cpu"
	"github.com/born-ml/latent/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Config configures precision, parallelism and the Randn seed.
type Config = internalcpu.Config

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new randomly seeded CPU backend.
//
// Example:
//
//	backend := cpu.New()
//	w := mat.NewDense(3, 2, backend.Randn(tensor.Shape{3, 2}))
func New() *Backend {
	return internalcpu.New()
}

// DefaultConfig returns a float64, parallel, randomly seeded configuration.
func DefaultConfig() Config {
	return internalcpu.DefaultConfig()
}

// NewWithConfig creates a CPU backend from cfg.
func NewWithConfig(cfg Config) *Backend {
	return internalcpu.NewWithConfig(cfg)
}
