// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package models provides two-layer energy-based latent-variable models.
//
// # Overview
//
// This package contains:
//   - RBM (alias BernoulliRBM): binary visible and hidden units
//   - Hopfield: binary visible units over fixed Gaussian hidden units
//   - GaussianRBM (alias GRBM): real-valued visible units with a learned
//     per-unit log-variance
//
// Every model shares one engine: Gibbs sampling chains, mean-field and
// deterministic relaxations, parameter constraints and penalties, and
// data-driven initialization.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/latent/models"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    cfg := models.DefaultConfig()
//	    cfg.Seed = 42
//
//	    rbm, err := models.NewRBM(784, 128, models.Bernoulli, models.Bernoulli, cfg)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := rbm.Initialize(data, models.Hinton); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Negative phase: 10 Gibbs steps from the data.
//	    fantasy := rbm.MarkovChain(data, 10, nil)
//	    free := rbm.MarginalFreeEnergy(fantasy, nil)
//	}
//
// # Annealing
//
// Conditional and energy operations take an optional inverse temperature
// beta: a vector of length 1 or batch size. It scales the bilinear
// visible-hidden coupling only; biases are never annealed. nil means beta = 1.
//
// # Statistics
//
// Derivatives returns the positive-phase statistics of a data batch, one per
// trainable parameter. A contrastive-divergence trainer subtracts the same
// statistics evaluated on fantasy particles. Penalties are stored on the
// model for the optimizer to evaluate.
//
// # Thread Safety
//
// Models are not safe for concurrent use: sampling advances a shared random
// stream and parameters are updated in place.
package models
