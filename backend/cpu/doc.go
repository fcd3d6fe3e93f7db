// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend built on gonum.
//
// # Overview
//
// This package implements the tensor primitives with:
//   - Pure Go implementation (no CGO)
//   - gonum BLAS-backed matrix products
//   - Batch-dimension parallelism for the per-example contractions
//   - Float64 storage with optional Float32 rounding of constructed values
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/latent/backend/cpu"
//	    "github.com/born-ml/latent/models"
//	)
//
//	func main() {
//	    cfg := models.DefaultConfig()
//	    cfg.Backend = cpu.New()
//	    rbm, err := models.NewRBM(784, 128, models.Bernoulli, models.Bernoulli, cfg)
//	}
//
// # Thread Safety
//
// The backend is safe for concurrent use: Randn draws are guarded by a mutex
// and every other primitive returns fresh storage.
package cpu
