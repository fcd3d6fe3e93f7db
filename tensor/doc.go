// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor describes the dense batches the latent models operate on.
//
// # Overview
//
// Storage is gonum's *mat.Dense: one example per row, one unit per column.
// This package provides the shared vocabulary around it:
//   - Shape: dimensions of parameters and batches
//   - DataType: precision of constructed values (Float64, Float32)
//   - ShapeError: raised by backend primitives on mismatched operands
//   - Backend: the primitive set every model is written against
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/latent/backend/cpu"
//	    "github.com/born-ml/latent/tensor"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := mat.NewDense(2, 3, backend.Ones(tensor.Shape{2, 3}))
//	    fmt.Println(backend.Mean(x)) // 1
//	}
//
// # Shape Errors
//
// Backends panic with a *ShapeError when operands do not fit. Model
// operations never recover those panics: a mismatched batch is a programming
// error, not a runtime condition.
package tensor
