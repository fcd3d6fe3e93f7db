// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/latent/internal/backend"
	"github.com/born-ml/latent/internal/tensor"
)

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// DataType selects the precision of constructed values.
type DataType = tensor.DataType

// Supported precisions.
const (
	Float64 = tensor.Float64
	Float32 = tensor.Float32
)

// ShapeError reports operands whose shapes cannot be combined.
type ShapeError = tensor.ShapeError

// Backend defines the primitives every model is written against.
//
// Implementations:
//   - backend/cpu: gonum kernels, data-parallel over the batch dimension
type Backend = backend.Backend

// ShapeOf returns the (rows, cols) shape of m.
func ShapeOf(m mat.Matrix) Shape {
	return tensor.ShapeOf(m)
}
