// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/equistore/internal/tensor"
)

// RawTensor is the dense array type.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType()
//   - Element access via At() and Data() (a copy)
//   - Comparison via Equal() and AllClose()
//
// Example:
//
//	raw, _ := tensor.FromFloat64([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	v := raw.At(1, 2)        // 6
//	same := raw.Clone()      // independent copy
type RawTensor = tensor.RawTensor
