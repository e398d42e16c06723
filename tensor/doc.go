// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense arrays stored in blocks and gradients.
//
// # Overview
//
// A RawTensor is a row-major array of float64 values tagged with a DataType.
// Float32 arrays are rounded to float32 precision when they are created and
// serialized as 4 byte floats. Arrays are never modified once created:
// backends allocate a fresh result for every operation.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/equistore/backend/cpu"
//	    "github.com/born-ml/equistore/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x, _ := tensor.FromRows([][]float64{{1, 2}, {3, 1}})
//	    y, _ := tensor.FromRows([][]float64{{1}, {2}})
//
//	    w, err := backend.Solve(x, y)  // least squares, shape (2, 1)
//	}
//
// # Integer Data
//
// FromInt64 converts integers to float64 and fails with ErrLossyConversion
// when a value can not be represented exactly.
package tensor
