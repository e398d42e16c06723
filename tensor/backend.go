// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/equistore/internal/tensor"

// Backend defines the numeric routines that map operations dispatch to.
// All label bookkeeping happens before a backend is called.
//
// Implementations:
//   - backend/cpu: Pure Go, gonum for linear solves
//
// Example:
//
//	import (
//	    "github.com/born-ml/equistore/backend/cpu"
//	    "github.com/born-ml/equistore/operations"
//	)
//
//	product, err := operations.Multiply(a, operations.MapOperand{Map: b},
//	    operations.WithBackend(cpu.New()))
type Backend interface {
	// Element-wise binary operations.
	Add(a, b *RawTensor) *RawTensor // Element-wise addition.
	Mul(a, b *RawTensor) *RawTensor // Element-wise multiplication.

	// Scalar operations.
	MulScalar(x *RawTensor, scalar float64) *RawTensor // Multiply by scalar.

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor // Reshape array.
	Transpose(t *RawTensor, axes ...int) *RawTensor  // Permute dimensions.
	MoveAxis(t *RawTensor, from, to int) *RawTensor  // Move one dimension.

	// Manipulation operations.
	Cat(tensors []*RawTensor, dim int) *RawTensor         // Concatenate along dimension.
	Take(x *RawTensor, dim int, indices []int) *RawTensor // Select entries along dimension.

	// Linear algebra.
	Solve(a, b *RawTensor) (*RawTensor, error) // Least squares solution of a·w = b.

	// Metadata.
	Name() string   // Backend name (e.g., "CPU").
	Device() Device // Device type.
}

// Compile-time check that internal Backend implements public Backend.
var _ Backend = tensor.Backend(nil)
