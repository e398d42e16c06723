// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package block provides Block, a dense array whose axes are described by
// labels, and Gradient, the derivatives of a block's values with respect to
// one parameter.
//
// Example:
//
//	values, _ := tensor.FromRows([][]float64{{1, 2}, {3, 4}})
//	b, err := block.New(values,
//	    labels.Must(labels.Range("sample", 2)),
//	    nil,
//	    labels.Must(labels.Range("n", 2)))
package block

import (
	"github.com/born-ml/equistore/internal/block"
	"github.com/born-ml/equistore/labels"
	"github.com/born-ml/equistore/tensor"
)

// Block is a labeled dense array with optional gradients.
type Block = block.Block

// Gradient holds the derivatives of a block's values with respect to one
// parameter.
type Gradient = block.Gradient

// SampleDimension is the required first name of gradient samples.
const SampleDimension = block.SampleDimension

// Errors returned when building blocks and gradients.
var (
	ErrShapeMismatch     = block.ErrShapeMismatch
	ErrInvalidComponents = block.ErrInvalidComponents
	ErrInvalidGradient   = block.ErrInvalidGradient
)

// New creates a block. values has shape (samples, components..., properties).
func New(values *tensor.RawTensor, samples *labels.Labels, components []*labels.Labels, properties *labels.Labels) (*Block, error) {
	return block.New(values, samples, components, properties)
}
