// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package operations provides the functions combining and transforming
// tensor maps.
//
// Operations never modify their inputs and return either a complete new map
// or an *Error describing the first structural mismatch.
//
// Example:
//
//	joined, err := operations.Join([]*tensormap.TensorMap{a, b}, operations.Properties)
//	if err != nil {
//	    return err
//	}
//	w, err := operations.Solve(x, joined, operations.WithBackend(cpu.New()))
package operations

import (
	"github.com/born-ml/equistore/block"
	"github.com/born-ml/equistore/internal/operations"
	"github.com/born-ml/equistore/labels"
	"github.com/born-ml/equistore/tensormap"
)

// Axis selects the block axis an operation acts along.
type Axis = operations.Axis

// Supported axes.
const (
	Samples    Axis = operations.Samples
	Properties Axis = operations.Properties
)

// Operand is the second argument of Multiply.
type Operand = operations.Operand

// MapOperand multiplies element-wise by another map.
type MapOperand = operations.MapOperand

// ScalarOperand scales every value and gradient.
type ScalarOperand = operations.ScalarOperand

// Option configures an operation.
type Option = operations.Option

// Tolerance bounds |a - b| <= Abs + Rel·|b| for approximate comparisons.
type Tolerance = operations.Tolerance

// DefaultTolerance is the tolerance used by AllClose in the command line tool.
var DefaultTolerance = operations.DefaultTolerance

// Checks selects which per-block metadata CheckMaps compares.
type Checks = operations.Checks

// AllChecks compares every piece of metadata.
var AllChecks = operations.AllChecks

// Error describes a structural failure of an operation.
type Error = operations.Error

// Structural errors wrapped by *Error.
var (
	ErrKeyMismatch        = operations.ErrKeyMismatch
	ErrSampleMismatch     = operations.ErrSampleMismatch
	ErrComponentMismatch  = operations.ErrComponentMismatch
	ErrPropertyMismatch   = operations.ErrPropertyMismatch
	ErrGradientMismatch   = operations.ErrGradientMismatch
	ErrValuesMismatch     = operations.ErrValuesMismatch
	ErrInsufficientInputs = operations.ErrInsufficientInputs
	ErrUnsupportedOperand = operations.ErrUnsupportedOperand
	ErrNotSquare          = operations.ErrNotSquare
	ErrUnknownKey         = operations.ErrUnknownKey
	ErrInvalidAxis        = operations.ErrInvalidAxis
	ErrInvalidName        = operations.ErrInvalidName
	ErrNonIntegerValues   = operations.ErrNonIntegerValues
)

// Option constructors.
var (
	WithBackend  = operations.WithBackend
	WithParallel = operations.WithParallel
	WithLogger   = operations.WithLogger
)

// ParseAxis converts "samples" or "properties" to an Axis.
func ParseAxis(s string) (Axis, error) {
	return operations.ParseAxis(s)
}

// Join concatenates maps with identical keys along axis.
func Join(maps []*tensormap.TensorMap, axis Axis, opts ...Option) (*tensormap.TensorMap, error) {
	return operations.Join(maps, axis, opts...)
}

// Multiply multiplies a by a map or a scalar, propagating gradients with the
// product rule.
func Multiply(a *tensormap.TensorMap, b Operand, opts ...Option) (*tensormap.TensorMap, error) {
	return operations.Multiply(a, b, opts...)
}

// OperandOf resolves a map or a Go number to an Operand.
func OperandOf(v any) (Operand, error) {
	return operations.OperandOf(v)
}

// Solve solves X·w = Y block by block, values and gradients together.
func Solve(x, y *tensormap.TensorMap, opts ...Option) (*tensormap.TensorMap, error) {
	return operations.Solve(x, y, opts...)
}

// DropBlocks returns m without the blocks of keys.
func DropBlocks(m *tensormap.TensorMap, keys *labels.Labels, opts ...Option) (*tensormap.TensorMap, error) {
	return operations.DropBlocks(m, keys, opts...)
}

// Slice keeps the samples or properties of every block matching selection.
func Slice(m *tensormap.TensorMap, axis Axis, selection *labels.Labels, opts ...Option) (*tensormap.TensorMap, error) {
	return operations.Slice(m, axis, selection, opts...)
}

// MergeLabels combines per-map labels for Join.
func MergeLabels(all []*labels.Labels, fallback string) (*labels.Labels, error) {
	return operations.MergeLabels(all, fallback)
}

// CheckMaps compares the metadata of a and b block by block.
func CheckMaps(a, b *tensormap.TensorMap, checks Checks, op string) error {
	return operations.CheckMaps(a, b, checks, op)
}

// CheckBlocks compares the metadata of two blocks.
func CheckBlocks(a, b *block.Block, checks Checks, op string) error {
	return operations.CheckBlocks(a, b, checks, op)
}

// Equal reports whether a and b hold the same metadata and values.
func Equal(a, b *tensormap.TensorMap) bool { return operations.Equal(a, b) }

// AllClose is Equal with a tolerance on values.
func AllClose(a, b *tensormap.TensorMap, tol Tolerance) bool { return operations.AllClose(a, b, tol) }

// EqualRaise is Equal returning the first difference.
func EqualRaise(a, b *tensormap.TensorMap) error { return operations.EqualRaise(a, b) }

// AllCloseRaise is AllClose returning the first difference.
func AllCloseRaise(a, b *tensormap.TensorMap, tol Tolerance) error {
	return operations.AllCloseRaise(a, b, tol)
}

// EqualBlock reports whether two blocks are equal.
func EqualBlock(a, b *block.Block) bool { return operations.EqualBlock(a, b) }

// AllCloseBlock is EqualBlock with a tolerance on values.
func AllCloseBlock(a, b *block.Block, tol Tolerance) bool { return operations.AllCloseBlock(a, b, tol) }

// EqualBlockRaise is EqualBlock returning the first difference.
func EqualBlockRaise(a, b *block.Block) error { return operations.EqualBlockRaise(a, b) }

// AllCloseBlockRaise is AllCloseBlock returning the first difference.
func AllCloseBlockRaise(a, b *block.Block, tol Tolerance) error {
	return operations.AllCloseBlockRaise(a, b, tol)
}
