// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/equistore/internal/tensor"
)

// DataType represents the element type of an array.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Device represents the device where array data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	CUDA   Device = tensor.CUDA
	Metal  Device = tensor.Metal
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of an array.
// Example: Shape{2, 3, 4} represents a 3D array with dimensions 2×3×4.
type Shape = tensor.Shape

// Errors returned by array constructors and backends.
var (
	ErrShapeMismatch   = tensor.ErrShapeMismatch
	ErrLossyConversion = tensor.ErrLossyConversion
	ErrSingular        = tensor.ErrSingular
)

// NewRaw creates a zero-filled array.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// FromFloat64 creates a Float64 array. data is copied.
func FromFloat64(data []float64, shape Shape) (*RawTensor, error) {
	return tensor.FromFloat64(data, shape)
}

// FromFloat32 creates a Float32 array. data is copied.
func FromFloat32(data []float32, shape Shape) (*RawTensor, error) {
	return tensor.FromFloat32(data, shape)
}

// FromInt64 creates a Float64 array from integers.
func FromInt64(data []int64, shape Shape) (*RawTensor, error) {
	return tensor.FromInt64(data, shape)
}

// FromRows creates a 2D Float64 array from equal length rows.
func FromRows(rows [][]float64) (*RawTensor, error) {
	return tensor.FromRows(rows)
}

// Full creates a Float64 array filled with value.
func Full(shape Shape, value float64) (*RawTensor, error) {
	return tensor.Full(shape, value)
}

// Scalar creates a 0-dimensional array.
func Scalar(value float64) *RawTensor {
	return tensor.Scalar(value)
}

// ParseDataType converts "float32" or "float64" to a DataType.
func ParseDataType(s string) (DataType, bool) {
	return tensor.ParseDataType(s)
}
