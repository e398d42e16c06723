package tensor

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Errors returned by array constructors.
var (
	ErrShapeMismatch   = errors.New("data length does not match shape")
	ErrLossyConversion = errors.New("integer values can not be represented exactly as floating point")
)

// maxExactInt is the largest integer magnitude float64 represents exactly.
const maxExactInt = 1 << 53

// Device represents the compute device for tensor operations.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	CUDA
	Metal
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case CUDA:
		return "CUDA"
	case Metal:
		return "Metal"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// RawTensor is the dense row-major array stored in blocks and gradients.
//
// A RawTensor is never modified once it has been handed to a block: backends
// allocate a fresh result for every operation, so arrays can be shared between
// blocks, maps and goroutines without copying.
type RawTensor struct {
	data  []float64
	shape Shape
	dtype DataType
}

// NewRaw creates a zero-filled RawTensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &RawTensor{
		data:  make([]float64, shape.NumElements()),
		shape: shape.Clone(),
		dtype: dtype,
	}, nil
}

// FromFloat64 creates a Float64 array from a Go slice. The slice is copied.
func FromFloat64(data []float64, shape Shape) (*RawTensor, error) {
	raw, err := NewRaw(shape, Float64)
	if err != nil {
		return nil, err
	}
	if len(data) != len(raw.data) {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, but got %d",
			ErrShapeMismatch, shape, len(raw.data), len(data))
	}
	copy(raw.data, data)
	return raw, nil
}

// FromFloat32 creates a Float32 array from a Go slice.
func FromFloat32(data []float32, shape Shape) (*RawTensor, error) {
	raw, err := NewRaw(shape, Float32)
	if err != nil {
		return nil, err
	}
	if len(data) != len(raw.data) {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, but got %d",
			ErrShapeMismatch, shape, len(raw.data), len(data))
	}
	for i, v := range data {
		raw.data[i] = float64(v)
	}
	return raw, nil
}

// FromInt64 reinterprets integer data as a Float64 array. It fails with
// ErrLossyConversion when a value is too large to be represented exactly.
func FromInt64(data []int64, shape Shape) (*RawTensor, error) {
	raw, err := NewRaw(shape, Float64)
	if err != nil {
		return nil, err
	}
	if len(data) != len(raw.data) {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, but got %d",
			ErrShapeMismatch, shape, len(raw.data), len(data))
	}
	for i, v := range data {
		if v > maxExactInt || v < -maxExactInt {
			return nil, fmt.Errorf("%w: %d at index %d", ErrLossyConversion, v, i)
		}
		raw.data[i] = float64(v)
	}
	return raw, nil
}

// FromRows creates a 2D Float64 array from a rectangular slice of rows.
func FromRows(rows [][]float64) (*RawTensor, error) {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrShapeMismatch, i, len(row), cols)
		}
		data = append(data, row...)
	}
	return FromFloat64(data, Shape{len(rows), cols})
}

// Full creates a Float64 array filled with value.
func Full(shape Shape, value float64) (*RawTensor, error) {
	raw, err := NewRaw(shape, Float64)
	if err != nil {
		return nil, err
	}
	for i := range raw.data {
		raw.data[i] = value
	}
	return raw, nil
}

// Scalar creates a 0-dimensional Float64 array.
func Scalar(value float64) *RawTensor {
	return &RawTensor{data: []float64{value}, shape: Shape{}, dtype: Float64}
}

// Shape returns a copy of the array's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape.Clone()
}

// Dims returns the number of dimensions.
func (r *RawTensor) Dims() int {
	return len(r.shape)
}

// Dim returns the length of axis i. Negative indices count from the end.
func (r *RawTensor) Dim(i int) int {
	if i < 0 {
		i += len(r.shape)
	}
	return r.shape[i]
}

// DType returns the array's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return len(r.data)
}

// ByteSize returns the size of the array at its declared precision.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// Data returns a copy of the array elements in row-major order.
func (r *RawTensor) Data() []float64 {
	out := make([]float64, len(r.data))
	copy(out, r.data)
	return out
}

// Storage exposes the backing slice of r without copying.
//
// It is a function rather than a method so that it stays inside this module:
// only the code that allocated the array (a backend filling a fresh result,
// a decoder) may write through it.
func Storage(r *RawTensor) []float64 {
	return r.data
}

// At returns the element at the given multi-dimensional index.
func (r *RawTensor) At(idx ...int) float64 {
	if len(idx) != len(r.shape) {
		panic(fmt.Sprintf("at: got %d indices for %dD array", len(idx), len(r.shape)))
	}
	strides := r.shape.ComputeStrides()
	offset := 0
	for i, v := range idx {
		if v < 0 || v >= r.shape[i] {
			panic(fmt.Sprintf("at: index %d out of range for axis %d with length %d", v, i, r.shape[i]))
		}
		offset += v * strides[i]
	}
	return r.data[offset]
}

// WithShape returns an array sharing r's data with a different shape of the
// same number of elements.
func (r *RawTensor) WithShape(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != len(r.data) {
		return nil, fmt.Errorf("%w: can not view %d elements as %v", ErrShapeMismatch, len(r.data), shape)
	}
	return &RawTensor{data: r.data, shape: shape.Clone(), dtype: r.dtype}, nil
}

// Clone creates a deep copy of the array.
func (r *RawTensor) Clone() *RawTensor {
	return &RawTensor{data: r.Data(), shape: r.shape.Clone(), dtype: r.dtype}
}

// Round rounds every element of a freshly allocated result to the array's
// precision.
func Round(r *RawTensor) {
	if r.dtype != Float32 {
		return
	}
	for i, v := range r.data {
		r.data[i] = float64(float32(v))
	}
}

// Equal reports whether both arrays have the same shape and identical
// elements. The data type is not compared.
func (r *RawTensor) Equal(other *RawTensor) bool {
	if !r.shape.Equal(other.shape) {
		return false
	}
	for i, v := range r.data {
		if v != other.data[i] {
			return false
		}
	}
	return true
}

// AllClose reports whether both arrays have the same shape and every pair of
// elements satisfies |a - b| <= atol + rtol*|b|.
func (r *RawTensor) AllClose(other *RawTensor, rtol, atol float64) bool {
	if !r.shape.Equal(other.shape) {
		return false
	}
	for i, a := range r.data {
		b := other.data[i]
		if math.IsNaN(a) || math.IsNaN(b) {
			return false
		}
		if math.Abs(a-b) > atol+rtol*math.Abs(b) {
			return false
		}
	}
	return true
}

// String renders shape, type and up to the first few elements.
func (r *RawTensor) String() string {
	const maxShown = 8
	var sb strings.Builder
	fmt.Fprintf(&sb, "RawTensor%v %s [", r.shape, r.dtype)
	for i, v := range r.data {
		if i == maxShown {
			sb.WriteString(" ...")
			break
		}
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%g", v)
	}
	sb.WriteString("]")
	return sb.String()
}
