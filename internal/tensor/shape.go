package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
//
// Zero-length dimensions are valid: a block may have no samples left after
// slicing, and a map may have no properties for a given key.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions >= 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Inner returns the number of elements spanned by one index of axis 0,
// i.e. the product of all dimensions after the first.
func (s Shape) Inner() int {
	if len(s) == 0 {
		return 1
	}
	return Shape(s[1:]).NumElements()
}

// Flatten2D returns the (rows, cols) view used when components are folded
// into the sample axis: cols is the last dimension, rows everything else.
func (s Shape) Flatten2D() Shape {
	if len(s) == 0 {
		return Shape{1, 1}
	}
	cols := s[len(s)-1]
	return Shape{Shape(s[:len(s)-1]).NumElements(), cols}
}

// String renders the shape as (d0, d1, ...).
func (s Shape) String() string {
	out := "("
	for i, dim := range s {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprint(dim)
	}
	return out + ")"
}
