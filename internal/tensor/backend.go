package tensor

import "errors"

// ErrSingular is returned by Backend.Solve when the system has no unique
// least-squares solution.
var ErrSingular = errors.New("matrix is singular")

// Backend defines the numeric routines labeled-block operations dispatch to.
// Backends handle the actual computation; all label bookkeeping happens
// before a backend is called, so implementations may panic on shape misuse.
//
// Implementations:
//   - CPU: Pure Go, gonum for linear solves
//   - GPU backends plug in through the same interface
type Backend interface {
	// Element-wise binary operations on arrays of identical shape
	Add(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// Scalar operations
	MulScalar(x *RawTensor, scalar float64) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor // permute axes; no axes reverses them
	MoveAxis(t *RawTensor, from, to int) *RawTensor // move one axis, keep the others in order

	// Manipulation operations
	Cat(tensors []*RawTensor, dim int) *RawTensor         // concatenate along dimension
	Take(x *RawTensor, dim int, indices []int) *RawTensor // select entries along dimension

	// Linear algebra
	//
	// Solve returns w minimizing ||a·w - b|| for 2D a (m×n) and b (m×k).
	Solve(a, b *RawTensor) (*RawTensor, error)

	// Metadata
	Name() string
	Device() Device
}
