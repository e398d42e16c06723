package operations

import (
	"fmt"

	"github.com/born-ml/equistore/internal/block"
	"github.com/born-ml/equistore/internal/tensor"
	"github.com/born-ml/equistore/internal/tensormap"
)

// Tolerance bounds |a - b| <= Abs + Rel·|b| for approximate comparisons.
type Tolerance struct {
	Rel float64
	Abs float64
}

// DefaultTolerance is used by AllClose when no tolerance is given.
var DefaultTolerance = Tolerance{Rel: 1e-13, Abs: 1e-12}

type valuesCompare func(a, b *tensor.RawTensor) bool

func exact(a, b *tensor.RawTensor) bool { return a.Equal(b) }

func within(tol Tolerance) valuesCompare {
	return func(a, b *tensor.RawTensor) bool { return a.AllClose(b, tol.Rel, tol.Abs) }
}

// Equal reports whether a and b have the same keys, metadata, values and
// gradients.
func Equal(a, b *tensormap.TensorMap) bool {
	return EqualRaise(a, b) == nil
}

// AllClose is like Equal but compares values and gradients within tol.
func AllClose(a, b *tensormap.TensorMap, tol Tolerance) bool {
	return AllCloseRaise(a, b, tol) == nil
}

// EqualRaise returns an error describing the first difference between a and
// b, or nil if they are equal.
func EqualRaise(a, b *tensormap.TensorMap) error {
	return compareMaps("equal", a, b, exact)
}

// AllCloseRaise returns an error describing the first difference between a
// and b beyond tol, or nil.
func AllCloseRaise(a, b *tensormap.TensorMap, tol Tolerance) error {
	return compareMaps("allclose", a, b, within(tol))
}

// EqualBlock reports whether two blocks are equal.
func EqualBlock(a, b *block.Block) bool {
	return compareBlocks("equal", a, b, exact) == nil
}

// AllCloseBlock reports whether two blocks are equal within tol.
func AllCloseBlock(a, b *block.Block, tol Tolerance) bool {
	return compareBlocks("allclose", a, b, within(tol)) == nil
}

// EqualBlockRaise returns the first difference between two blocks.
func EqualBlockRaise(a, b *block.Block) error {
	return compareBlocks("equal", a, b, exact)
}

// AllCloseBlockRaise returns the first difference between two blocks
// beyond tol.
func AllCloseBlockRaise(a, b *block.Block, tol Tolerance) error {
	return compareBlocks("allclose", a, b, within(tol))
}

func compareMaps(op string, a, b *tensormap.TensorMap, values valuesCompare) error {
	if !a.Keys().Equal(b.Keys()) {
		return &Error{
			Op:      op,
			Kind:    ErrKeyMismatch,
			Details: fmt.Sprintf("the two maps have different keys:\n%v\nand\n%v", a.Keys(), b.Keys()),
		}
	}
	for i, key := range a.Keys().All() {
		if err := compareBlocks(op, a.Block(i), b.Block(i), values); err != nil {
			return withKey(err, key)
		}
	}
	return nil
}

// compareBlocks walks samples, components, properties, values, then every
// gradient in the parameter order of a.
func compareBlocks(op string, a, b *block.Block, values valuesCompare) error {
	if err := CheckBlocks(a, b, Checks{Samples: true, Components: true, Properties: true}, op); err != nil {
		return err
	}
	if !values(a.Values(), b.Values()) {
		return &Error{Op: op, Kind: ErrValuesMismatch, Details: "values are not equal"}
	}

	if !sameParameters(a, b) {
		return &Error{
			Op:      op,
			Kind:    ErrGradientMismatch,
			Details: fmt.Sprintf("blocks have gradients %v and %v", a.GradientNames(), b.GradientNames()),
		}
	}
	for parameter, ga := range a.Gradients() {
		gb, _ := b.Gradient(parameter)
		if !ga.Samples().Equal(gb.Samples()) {
			return &Error{Op: op, Kind: ErrGradientMismatch, Parameter: parameter,
				Details: "gradients have different samples"}
		}
		if err := checkComponents(op, parameter, ga.Components(), gb.Components()); err != nil {
			return err
		}
		if !values(ga.Data(), gb.Data()) {
			return &Error{Op: op, Kind: ErrValuesMismatch, Parameter: parameter,
				Details: "gradient data are not equal"}
		}
	}
	return nil
}
