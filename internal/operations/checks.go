package operations

import (
	"fmt"
	"slices"

	"github.com/born-ml/equistore/internal/block"
	"github.com/born-ml/equistore/internal/labels"
	"github.com/born-ml/equistore/internal/tensormap"
)

// Checks selects which per-block metadata CheckMaps compares.
type Checks struct {
	Samples    bool // sample labels equal, in order
	Components bool // component labels equal, in order
	Properties bool // property labels equal, in order

	// Gradients requires the same gradient parameters on both blocks and
	// equal gradient components. GradientSamples additionally requires
	// equal gradient sample labels.
	Gradients       bool
	GradientSamples bool
}

// AllChecks compares every piece of metadata.
var AllChecks = Checks{
	Samples:         true,
	Components:      true,
	Properties:      true,
	Gradients:       true,
	GradientSamples: true,
}

// CheckMaps verifies that a and b have the same keys, in the same order, and
// that the blocks for each key agree on the metadata selected by checks. op
// names the calling operation in the returned error.
func CheckMaps(a, b *tensormap.TensorMap, checks Checks, op string) error {
	if !a.Keys().Equal(b.Keys()) {
		return &Error{
			Op:      op,
			Kind:    ErrKeyMismatch,
			Details: fmt.Sprintf("the two maps have different keys:\n%v\nand\n%v", a.Keys(), b.Keys()),
		}
	}
	for i, key := range a.Keys().All() {
		if err := CheckBlocks(a.Block(i), b.Block(i), checks, op); err != nil {
			return withKey(err, key)
		}
	}
	return nil
}

// CheckBlocks verifies that two blocks agree on the metadata selected by
// checks.
func CheckBlocks(a, b *block.Block, checks Checks, op string) error {
	if checks.Samples && !a.Samples().Equal(b.Samples()) {
		return &Error{Op: op, Kind: ErrSampleMismatch, Details: "blocks have different samples"}
	}
	if checks.Components {
		if err := checkComponents(op, "", a.Components(), b.Components()); err != nil {
			return err
		}
	}
	if checks.Properties && !a.Properties().Equal(b.Properties()) {
		return &Error{Op: op, Kind: ErrPropertyMismatch, Details: "blocks have different properties"}
	}
	if checks.Gradients {
		return checkGradients(op, a, b, checks.GradientSamples)
	}
	return nil
}

func checkComponents(op, parameter string, a, b []*labels.Labels) error {
	if len(a) != len(b) {
		kind := ErrComponentMismatch
		if parameter != "" {
			kind = ErrGradientMismatch
		}
		return &Error{
			Op: op, Kind: kind, Parameter: parameter,
			Details: fmt.Sprintf("blocks have %d and %d components", len(a), len(b)),
		}
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			kind := ErrComponentMismatch
			if parameter != "" {
				kind = ErrGradientMismatch
			}
			return &Error{
				Op: op, Kind: kind, Parameter: parameter,
				Details: fmt.Sprintf("blocks have different components at position %d", i),
			}
		}
	}
	return nil
}

func checkGradients(op string, a, b *block.Block, samples bool) error {
	if !sameParameters(a, b) {
		return &Error{
			Op:      op,
			Kind:    ErrGradientMismatch,
			Details: fmt.Sprintf("blocks have gradients %v and %v", a.GradientNames(), b.GradientNames()),
		}
	}
	for parameter, ga := range a.Gradients() {
		gb, _ := b.Gradient(parameter)
		if samples && !ga.Samples().Equal(gb.Samples()) {
			return &Error{Op: op, Kind: ErrGradientMismatch, Parameter: parameter,
				Details: "gradients have different samples"}
		}
		if !samples && !slices.Equal(ga.Samples().Names(), gb.Samples().Names()) {
			return &Error{Op: op, Kind: ErrGradientMismatch, Parameter: parameter,
				Details: fmt.Sprintf("gradients have sample names %v and %v", ga.Samples().Names(), gb.Samples().Names())}
		}
		if err := checkComponents(op, parameter, ga.Components(), gb.Components()); err != nil {
			return err
		}
	}
	return nil
}

// sameParameters reports whether both blocks have gradients with respect to
// the same parameters, in any order.
func sameParameters(a, b *block.Block) bool {
	pa, pb := a.GradientNames(), b.GradientNames()
	if len(pa) != len(pb) {
		return false
	}
	for _, p := range pa {
		if _, ok := b.Gradient(p); !ok {
			return false
		}
	}
	return true
}
