// Package block implements Block, a dense array whose axes are described by
// Labels, together with its gradient sub-blocks.
//
// The first axis of a block is described by the sample labels, the last one
// by the property labels, and every interior axis by a single-dimension
// component labels. Blocks never change after construction: adding a
// gradient or moving components returns a new block sharing the arrays that
// did not change.
package block

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/born-ml/equistore/internal/labels"
	"github.com/born-ml/equistore/internal/tensor"
)

// Errors returned when building blocks and gradients.
var (
	ErrShapeMismatch     = errors.New("data and labels don't match")
	ErrInvalidComponents = errors.New("invalid component labels")
	ErrInvalidGradient   = errors.New("invalid gradient")
)

// Block is a labeled dense array with optional gradients.
type Block struct {
	values     *tensor.RawTensor
	samples    *labels.Labels
	components []*labels.Labels
	properties *labels.Labels

	gradients map[string]*Gradient
	order     []string // gradient parameters in insertion order
}

// New creates a block from values and the labels of each axis.
//
// The values must have 2 + len(components) dimensions and the length of each
// axis must match the number of entries of the corresponding labels.
func New(values *tensor.RawTensor, samples *labels.Labels, components []*labels.Labels, properties *labels.Labels) (*Block, error) {
	if err := checkComponents(components); err != nil {
		return nil, err
	}
	if err := checkDataAndLabels(values, samples, components, properties); err != nil {
		return nil, err
	}

	return &Block{
		values:     values,
		samples:    samples,
		components: append([]*labels.Labels(nil), components...),
		properties: properties,
		gradients:  map[string]*Gradient{},
	}, nil
}

func checkComponents(components []*labels.Labels) error {
	seen := make(map[string]struct{}, len(components))
	for i, c := range components {
		if c.Size() != 1 {
			return fmt.Errorf("%w: component labels must have a single dimension, got %d: [%s] for component %d",
				ErrInvalidComponents, c.Size(), strings.Join(c.Names(), ", "), i)
		}
		name := c.Names()[0]
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: some of the component names appear more than once in component labels",
				ErrInvalidComponents)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func checkDataAndLabels(data *tensor.RawTensor, samples *labels.Labels, components []*labels.Labels, properties *labels.Labels) error {
	shape := data.Shape()
	if len(shape) != len(components)+2 {
		return fmt.Errorf("%w: the array has %d dimensions, but we have %d separate labels",
			ErrShapeMismatch, len(shape), len(components)+2)
	}

	if shape[0] != samples.Count() {
		return fmt.Errorf("%w: the array shape along axis 0 is %d but we have %d sample labels",
			ErrShapeMismatch, shape[0], samples.Count())
	}

	for i, c := range components {
		if shape[i+1] != c.Count() {
			return fmt.Errorf("%w: the array shape along axis %d is %d but we have %d entries for the corresponding component",
				ErrShapeMismatch, i+1, shape[i+1], c.Count())
		}
	}

	last := len(shape) - 1
	if shape[last] != properties.Count() {
		return fmt.Errorf("%w: the array shape along axis %d is %d but we have %d properties labels",
			ErrShapeMismatch, last, shape[last], properties.Count())
	}
	return nil
}

// Values returns the values array.
func (b *Block) Values() *tensor.RawTensor { return b.values }

// Samples returns the labels of the first axis.
func (b *Block) Samples() *labels.Labels { return b.samples }

// Properties returns the labels of the last axis.
func (b *Block) Properties() *labels.Labels { return b.properties }

// Components returns the labels of the interior axes. The slice is a copy.
func (b *Block) Components() []*labels.Labels {
	return append([]*labels.Labels(nil), b.components...)
}

// ComponentNames returns the name of every component, in axis order.
func (b *Block) ComponentNames() []string {
	return componentNames(b.components)
}

// Shape returns the shape of the values.
func (b *Block) Shape() tensor.Shape { return b.values.Shape() }

// Gradient returns the gradient with respect to parameter.
func (b *Block) Gradient(parameter string) (*Gradient, bool) {
	g, ok := b.gradients[parameter]
	return g, ok
}

// GradientNames returns the gradient parameters in the order they were added.
func (b *Block) GradientNames() []string {
	return append([]string(nil), b.order...)
}

// Gradients iterates over (parameter, gradient) pairs in insertion order.
func (b *Block) Gradients() iter.Seq2[string, *Gradient] {
	return func(yield func(string, *Gradient) bool) {
		for _, name := range b.order {
			if !yield(name, b.gradients[name]) {
				return
			}
		}
	}
}

// WithGradient returns a copy of b with an additional gradient with respect
// to parameter.
//
// The first dimension of the gradient samples must be named "sample" and its
// values index the samples of b. The gradient components must end with the
// components of b; extra components may be prepended. The gradient shares
// the properties of b.
func (b *Block) WithGradient(parameter string, data *tensor.RawTensor, samples *labels.Labels, components []*labels.Labels) (*Block, error) {
	if _, ok := b.gradients[parameter]; ok {
		return nil, fmt.Errorf("%w: gradient with respect to '%s' already exists for this block",
			ErrInvalidGradient, parameter)
	}
	if parameter == "values" {
		return nil, fmt.Errorf("%w: can not store gradient with respect to 'values'", ErrInvalidGradient)
	}

	g, err := newGradient(b, data, samples, components)
	if err != nil {
		return nil, fmt.Errorf("gradient '%s': %w", parameter, err)
	}

	out := b.shallowCopy()
	out.gradients[parameter] = g
	out.order = append(out.order, parameter)
	return out, nil
}

func (b *Block) shallowCopy() *Block {
	out := &Block{
		values:     b.values,
		samples:    b.samples,
		components: b.components,
		properties: b.properties,
		gradients:  make(map[string]*Gradient, len(b.gradients)+1),
		order:      append([]string(nil), b.order...),
	}
	for k, v := range b.gradients {
		out.gradients[k] = v
	}
	return out
}

// String summarizes the block metadata.
func (b *Block) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Block%v\n", b.values.Shape())
	fmt.Fprintf(&sb, "  samples (%d): %v\n", b.samples.Count(), b.samples.Names())
	fmt.Fprintf(&sb, "  components: %v\n", b.ComponentNames())
	fmt.Fprintf(&sb, "  properties (%d): %v\n", b.properties.Count(), b.properties.Names())
	fmt.Fprintf(&sb, "  gradients: %v", b.order)
	return sb.String()
}

func componentNames(components []*labels.Labels) []string {
	names := make([]string, len(components))
	for i, c := range components {
		names[i] = c.Names()[0]
	}
	return names
}
