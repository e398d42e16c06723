package block

import (
	"fmt"
	"strings"

	"github.com/born-ml/equistore/internal/labels"
	"github.com/born-ml/equistore/internal/tensor"
)

// SampleDimension is the required first dimension of gradient samples. Its
// values are positions in the samples of the owning block.
const SampleDimension = "sample"

// Gradient holds the derivatives of a block's values with respect to one
// parameter. It shares the property labels of its block.
type Gradient struct {
	data       *tensor.RawTensor
	samples    *labels.Labels
	components []*labels.Labels
	properties *labels.Labels
}

func newGradient(owner *Block, data *tensor.RawTensor, samples *labels.Labels, components []*labels.Labels) (*Gradient, error) {
	if samples.Size() == 0 {
		return nil, fmt.Errorf("%w: gradients samples must have at least one dimension named 'sample', we got none",
			ErrInvalidGradient)
	}
	if first := samples.Names()[0]; first != SampleDimension {
		return nil, fmt.Errorf("%w: '%s' is not valid for the first dimension in the gradients samples labels, it must be 'sample'",
			ErrInvalidGradient, first)
	}

	if err := checkComponents(components); err != nil {
		return nil, err
	}
	if len(components) < len(owner.components) {
		return nil, fmt.Errorf("%w: gradients components should contain at least as many labels as the values components",
			ErrInvalidComponents)
	}
	extra := len(components) - len(owner.components)
	for i, values := range owner.components {
		if !components[extra+i].Equal(values) {
			return nil, fmt.Errorf("%w: gradients and values components mismatch for values component %d (the corresponding names are [%s])",
				ErrInvalidComponents, i, strings.Join(values.Names(), ", "))
		}
	}

	if err := checkDataAndLabels(data, samples, components, owner.properties); err != nil {
		return nil, err
	}

	nSamples := int32(owner.samples.Count())
	for i, entry := range samples.All() {
		if s := entry.At(0); s < 0 || s >= nSamples {
			return nil, fmt.Errorf("%w: gradient sample %d (entry %d) is out of range for a block with %d samples",
				ErrInvalidGradient, s, i, nSamples)
		}
	}

	return &Gradient{
		data:       data,
		samples:    samples,
		components: append([]*labels.Labels(nil), components...),
		properties: owner.properties,
	}, nil
}

// Data returns the gradient array.
func (g *Gradient) Data() *tensor.RawTensor { return g.data }

// Samples returns the gradient sample labels.
func (g *Gradient) Samples() *labels.Labels { return g.samples }

// Properties returns the property labels, shared with the owning block.
func (g *Gradient) Properties() *labels.Labels { return g.properties }

// Components returns the gradient component labels. The slice is a copy.
func (g *Gradient) Components() []*labels.Labels {
	return append([]*labels.Labels(nil), g.components...)
}

// ComponentNames returns the name of every gradient component.
func (g *Gradient) ComponentNames() []string {
	return componentNames(g.components)
}

// Shape returns the shape of the gradient array.
func (g *Gradient) Shape() tensor.Shape { return g.data.Shape() }

// SampleIndices returns, for every gradient row, the position of the
// corresponding sample in the owning block.
func (g *Gradient) SampleIndices() []int {
	out := make([]int, g.samples.Count())
	for i, entry := range g.samples.All() {
		out[i] = int(entry.At(0))
	}
	return out
}
