package block

import (
	"fmt"

	"github.com/born-ml/equistore/internal/labels"
	"github.com/born-ml/equistore/internal/tensor"
)

// ComponentsToProperties moves the named components into the properties, for
// the values and every gradient. Components are moved one after the other;
// each new property labels starts with the moved component, which varies
// slowest.
func (b *Block) ComponentsToProperties(backend tensor.Backend, dimensions ...string) (*Block, error) {
	out := b
	for _, dim := range dimensions {
		next, err := out.componentToProperties(backend, dim)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

func (b *Block) componentToProperties(backend tensor.Backend, dimension string) (*Block, error) {
	axis := -1
	for i, name := range b.ComponentNames() {
		if name == dimension {
			axis = i
			break
		}
	}
	if axis < 0 {
		return nil, fmt.Errorf("%w: unable to find [%s] in the components", ErrInvalidComponents, dimension)
	}

	moved := b.components[axis]
	properties, err := componentProperties(moved, b.properties)
	if err != nil {
		return nil, err
	}

	components := removeAt(b.components, axis)
	values := foldAxis(backend, b.values, axis+1, properties.Count())
	out, err := New(values, b.samples, components, properties)
	if err != nil {
		return nil, err
	}

	for _, parameter := range b.order {
		g := b.gradients[parameter]
		// values components are the trailing gradient components
		gAxis := len(g.components) - len(b.components) + axis
		data := foldAxis(backend, g.data, gAxis+1, properties.Count())
		out, err = out.WithGradient(parameter, data, g.samples, removeAt(g.components, gAxis))
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// componentProperties builds (component..., property...) labels with the
// component varying slowest.
func componentProperties(component, properties *labels.Labels) (*labels.Labels, error) {
	names := append(component.Names(), properties.Names()...)
	rows := make([][]int32, 0, component.Count()*properties.Count())
	for _, c := range component.All() {
		for _, p := range properties.All() {
			rows = append(rows, append(c.Values(), p.Values()...))
		}
	}
	return labels.New(names, rows)
}

// foldAxis moves axis next to the last one and merges the two.
func foldAxis(backend tensor.Backend, data *tensor.RawTensor, axis, merged int) *tensor.RawTensor {
	last := data.Dims() - 1
	moved := backend.MoveAxis(data, axis, last-1)

	shape := moved.Shape()
	newShape := append(shape[:last-1:last-1], merged)
	return backend.Reshape(moved, newShape)
}

func removeAt(components []*labels.Labels, i int) []*labels.Labels {
	out := make([]*labels.Labels, 0, len(components)-1)
	out = append(out, components[:i]...)
	return append(out, components[i+1:]...)
}
