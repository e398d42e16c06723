package operations

import (
	"time"

	"github.com/born-ml/equistore/internal/block"
	"github.com/born-ml/equistore/internal/labels"
	"github.com/born-ml/equistore/internal/tensor"
	"github.com/born-ml/equistore/internal/tensormap"
)

// Slice keeps, in every block, the samples or properties matching
// selection. The selection names must be a subset of the names of the
// sliced labels; entries match when they agree on those names.
//
// Gradients follow: slicing samples drops gradient rows of removed samples
// and renumbers the "sample" column, slicing properties selects the same
// gradient columns. Blocks can end up empty along the sliced axis.
func Slice(m *tensormap.TensorMap, axis Axis, selection *labels.Labels, opts ...Option) (result *tensormap.TensorMap, err error) {
	o := newOptions(opts)
	start := time.Now()
	defer func() { o.log("slice", m.Len(), start, err) }()

	if axis != Samples && axis != Properties {
		return nil, &Error{Op: "slice", Kind: ErrInvalidAxis, Details: axis.String()}
	}

	blocks := make([]*block.Block, m.Len())
	err = o.eachKey(len(blocks), func(i int) error {
		var out *block.Block
		var err error
		if axis == Samples {
			out, err = sliceSamples(o.backend, m.Block(i), selection)
		} else {
			out, err = sliceProperties(o.backend, m.Block(i), selection)
		}
		if err != nil {
			return &Error{Op: "slice", Kind: kindFor(axis), Key: m.Keys().Entry(i).String(), Details: err.Error(), Err: err}
		}
		blocks[i] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tensormap.New(m.Keys(), blocks)
}

func kindFor(axis Axis) error {
	if axis == Samples {
		return ErrSampleMismatch
	}
	return ErrPropertyMismatch
}

func sliceSamples(backend tensor.Backend, b *block.Block, selection *labels.Labels) (*block.Block, error) {
	selected, err := b.Samples().Select(selection)
	if err != nil {
		return nil, err
	}
	positions := labels.Positions(selected)
	samples, err := b.Samples().Take(positions)
	if err != nil {
		return nil, err
	}

	out, err := block.New(backend.Take(b.Values(), 0, positions), samples, b.Components(), b.Properties())
	if err != nil {
		return nil, err
	}

	// old sample position -> new sample position
	renumber := make(map[int32]int32, len(positions))
	for newPos, oldPos := range positions {
		renumber[int32(oldPos)] = int32(newPos)
	}

	for parameter, g := range b.Gradients() {
		var rows []int
		var values [][]int32
		for i, entry := range g.Samples().All() {
			newPos, ok := renumber[entry.At(0)]
			if !ok {
				continue
			}
			row := entry.Values()
			row[0] = newPos
			rows = append(rows, i)
			values = append(values, row)
		}
		gradSamples, err := labels.New(g.Samples().Names(), values)
		if err != nil {
			return nil, err
		}
		out, err = out.WithGradient(parameter, backend.Take(g.Data(), 0, rows), gradSamples, g.Components())
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func sliceProperties(backend tensor.Backend, b *block.Block, selection *labels.Labels) (*block.Block, error) {
	selected, err := b.Properties().Select(selection)
	if err != nil {
		return nil, err
	}
	positions := labels.Positions(selected)
	properties, err := b.Properties().Take(positions)
	if err != nil {
		return nil, err
	}

	out, err := block.New(backend.Take(b.Values(), -1, positions), b.Samples(), b.Components(), properties)
	if err != nil {
		return nil, err
	}
	for parameter, g := range b.Gradients() {
		out, err = out.WithGradient(parameter, backend.Take(g.Data(), -1, positions), g.Samples(), g.Components())
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
