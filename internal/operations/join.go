package operations

import (
	"fmt"
	"time"

	"github.com/born-ml/equistore/internal/block"
	"github.com/born-ml/equistore/internal/labels"
	"github.com/born-ml/equistore/internal/tensor"
	"github.com/born-ml/equistore/internal/tensormap"
)

// Axis selects the block axis an operation acts along.
type Axis int

// Supported axes.
const (
	Samples Axis = iota
	Properties
)

func (a Axis) String() string {
	switch a {
	case Samples:
		return "samples"
	case Properties:
		return "properties"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis converts "samples" or "properties" to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "samples":
		return Samples, nil
	case "properties":
		return Properties, nil
	default:
		return 0, &Error{
			Op:      "join",
			Kind:    ErrInvalidAxis,
			Details: fmt.Sprintf("only \"properties\" or \"samples\" are valid values for the `axis` parameter, got %q", s),
		}
	}
}

// Join combines maps with the same keys into one, concatenating the blocks
// for each key along axis.
//
// Joining along properties requires identical samples, components and
// gradients for every key; joining along samples requires identical
// properties and components, and identical gradient parameters. The labels
// of the joined axis are merged with MergeLabels, the same way for every key.
func Join(maps []*tensormap.TensorMap, axis Axis, opts ...Option) (result *tensormap.TensorMap, err error) {
	o := newOptions(opts)
	start := time.Now()
	defer func() { o.log("join", len(maps), start, err) }()

	if len(maps) < 2 {
		return nil, &Error{
			Op:      "join",
			Kind:    ErrInsufficientInputs,
			Details: fmt.Sprintf("provide at least two maps for joining, got %d", len(maps)),
		}
	}

	var checks Checks
	switch axis {
	case Properties:
		checks = Checks{Samples: true, Components: true, Gradients: true, GradientSamples: true}
	case Samples:
		checks = Checks{Components: true, Properties: true, Gradients: true}
	default:
		return nil, &Error{Op: "join", Kind: ErrInvalidAxis, Details: axis.String()}
	}
	for _, m := range maps[1:] {
		if err := CheckMaps(maps[0], m, checks, "join"); err != nil {
			return nil, err
		}
	}

	keys := maps[0].Keys()
	perKey := make([][]*labels.Labels, keys.Count())
	for i := range perKey {
		perKey[i] = make([]*labels.Labels, len(maps))
		for j, m := range maps {
			if axis == Properties {
				perKey[i][j] = m.Block(i).Properties()
			} else {
				perKey[i][j] = m.Block(i).Samples()
			}
		}
	}
	fallback := "sample"
	if axis == Properties {
		fallback = "property"
	}
	merged, err := mergeKeys(perKey, fallback)
	if err != nil {
		return nil, err
	}

	blocks := make([]*block.Block, keys.Count())
	err = o.eachKey(len(blocks), func(i int) error {
		inputs := make([]*block.Block, len(maps))
		for j, m := range maps {
			inputs[j] = m.Block(i)
		}

		var joined *block.Block
		var err error
		if axis == Properties {
			joined, err = joinProperties(o.backend, inputs, merged[i])
		} else {
			joined, err = joinSamples(o.backend, inputs, merged[i])
		}
		if err != nil {
			return withKey(err, keys.Entry(i))
		}
		blocks[i] = joined
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tensormap.New(keys, blocks)
}

func joinProperties(backend tensor.Backend, inputs []*block.Block, properties *labels.Labels) (*block.Block, error) {
	first := inputs[0]

	values := make([]*tensor.RawTensor, len(inputs))
	for j, b := range inputs {
		values[j] = b.Values()
	}

	out, err := block.New(backend.Cat(values, -1), first.Samples(), first.Components(), properties)
	if err != nil {
		return nil, err
	}

	for parameter, g := range first.Gradients() {
		data := make([]*tensor.RawTensor, len(inputs))
		for j, b := range inputs {
			gj, _ := b.Gradient(parameter)
			data[j] = gj.Data()
		}
		out, err = out.WithGradient(parameter, backend.Cat(data, -1), g.Samples(), g.Components())
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func joinSamples(backend tensor.Backend, inputs []*block.Block, samples *labels.Labels) (*block.Block, error) {
	first := inputs[0]

	values := make([]*tensor.RawTensor, len(inputs))
	for j, b := range inputs {
		values[j] = b.Values()
	}

	out, err := block.New(backend.Cat(values, 0), samples, first.Components(), first.Properties())
	if err != nil {
		return nil, err
	}

	for parameter, g := range first.Gradients() {
		data := make([]*tensor.RawTensor, len(inputs))
		gradSamples := make([]*labels.Labels, len(inputs))
		offset := int32(0)
		for j, b := range inputs {
			gj, _ := b.Gradient(parameter)
			data[j] = gj.Data()
			gradSamples[j], err = shiftSamples(gj.Samples(), offset)
			if err != nil {
				return nil, err
			}
			offset += int32(b.Samples().Count())
		}

		merged, err := labels.Concat(gradSamples...)
		if err != nil {
			return nil, err
		}
		out, err = out.WithGradient(parameter, backend.Cat(data, 0), merged, g.Components())
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// shiftSamples adds offset to the "sample" column of gradient samples.
func shiftSamples(samples *labels.Labels, offset int32) (*labels.Labels, error) {
	if offset == 0 {
		return samples, nil
	}
	rows := samples.Values()
	for _, row := range rows {
		row[0] += offset
	}
	return labels.New(samples.Names(), rows)
}
