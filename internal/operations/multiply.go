package operations

import (
	"fmt"
	"slices"
	"time"

	"github.com/born-ml/equistore/internal/block"
	"github.com/born-ml/equistore/internal/labels"
	"github.com/born-ml/equistore/internal/tensor"
	"github.com/born-ml/equistore/internal/tensormap"
)

// Operand is the second argument of Multiply: either a MapOperand or a
// ScalarOperand.
type Operand interface {
	operand()
}

// MapOperand multiplies element-wise by another map.
type MapOperand struct {
	Map *tensormap.TensorMap
}

// ScalarOperand scales every value and gradient.
type ScalarOperand struct {
	Value float64
}

func (MapOperand) operand()    {}
func (ScalarOperand) operand() {}

// OperandOf resolves a Go value to an Operand. Maps, Go numbers, and arrays
// or slices holding exactly one element are accepted.
func OperandOf(v any) (Operand, error) {
	switch x := v.(type) {
	case Operand:
		return x, nil
	case *tensormap.TensorMap:
		if x != nil {
			return MapOperand{Map: x}, nil
		}
	case float64:
		return ScalarOperand{Value: x}, nil
	case float32:
		return ScalarOperand{Value: float64(x)}, nil
	case int:
		return ScalarOperand{Value: float64(x)}, nil
	case int32:
		return ScalarOperand{Value: float64(x)}, nil
	case int64:
		return ScalarOperand{Value: float64(x)}, nil
	case []float64:
		if len(x) == 1 {
			return ScalarOperand{Value: x[0]}, nil
		}
	case *tensor.RawTensor:
		if x != nil && x.NumElements() == 1 {
			return ScalarOperand{Value: tensor.Storage(x)[0]}, nil
		}
	}
	return nil, &Error{
		Op:      "multiply",
		Kind:    ErrUnsupportedOperand,
		Details: fmt.Sprintf("B should be a TensorMap or a scalar value, got %T", v),
	}
}

// Multiply computes the element-wise product of a and b.
//
// With a MapOperand both maps must have the same keys and, for every key,
// the same samples, components, properties and gradient parameters.
// Gradients follow the product rule d(AB) = dA·B + A·dB; gradient rows
// present on only one side contribute zero on the other.
func Multiply(a *tensormap.TensorMap, b Operand, opts ...Option) (result *tensormap.TensorMap, err error) {
	o := newOptions(opts)
	start := time.Now()
	defer func() { o.log("multiply", a.Len(), start, err) }()

	switch op := b.(type) {
	case ScalarOperand:
		return multiplyScalar(o, a, op.Value)
	case MapOperand:
		if op.Map == nil {
			break
		}
		return multiplyMaps(o, a, op.Map)
	}
	return nil, &Error{
		Op:      "multiply",
		Kind:    ErrUnsupportedOperand,
		Details: "B should be a TensorMap or a scalar value",
	}
}

func multiplyScalar(o *options, a *tensormap.TensorMap, scalar float64) (*tensormap.TensorMap, error) {
	blocks := make([]*block.Block, a.Len())
	err := o.eachKey(len(blocks), func(i int) error {
		b := a.Block(i)
		out, err := block.New(o.backend.MulScalar(b.Values(), scalar), b.Samples(), b.Components(), b.Properties())
		if err != nil {
			return err
		}
		for parameter, g := range b.Gradients() {
			out, err = out.WithGradient(parameter, o.backend.MulScalar(g.Data(), scalar), g.Samples(), g.Components())
			if err != nil {
				return err
			}
		}
		blocks[i] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tensormap.New(a.Keys(), blocks)
}

func multiplyMaps(o *options, a, b *tensormap.TensorMap) (*tensormap.TensorMap, error) {
	checks := Checks{Samples: true, Components: true, Properties: true, Gradients: true}
	if err := CheckMaps(a, b, checks, "multiply"); err != nil {
		return nil, err
	}

	blocks := make([]*block.Block, a.Len())
	err := o.eachKey(len(blocks), func(i int) error {
		out, err := multiplyBlocks(o.backend, a.Block(i), b.Block(i))
		if err != nil {
			return withKey(err, a.Keys().Entry(i))
		}
		blocks[i] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tensormap.New(a.Keys(), blocks)
}

func multiplyBlocks(backend tensor.Backend, a, b *block.Block) (*block.Block, error) {
	out, err := block.New(backend.Mul(a.Values(), b.Values()), a.Samples(), a.Components(), a.Properties())
	if err != nil {
		return nil, err
	}

	for parameter, ga := range a.Gradients() {
		gb, _ := b.Gradient(parameter)

		samples, err := ga.Samples().Union(gb.Samples())
		if err != nil {
			return nil, err
		}
		dA := alignRows(backend, ga, samples)
		dB := alignRows(backend, gb, samples)

		rows := sampleColumn(samples)
		valuesA := expandValues(backend, a.Values(), rows, ga.Shape())
		valuesB := expandValues(backend, b.Values(), rows, ga.Shape())

		data := backend.Add(backend.Mul(dA, valuesB), backend.Mul(valuesA, dB))
		out, err = out.WithGradient(parameter, data, samples, ga.Components())
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// alignRows reorders the rows of g to follow samples, with zero rows for
// entries g does not have.
func alignRows(backend tensor.Backend, g *block.Gradient, samples *labels.Labels) *tensor.RawTensor {
	data := g.Data()
	rowShape := data.Shape()
	rowShape[0] = 1
	zero, err := tensor.NewRaw(rowShape, data.DType())
	if err != nil {
		panic(fmt.Sprintf("multiply: %v", err))
	}
	padded := backend.Cat([]*tensor.RawTensor{data, zero}, 0)

	missing := data.Dim(0)
	indices := make([]int, samples.Count())
	for i, entry := range samples.All() {
		pos, ok := g.Samples().Position(entry.Values())
		if !ok {
			pos = missing
		}
		indices[i] = pos
	}
	return backend.Take(padded, 0, indices)
}

// expandValues gathers the values rows for every gradient row and repeats
// them over the extra gradient components, producing an array shaped like
// the gradient.
func expandValues(backend tensor.Backend, values *tensor.RawTensor, rows []int, gradShape tensor.Shape) *tensor.RawTensor {
	taken := backend.Take(values, 0, rows)

	valueShape := values.Shape()
	// gradient components = extra components + values components
	extra := tensor.Shape(gradShape[1 : len(gradShape)-len(valueShape)+1]).NumElements()
	inner := tensor.Shape(valueShape[1:]).NumElements()

	shape := gradShape.Clone()
	shape[0] = len(rows)
	if extra == 0 {
		empty, err := tensor.NewRaw(shape, values.DType())
		if err != nil {
			panic(fmt.Sprintf("multiply: %v", err))
		}
		return empty
	}

	flat := backend.Reshape(taken, tensor.Shape{len(rows), 1, inner})
	repeated := backend.Cat(slices.Repeat([]*tensor.RawTensor{flat}, extra), 1)
	return backend.Reshape(repeated, shape)
}

func sampleColumn(samples *labels.Labels) []int {
	out := make([]int, samples.Count())
	for i, entry := range samples.All() {
		out[i] = int(entry.At(0))
	}
	return out
}
