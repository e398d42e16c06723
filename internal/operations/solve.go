package operations

import (
	"fmt"
	"time"

	"github.com/born-ml/equistore/internal/block"
	"github.com/born-ml/equistore/internal/tensor"
	"github.com/born-ml/equistore/internal/tensormap"
)

// Solve solves X·w = Y for w, independently for every key.
//
// X and Y must have the same keys, and for each key the same samples,
// components and gradients. The values of every X block must be a square 2D
// array. Components are folded into the samples and every gradient is
// stacked below the values, so values and gradients are fitted together in
// the least-squares sense.
//
// The block of the result for each key has the transposed weights as
// values, the properties of Y as samples and the properties of X as
// properties, without components or gradients.
func Solve(x, y *tensormap.TensorMap, opts ...Option) (result *tensormap.TensorMap, err error) {
	o := newOptions(opts)
	start := time.Now()
	defer func() { o.log("solve", x.Len(), start, err) }()

	if !x.Keys().Equal(y.Keys()) {
		return nil, &Error{
			Op:      "solve",
			Kind:    ErrKeyMismatch,
			Details: fmt.Sprintf("the two maps have different keys:\n%v\nand\n%v", x.Keys(), y.Keys()),
		}
	}
	for i, key := range x.Keys().All() {
		shape := x.Block(i).Shape()
		if len(shape) != 2 || shape[0] != shape[1] {
			return nil, &Error{
				Op:      "solve",
				Kind:    ErrNotSquare,
				Key:     key.String(),
				Details: fmt.Sprintf("the values in each block of X should be a square 2D array, got shape %v", shape),
			}
		}
	}
	checks := Checks{Samples: true, Components: true, Gradients: true, GradientSamples: true}
	if err := CheckMaps(x, y, checks, "solve"); err != nil {
		return nil, err
	}

	blocks := make([]*block.Block, x.Len())
	err = o.eachKey(len(blocks), func(i int) error {
		out, err := solveBlock(o.backend, x.Block(i), y.Block(i))
		if err != nil {
			return fmt.Errorf("solve: block for key %v: %w", x.Keys().Entry(i), err)
		}
		blocks[i] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tensormap.New(x.Keys(), blocks)
}

func solveBlock(backend tensor.Backend, x, y *block.Block) (*block.Block, error) {
	xs := []*tensor.RawTensor{flatten(backend, x.Values())}
	ys := []*tensor.RawTensor{flatten(backend, y.Values())}
	for parameter, gx := range x.Gradients() {
		gy, _ := y.Gradient(parameter)
		xs = append(xs, flatten(backend, gx.Data()))
		ys = append(ys, flatten(backend, gy.Data()))
	}

	weights, err := backend.Solve(backend.Cat(xs, 0), backend.Cat(ys, 0))
	if err != nil {
		return nil, err
	}
	return block.New(backend.Transpose(weights), y.Properties(), nil, x.Properties())
}

// flatten folds every axis but the last into the rows.
func flatten(backend tensor.Backend, data *tensor.RawTensor) *tensor.RawTensor {
	return backend.Reshape(data, data.Shape().Flatten2D())
}
