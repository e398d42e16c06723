package operations

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/equistore/internal/block"
	"github.com/born-ml/equistore/internal/labels"
	"github.com/born-ml/equistore/internal/tensor"
	"github.com/born-ml/equistore/internal/tensormap"
)

func lbl(t *testing.T, names []string, values ...[]int32) *labels.Labels {
	t.Helper()
	l, err := labels.New(names, values)
	require.NoError(t, err)
	return l
}

func col(t *testing.T, name string, values ...int32) *labels.Labels {
	t.Helper()
	rows := make([][]int32, len(values))
	for i, v := range values {
		rows[i] = []int32{v}
	}
	return lbl(t, []string{name}, rows...)
}

func rows(t *testing.T, r [][]float64) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.FromRows(r)
	require.NoError(t, err)
	return raw
}

func array(t *testing.T, data []float64, shape ...int) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.FromFloat64(data, tensor.Shape(shape))
	require.NoError(t, err)
	return raw
}

func full(t *testing.T, value float64, shape ...int) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.Full(tensor.Shape(shape), value)
	require.NoError(t, err)
	return raw
}

func newBlock(t *testing.T, values *tensor.RawTensor, samples *labels.Labels, components []*labels.Labels, properties *labels.Labels) *block.Block {
	t.Helper()
	b, err := block.New(values, samples, components, properties)
	require.NoError(t, err)
	return b
}

func addGradient(t *testing.T, b *block.Block, parameter string, data *tensor.RawTensor, samples *labels.Labels, components ...*labels.Labels) *block.Block {
	t.Helper()
	out, err := b.WithGradient(parameter, data, samples, components)
	require.NoError(t, err)
	return out
}

func newMap(t *testing.T, keys *labels.Labels, blocks ...*block.Block) *tensormap.TensorMap {
	t.Helper()
	m, err := tensormap.New(keys, blocks)
	require.NoError(t, err)
	return m
}

// testMap builds a four block map with components and a "parameter"
// gradient on every block.
func testMap(t *testing.T) *tensormap.TensorMap {
	t.Helper()
	gradNames := []string{"sample", "parameter"}
	comp1 := col(t, "components", 0)
	comp3 := col(t, "components", 0, 1, 2)

	b1 := newBlock(t, full(t, 1, 3, 1, 1), col(t, "samples", 0, 2, 4), []*labels.Labels{comp1}, col(t, "properties", 0))
	b1 = addGradient(t, b1, "parameter", full(t, 11, 2, 1, 1), lbl(t, gradNames, []int32{0, -2}, []int32{2, 3}), comp1)

	b2 := newBlock(t, full(t, 2, 3, 1, 3), col(t, "samples", 0, 1, 3), []*labels.Labels{comp1}, col(t, "properties", 3, 4, 5))
	b2 = addGradient(t, b2, "parameter", full(t, 12, 3, 1, 3),
		lbl(t, gradNames, []int32{0, -2}, []int32{0, 3}, []int32{2, -2}), comp1)

	b3 := newBlock(t, full(t, 3, 4, 3, 1), col(t, "samples", 0, 3, 6, 8), []*labels.Labels{comp3}, col(t, "properties", 0))
	b3 = addGradient(t, b3, "parameter", full(t, 13, 1, 3, 1), lbl(t, gradNames, []int32{1, -2}), comp3)

	b4 := newBlock(t, full(t, 4, 4, 3, 1), col(t, "samples", 0, 1, 2, 5), []*labels.Labels{comp3}, col(t, "properties", 0))
	b4 = addGradient(t, b4, "parameter", full(t, 14, 2, 3, 1), lbl(t, gradNames, []int32{0, 1}, []int32{3, 3}), comp3)

	keys := lbl(t, []string{"key_1", "key_2"}, []int32{0, 0}, []int32{1, 0}, []int32{2, 2}, []int32{2, 3})
	return newMap(t, keys, b1, b2, b3, b4)
}
