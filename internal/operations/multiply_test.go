package operations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/equistore/internal/labels"
	"github.com/born-ml/equistore/internal/tensor"
	"github.com/born-ml/equistore/internal/tensormap"
)

var testTolerance = Tolerance{Rel: 1e-10, Abs: 1e-10}

func multiplyKeys(t *testing.T) *labels.Labels {
	return lbl(t, []string{"key_1", "key_2"}, []int32{0, 0}, []int32{1, 0})
}

func TestMultiplyMapsNoGradient(t *testing.T) {
	s2 := col(t, "samples", 0, 2)
	s3 := col(t, "samples", 0, 2, 7)
	p := col(t, "properties", 0, 1)
	keys := multiplyKeys(t)

	a := newMap(t, keys,
		newBlock(t, rows(t, [][]float64{{1, 2}, {3, 5}}), s2, nil, p),
		newBlock(t, rows(t, [][]float64{{1, 2}, {3, 4}, {5, 6}}), s3, nil, p))
	b := newMap(t, keys,
		newBlock(t, rows(t, [][]float64{{1.5, 2.1}, {6.7, 10.2}}), s2, nil, p),
		newBlock(t, rows(t, [][]float64{{10, 200.8}, {3.76, 4.432}, {545, 26}}), s3, nil, p))
	want := newMap(t, keys,
		newBlock(t, rows(t, [][]float64{{1.5, 4.2}, {20.1, 51.0}}), s2, nil, p),
		newBlock(t, rows(t, [][]float64{{10.0, 401.6}, {11.28, 17.728}, {2725.0, 156.0}}), s3, nil, p))

	got, err := Multiply(a, MapOperand{Map: b})
	require.NoError(t, err)
	require.NoError(t, AllCloseRaise(want, got, testTolerance))
}

func gradientMaps(t *testing.T) (a, b, want *tensormap.TensorMap) {
	t.Helper()
	s2 := col(t, "samples", 0, 2)
	s3 := col(t, "samples", 0, 2, 7)
	p := col(t, "properties", 0, 1)
	c := col(t, "components", 0, 1)
	gradNames := []string{"sample", "positions"}
	g2 := lbl(t, gradNames, []int32{0, 1}, []int32{1, 1})
	g3 := lbl(t, gradNames, []int32{0, 1}, []int32{1, 1}, []int32{2, 1})
	keys := multiplyKeys(t)

	b1 := newBlock(t, rows(t, [][]float64{{14, 24}, {43, 45}}), s2, nil, p)
	b1 = addGradient(t, b1, "parameter", array(t, []float64{6, 1, 7, 2, 8, 3, 9, 4}, 2, 2, 2), g2, c)
	b2 := newBlock(t, rows(t, [][]float64{{15, 25}, {53, 54}, {55, 65}}), s3, nil, p)
	b2 = addGradient(t, b2, "parameter", array(t, []float64{10, 11, 12, 13, 14, 15, 10, 11, 12, 13, 14, 15}, 3, 2, 2), g3, c)

	b3 := newBlock(t, rows(t, [][]float64{{1.45, 2.41}, {6.47, 10.42}}), s2, nil, p)
	b3 = addGradient(t, b3, "parameter", array(t, []float64{1, 0.1, 2, 0.2, 3, 0.3, 4.5, 0.4}, 2, 2, 2), g2, c)
	b4 := newBlock(t, rows(t, [][]float64{{105, 200.58}, {3.756, 4.4325}, {545.5, 26.05}}), s3, nil, p)
	b4 = addGradient(t, b4, "parameter", array(t, []float64{1.0, 1.1, 1.2, 1.3, 1.4, 1.5, 1.0, 1.1, 1.2, 1.3, 1.4, 1.5}, 3, 2, 2), g3, c)

	r1 := newBlock(t, rows(t, [][]float64{{20.3, 57.84}, {278.21, 468.9}}), s2, nil, p)
	r1 = addGradient(t, r1, "parameter", array(t, []float64{22.7, 4.81, 38.15, 9.62, 180.76, 44.76, 251.73, 59.68}, 2, 2, 2), g2, c)
	r2 := newBlock(t, rows(t, [][]float64{{1575.0, 5014.5}, {199.068, 239.355}, {30002.5, 1693.25}}), s3, nil, p)
	r2 = addGradient(t, r2, "parameter", array(t, []float64{
		1065.0, 2233.88, 1278.0, 2640.04,
		126.784, 147.4875, 90.56, 108.1575,
		6612.0, 423.15, 7714.0, 488.25,
	}, 3, 2, 2), g3, c)

	return newMap(t, keys, b1, b2), newMap(t, keys, b3, b4), newMap(t, keys, r1, r2)
}

func TestMultiplyMapsGradient(t *testing.T) {
	a, b, want := gradientMaps(t)

	got, err := Multiply(a, MapOperand{Map: b})
	require.NoError(t, err)
	require.NoError(t, AllCloseRaise(want, got, testTolerance))
}

func TestMultiplyScalar(t *testing.T) {
	s2 := col(t, "samples", 0, 2)
	s3 := col(t, "samples", 0, 2, 7)
	p := col(t, "properties", 0, 1)
	c := col(t, "components", 0, 1)
	gradNames := []string{"sample", "positions"}
	g2 := lbl(t, gradNames, []int32{0, 1}, []int32{1, 1})
	g3 := lbl(t, gradNames, []int32{0, 1}, []int32{1, 1}, []int32{2, 1})
	keys := multiplyKeys(t)

	b1 := newBlock(t, rows(t, [][]float64{{1, 2}, {3, 5}}), s2, nil, p)
	b1 = addGradient(t, b1, "parameter", array(t, []float64{6, 1, 7, 2, 8, 3, 9, 4}, 2, 2, 2), g2, c)
	b2 := newBlock(t, rows(t, [][]float64{{11, 12}, {13, 14}, {15, 16}}), s3, nil, p)
	b2 = addGradient(t, b2, "parameter", array(t, []float64{10, 11, 12, 13, 14, 15, 10, 11, 12, 13, 14, 15}, 3, 2, 2), g3, c)

	r1 := newBlock(t, rows(t, [][]float64{{5.1, 10.2}, {15.3, 25.5}}), s2, nil, p)
	r1 = addGradient(t, r1, "parameter", array(t, []float64{30.6, 5.1, 35.7, 10.2, 40.8, 15.3, 45.9, 20.4}, 2, 2, 2), g2, c)
	r2 := newBlock(t, rows(t, [][]float64{{56.1, 61.2}, {66.3, 71.4}, {76.5, 81.6}}), s3, nil, p)
	r2 = addGradient(t, r2, "parameter", array(t, []float64{
		51.0, 56.1, 61.2, 66.3,
		71.4, 76.5, 51.0, 56.1,
		61.2, 66.3, 71.4, 76.5,
	}, 3, 2, 2), g3, c)

	a := newMap(t, keys, b1, b2)
	want := newMap(t, keys, r1, r2)

	for _, v := range []any{5.1, []float64{5.1}, tensor.Scalar(5.1), ScalarOperand{Value: 5.1}} {
		operand, err := OperandOf(v)
		require.NoError(t, err)

		got, err := Multiply(a, operand)
		require.NoError(t, err)
		require.NoError(t, AllCloseRaise(want, got, testTolerance), "%T", v)
	}
}

func TestMultiplyScalarRoundTrip(t *testing.T) {
	m := testMap(t)
	scaled, err := Multiply(m, ScalarOperand{Value: 3.7})
	require.NoError(t, err)
	back, err := Multiply(scaled, ScalarOperand{Value: 1 / 3.7})
	require.NoError(t, err)

	assert.False(t, Equal(m, scaled))
	require.NoError(t, AllCloseRaise(m, back, testTolerance))
}

func TestOperandOf(t *testing.T) {
	m := testMap(t)

	operand, err := OperandOf(m)
	require.NoError(t, err)
	assert.Equal(t, MapOperand{Map: m}, operand)

	for _, v := range []any{2, int64(2), int32(2), float32(2), 2.0} {
		operand, err := OperandOf(v)
		require.NoError(t, err)
		assert.Equal(t, ScalarOperand{Value: 2}, operand)
	}

	ones, err := tensor.Full(tensor.Shape{3, 4}, 1)
	require.NoError(t, err)
	for _, v := range []any{ones, []float64{1, 2}, "5", nil, (*tensormap.TensorMap)(nil)} {
		_, err := OperandOf(v)
		require.ErrorIs(t, err, ErrUnsupportedOperand)
		assert.Contains(t, err.Error(), "B should be a TensorMap or a scalar value")
	}
}

func TestMultiplyNilOperand(t *testing.T) {
	_, err := Multiply(testMap(t), nil)
	require.ErrorIs(t, err, ErrUnsupportedOperand)

	_, err = Multiply(testMap(t), MapOperand{})
	require.ErrorIs(t, err, ErrUnsupportedOperand)
}

func TestMultiplyMismatch(t *testing.T) {
	m := testMap(t)

	dropped, err := DropBlocks(m, lbl(t, []string{"key_1", "key_2"}, []int32{0, 0}))
	require.NoError(t, err)
	_, err = Multiply(m, MapOperand{Map: dropped})
	require.ErrorIs(t, err, ErrKeyMismatch)

	fewer, err := Slice(m, Samples, col(t, "samples", 0))
	require.NoError(t, err)
	_, err = Multiply(m, MapOperand{Map: fewer})
	require.ErrorIs(t, err, ErrSampleMismatch)

	var opErr *Error
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "multiply", opErr.Op)
	assert.Equal(t, "(key_1=0, key_2=0)", opErr.Key)
}

// Gradient rows present on only one side are kept, with the missing side
// contributing zero.
func TestMultiplyGradientSampleUnion(t *testing.T) {
	keys := col(t, "key", 0)
	samples := col(t, "samples", 0, 1)
	p := col(t, "properties", 0)
	gradNames := []string{"sample", "atom"}

	a := newBlock(t, rows(t, [][]float64{{2}, {3}}), samples, nil, p)
	a = addGradient(t, a, "positions", rows(t, [][]float64{{1}, {10}}),
		lbl(t, gradNames, []int32{0, 0}, []int32{1, 1}))

	b := newBlock(t, rows(t, [][]float64{{5}, {7}}), samples, nil, p)
	b = addGradient(t, b, "positions", rows(t, [][]float64{{100}, {1000}}),
		lbl(t, gradNames, []int32{1, 1}, []int32{1, 0}))

	got, err := Multiply(newMap(t, keys, a), MapOperand{Map: newMap(t, keys, b)})
	require.NoError(t, err)

	g, ok := got.Block(0).Gradient("positions")
	require.True(t, ok)
	assert.Equal(t, [][]int32{{0, 0}, {1, 1}, {1, 0}}, g.Samples().Values())

	// (0,0): dA=1 · B=5 + A=2 · 0
	// (1,1): dA=10 · B=7 + A=3 · dB=100
	// (1,0): 0 · 7 + A=3 · dB=1000
	want := rows(t, [][]float64{{5}, {370}, {3000}})
	assert.True(t, g.Data().AllClose(want, 1e-12, 1e-12), "got %v", g.Data())
}

func TestMultiplyExtraGradientComponents(t *testing.T) {
	keys := col(t, "key", 0)
	samples := col(t, "samples", 0)
	p := col(t, "properties", 0, 1)
	xyz := col(t, "xyz", 0, 1, 2)
	gradSamples := col(t, "sample", 0)

	a := newBlock(t, rows(t, [][]float64{{2, 3}}), samples, nil, p)
	a = addGradient(t, a, "positions", array(t, []float64{1, 0, 0, 1, 1, 1}, 1, 3, 2), gradSamples, xyz)
	b := newBlock(t, rows(t, [][]float64{{4, 5}}), samples, nil, p)
	b = addGradient(t, b, "positions", array(t, []float64{0, 0, 1, 0, 0, 1}, 1, 3, 2), gradSamples, xyz)

	got, err := Multiply(newMap(t, keys, a), MapOperand{Map: newMap(t, keys, b)})
	require.NoError(t, err)

	g, _ := got.Block(0).Gradient("positions")
	// dA·B + A·dB with B=(4,5), A=(2,3) broadcast over xyz
	want := array(t, []float64{
		1*4 + 2*0, 0*5 + 3*0,
		0*4 + 2*1, 1*5 + 3*0,
		1*4 + 2*0, 1*5 + 3*1,
	}, 1, 3, 2)
	assert.True(t, g.Data().AllClose(want, 1e-12, 1e-12), "got %v", g.Data())
}
