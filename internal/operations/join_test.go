package operations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/equistore/internal/labels"
	"github.com/born-ml/equistore/internal/parallel"
	"github.com/born-ml/equistore/internal/tensormap"
)

func TestJoinInsufficientInputs(t *testing.T) {
	m := testMap(t)
	for _, maps := range [][]*tensormap.TensorMap{nil, {m}} {
		_, err := Join(maps, Properties)
		require.ErrorIs(t, err, ErrInsufficientInputs)
		assert.Contains(t, err.Error(), "provide at least two")

		_, err = Join(maps, Samples)
		require.ErrorIs(t, err, ErrInsufficientInputs)
	}
}

func TestParseAxis(t *testing.T) {
	axis, err := ParseAxis("samples")
	require.NoError(t, err)
	assert.Equal(t, Samples, axis)

	axis, err = ParseAxis("properties")
	require.NoError(t, err)
	assert.Equal(t, Properties, axis)

	_, err = ParseAxis("foo")
	require.ErrorIs(t, err, ErrInvalidAxis)
	assert.Contains(t, err.Error(), "values for the `axis` parameter")
}

func TestJoinPropertiesSameMap(t *testing.T) {
	m := testMap(t)
	joined, err := Join([]*tensormap.TensorMap{m, m, m}, Properties)
	require.NoError(t, err)

	assert.Equal(t, []string{"tensor", "properties"}, joined.PropertyNames())
	for i, b := range joined.Blocks() {
		original := m.Block(i)
		assert.Equal(t, 3*original.Properties().Count(), b.Properties().Count())
		tensorCol, err := b.Properties().Column("tensor")
		require.NoError(t, err)
		assert.ElementsMatch(t, []int32{0, 1, 2}, uniq(tensorCol))

		g, ok := b.Gradient("parameter")
		require.True(t, ok)
		og, _ := original.Gradient("parameter")
		assert.True(t, g.Samples().Equal(og.Samples()))
		assert.Equal(t, 3*og.Shape()[2], g.Shape()[2])
	}
}

func TestJoinSamplesSameMap(t *testing.T) {
	m := testMap(t)
	joined, err := Join([]*tensormap.TensorMap{m, m, m}, Samples)
	require.NoError(t, err)

	assert.Equal(t, []string{"tensor", "samples"}, joined.SampleNames())
	for i, b := range joined.Blocks() {
		n := m.Block(i).Samples().Count()
		assert.Equal(t, 3*n, b.Samples().Count())

		g, _ := b.Gradient("parameter")
		og, _ := m.Block(i).Gradient("parameter")
		require.Equal(t, 3*og.Samples().Count(), g.Samples().Count())

		// the sample column is offset by the samples of previous maps
		for r, entry := range og.Samples().All() {
			for j := 0; j < 3; j++ {
				shifted := g.Samples().Entry(j*og.Samples().Count() + r)
				assert.Equal(t, entry.At(0)+int32(j*n), shifted.At(0))
				assert.Equal(t, entry.At(1), shifted.At(1))
			}
		}
	}
}

func TestJoinPropertiesRoundTrip(t *testing.T) {
	m := testMap(t)

	first, err := Slice(m, Properties, col(t, "properties", 0, 3))
	require.NoError(t, err)
	rest, err := Slice(m, Properties, col(t, "properties", 4, 5))
	require.NoError(t, err)

	joined, err := Join([]*tensormap.TensorMap{first, rest}, Properties)
	require.NoError(t, err)
	require.NoError(t, AllCloseRaise(joined, m, DefaultTolerance))
}

func TestJoinSamplesRoundTrip(t *testing.T) {
	m := testMap(t)
	keys := lbl(t, []string{"key_1", "key_2"}, []int32{0, 0})
	single := newMap(t, keys, m.Block(0))

	head, err := Slice(single, Samples, col(t, "samples", 0))
	require.NoError(t, err)
	tail, err := Slice(single, Samples, col(t, "samples", 2, 4))
	require.NoError(t, err)

	joined, err := Join([]*tensormap.TensorMap{head, tail}, Samples)
	require.NoError(t, err)
	require.NoError(t, AllCloseRaise(joined, single, DefaultTolerance))
}

func TestJoinPropertiesErrors(t *testing.T) {
	m := testMap(t)
	keys := lbl(t, []string{"key_1", "key_2"}, []int32{0, 0})
	first := newMap(t, keys, m.Block(0))

	fewerSamples, err := Slice(first, Samples, col(t, "samples", 0))
	require.NoError(t, err)
	_, err = Join([]*tensormap.TensorMap{first, fewerSamples}, Properties)
	require.ErrorIs(t, err, ErrSampleMismatch)
	assert.Contains(t, err.Error(), "samples")

	g, _ := m.Block(0).Gradient("parameter")
	extra := addGradient(t, m.Block(0), "foo", g.Data(), g.Samples(), g.Components()...)
	_, err = Join([]*tensormap.TensorMap{first, newMap(t, keys, extra)}, Properties)
	require.ErrorIs(t, err, ErrGradientMismatch)
	assert.Contains(t, err.Error(), "gradient")

	_, err = Join([]*tensormap.TensorMap{first, m}, Properties)
	require.ErrorIs(t, err, ErrKeyMismatch)
}

func TestJoinComponentsMismatch(t *testing.T) {
	m := testMap(t)
	moved, err := m.ComponentsToProperties(newOptions(nil).backend, "components")
	require.NoError(t, err)

	for _, axis := range []Axis{Properties, Samples} {
		_, err = Join([]*tensormap.TensorMap{moved, m}, axis)
		require.ErrorIs(t, err, ErrComponentMismatch, axis.String())
		assert.Contains(t, err.Error(), "components")
	}
}

func TestJoinSamplesErrors(t *testing.T) {
	m := testMap(t)
	keys := lbl(t, []string{"key_1", "key_2"}, []int32{0, 1})
	b := m.Block(1) // three properties
	first := newMap(t, keys, b)

	fewerProperties, err := Slice(first, Properties, col(t, "properties", 3))
	require.NoError(t, err)
	_, err = Join([]*tensormap.TensorMap{first, fewerProperties}, Samples)
	require.ErrorIs(t, err, ErrPropertyMismatch)
	assert.Contains(t, err.Error(), "properties")

	g, _ := b.Gradient("parameter")
	extra := addGradient(t, b, "foo", g.Data(), g.Samples(), g.Components()...)
	_, err = Join([]*tensormap.TensorMap{first, newMap(t, keys, extra)}, Samples)
	require.ErrorIs(t, err, ErrGradientMismatch)
}

func propertiesJoin(t *testing.T, p1, p2 *labels.Labels) *labels.Labels {
	t.Helper()
	samples := col(t, "prop", 0, 1)
	keys := col(t, "prop", 0)
	b1 := newBlock(t, full(t, 0, 2, p1.Count()), samples, nil, p1)
	b2 := newBlock(t, full(t, 0, 2, p2.Count()), samples, nil, p2)

	joined, err := Join([]*tensormap.TensorMap{newMap(t, keys, b1), newMap(t, keys, b2)}, Properties,
		WithParallel(parallel.Sequential()))
	require.NoError(t, err)
	return joined.Block(0).Properties()
}

func seq(start, n int, width int) [][]int32 {
	out := make([][]int32, n)
	for i := range out {
		out[i] = make([]int32, width)
		for j := range out[i] {
			out[i][j] = int32(start + i)
		}
	}
	return out
}

func positional(n1, n2 int) [][]int32 {
	var out [][]int32
	for k := 0; k < n1; k++ {
		out = append(out, []int32{0, int32(k)})
	}
	for k := 0; k < n2; k++ {
		out = append(out, []int32{1, int32(k)})
	}
	return out
}

func TestMergeSameNamesSameValues(t *testing.T) {
	names := []string{"structure", "prop_1"}
	p := lbl(t, names, seq(0, 5, 2)...)

	joined := propertiesJoin(t, p, p)
	assert.Equal(t, []string{"tensor", "structure", "prop_1"}, joined.Names())

	var want [][]int32
	for j := int32(0); j < 2; j++ {
		for i := int32(0); i < 5; i++ {
			want = append(want, []int32{j, i, i})
		}
	}
	assert.Equal(t, want, joined.Values())
}

func TestMergeSameEntriesDifferentOrder(t *testing.T) {
	names := []string{"structure", "prop_1"}
	p := lbl(t, names, seq(0, 5, 2)...)
	reversed := lbl(t, names, []int32{4, 4}, []int32{3, 3}, []int32{2, 2}, []int32{1, 1}, []int32{0, 0})

	joined := propertiesJoin(t, p, reversed)
	assert.Equal(t, []string{"tensor", "structure", "prop_1"}, joined.Names())
	assert.Equal(t, []int32{1, 4, 4}, joined.Entry(5).Values())
}

func TestMergeSameNamesUniqueValues(t *testing.T) {
	names := []string{"structure", "prop_1"}
	joined := propertiesJoin(t, lbl(t, names, seq(0, 5, 2)...), lbl(t, names, seq(5, 5, 2)...))

	assert.Equal(t, names, joined.Names())
	assert.Equal(t, seq(0, 10, 2), joined.Values())
}

func TestMergeDifferentNames(t *testing.T) {
	values := seq(0, 5, 2)
	negative := make([][]int32, len(values))
	for i, row := range values {
		negative[i] = []int32{-row[0], -row[1]}
	}

	joined := propertiesJoin(t,
		lbl(t, []string{"structure", "prop_1"}, negative...),
		lbl(t, []string{"structure", "prop_2"}, values...))
	assert.Equal(t, []string{"tensor", "property"}, joined.Names())
	assert.Equal(t, positional(5, 5), joined.Values())
}

func TestMergeDifferentNamesDifferentLength(t *testing.T) {
	joined := propertiesJoin(t,
		lbl(t, []string{"structure", "prop_1"}, seq(0, 5, 2)...),
		lbl(t, []string{"structure", "prop_2", "prop_3"}, seq(0, 5, 3)...))
	assert.Equal(t, []string{"tensor", "property"}, joined.Names())
	assert.Equal(t, positional(5, 5), joined.Values())
}

func TestMergePartialOverlap(t *testing.T) {
	joined := propertiesJoin(t, col(t, "p", 0, 1, 2), col(t, "p", 2, 3))
	assert.Equal(t, []string{"tensor", "property"}, joined.Names())
	assert.Equal(t, positional(3, 2), joined.Values())
}

func TestJoinPreservesValues(t *testing.T) {
	keys := col(t, "key", 0)
	samples := col(t, "s", 0, 1)
	a := newBlock(t, rows(t, [][]float64{{1, 2}, {3, 4}}), samples, nil, col(t, "p", 0, 1))
	b := newBlock(t, rows(t, [][]float64{{5}, {6}}), samples, nil, col(t, "p", 2))

	joined, err := Join([]*tensormap.TensorMap{newMap(t, keys, a), newMap(t, keys, b)}, Properties)
	require.NoError(t, err)

	want := rows(t, [][]float64{{1, 2, 5}, {3, 4, 6}})
	assert.True(t, joined.Block(0).Values().Equal(want))
	assert.Equal(t, [][]int32{{0}, {1}, {2}}, joined.Block(0).Properties().Values())
}

func TestJoinParallelMatchesSequential(t *testing.T) {
	m := testMap(t)
	par, err := Join([]*tensormap.TensorMap{m, m}, Samples,
		WithParallel(parallel.Config{Enabled: true, NumWorkers: 4}))
	require.NoError(t, err)
	seqMap, err := Join([]*tensormap.TensorMap{m, m}, Samples, WithParallel(parallel.Sequential()))
	require.NoError(t, err)
	assert.True(t, Equal(par, seqMap))
}

func uniq(values []int32) []int32 {
	seen := map[int32]bool{}
	var out []int32
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func TestJoinMixedMergeAcrossKeys(t *testing.T) {
	keys := col(t, "key", 0, 1)
	samples := col(t, "s", 0, 1)
	withProperties := func(key0, key1 *labels.Labels) *tensormap.TensorMap {
		return newMap(t, keys,
			newBlock(t, full(t, 1, 2, key0.Count()), samples, nil, key0),
			newBlock(t, full(t, 2, 2, key1.Count()), samples, nil, key1))
	}

	tests := []struct {
		name  string
		a, b  *tensormap.TensorMap
		names []string
	}{
		{
			name:  "identical then disjoint",
			a:     withProperties(col(t, "p", 0, 1), col(t, "p", 0, 1)),
			b:     withProperties(col(t, "p", 0, 1), col(t, "p", 2, 3)),
			names: []string{"tensor", "property"},
		},
		{
			name:  "disjoint then overlapping",
			a:     withProperties(col(t, "p", 0), col(t, "p", 0, 1)),
			b:     withProperties(col(t, "p", 1), col(t, "p", 1, 2)),
			names: []string{"tensor", "property"},
		},
		{
			name:  "disjoint on every key",
			a:     withProperties(col(t, "p", 0), col(t, "p", 0, 1)),
			b:     withProperties(col(t, "p", 1), col(t, "p", 2, 3)),
			names: []string{"p"},
		},
		{
			name:  "identical on every key",
			a:     withProperties(col(t, "p", 0, 1), col(t, "p", 2)),
			b:     withProperties(col(t, "p", 1, 0), col(t, "p", 2)),
			names: []string{"tensor", "p"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			joined, err := Join([]*tensormap.TensorMap{tt.a, tt.b}, Properties)
			require.NoError(t, err)
			assert.Equal(t, tt.names, joined.PropertyNames())
			for i := range joined.Len() {
				want := tt.a.Block(i).Properties().Count() + tt.b.Block(i).Properties().Count()
				assert.Equal(t, want, joined.Block(i).Properties().Count())
			}
		})
	}
}

func TestJoinSamplesMixedMergeAcrossKeys(t *testing.T) {
	keys := col(t, "key", 0, 1)
	properties := col(t, "p", 0)
	withSamples := func(key0, key1 *labels.Labels) *tensormap.TensorMap {
		return newMap(t, keys,
			newBlock(t, full(t, 1, key0.Count(), 1), key0, nil, properties),
			newBlock(t, full(t, 2, key1.Count(), 1), key1, nil, properties))
	}

	joined, err := Join([]*tensormap.TensorMap{
		withSamples(col(t, "s", 0, 1), col(t, "s", 0)),
		withSamples(col(t, "s", 0, 1), col(t, "s", 5)),
	}, Samples)
	require.NoError(t, err)
	assert.Equal(t, []string{"tensor", "sample"}, joined.SampleNames())
	assert.Equal(t, [][]int32{{0, 0}, {1, 0}}, joined.Block(1).Samples().Values())
}
