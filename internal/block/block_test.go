package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/equistore/internal/backend/cpu"
	"github.com/born-ml/equistore/internal/labels"
	"github.com/born-ml/equistore/internal/tensor"
)

func rangeLabels(name string, n int) *labels.Labels {
	return labels.Must(labels.Range(name, n))
}

func zeros(t *testing.T, shape ...int) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(tensor.Shape(shape), tensor.Float64)
	require.NoError(t, err)
	return raw
}

func full(t *testing.T, value float64, shape ...int) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.Full(tensor.Shape(shape), value)
	require.NoError(t, err)
	return raw
}

func TestNewNoComponents(t *testing.T) {
	samples := rangeLabels("samples", 4)
	properties := rangeLabels("properties", 7)

	b, err := New(zeros(t, 4, 7), samples, nil, properties)
	require.NoError(t, err)
	assert.True(t, b.Shape().Equal(tensor.Shape{4, 7}))
	assert.Empty(t, b.GradientNames())

	tests := []struct {
		name    string
		shape   []int
		message string
	}{
		{"samples", []int{3, 7}, "the array shape along axis 0 is 3 but we have 4 sample labels"},
		{"properties", []int{4, 9}, "the array shape along axis 1 is 9 but we have 7 properties labels"},
		{"rank", []int{4, 1, 7}, "the array has 3 dimensions, but we have 2 separate labels"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(zeros(t, tt.shape...), samples, nil, properties)
			require.ErrorIs(t, err, ErrShapeMismatch)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestNewMultipleComponents(t *testing.T) {
	c1 := rangeLabels("component_1", 4)
	c2 := rangeLabels("component_2", 3)
	samples := rangeLabels("samples", 3)
	properties := rangeLabels("properties", 2)

	_, err := New(zeros(t, 3, 4, 2), samples, []*labels.Labels{c1}, properties)
	require.NoError(t, err)

	_, err = New(zeros(t, 3, 4, 3, 2), samples, []*labels.Labels{c1, c2}, properties)
	require.NoError(t, err)

	_, err = New(zeros(t, 3, 4, 2), samples, []*labels.Labels{c1, c2}, properties)
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, err.Error(), "the array has 3 dimensions, but we have 4 separate labels")

	_, err = New(zeros(t, 3, 4, 4, 2), samples, []*labels.Labels{c1, c2}, properties)
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, err.Error(), "the array shape along axis 2 is 4 but we have 3 entries for the corresponding component")

	_, err = New(zeros(t, 3, 4, 4, 2), samples, []*labels.Labels{c1, c1}, properties)
	require.ErrorIs(t, err, ErrInvalidComponents)
	assert.Contains(t, err.Error(), "some of the component names appear more than once in component labels")

	wide := labels.Must(labels.New([]string{"component_1", "component_2"}, [][]int32{{0, 1}}))
	_, err = New(zeros(t, 3, 1, 2), samples, []*labels.Labels{wide}, properties)
	require.ErrorIs(t, err, ErrInvalidComponents)
	assert.Contains(t, err.Error(), "component labels must have a single dimension, got 2: [component_1, component_2] for component 0")
}

func TestEmptyAxes(t *testing.T) {
	empty, err := labels.Empty([]string{"samples"})
	require.NoError(t, err)

	b, err := New(zeros(t, 0, 3), empty, nil, rangeLabels("properties", 3))
	require.NoError(t, err)
	assert.Equal(t, 0, b.Samples().Count())
}

func TestWithGradientNoComponents(t *testing.T) {
	b, err := New(zeros(t, 4, 7), rangeLabels("samples", 4), nil, rangeLabels("properties", 7))
	require.NoError(t, err)

	samples := labels.Must(labels.New([]string{"sample", "foo"}, [][]int32{{0, 0}, {1, 1}, {3, -2}}))
	withFoo, err := b.WithGradient("foo", zeros(t, 3, 7), samples, nil)
	require.NoError(t, err)

	component := rangeLabels("component", 5)
	withBoth, err := withFoo.WithGradient("component", zeros(t, 3, 5, 7), rangeLabels("sample", 3),
		[]*labels.Labels{component})
	require.NoError(t, err)

	assert.Equal(t, []string{"foo", "component"}, withBoth.GradientNames())
	// the receiver is unchanged
	assert.Empty(t, b.GradientNames())
	assert.Equal(t, []string{"foo"}, withFoo.GradientNames())

	foo, ok := withBoth.Gradient("foo")
	require.True(t, ok)
	assert.Equal(t, []string{"sample", "foo"}, foo.Samples().Names())
	assert.Empty(t, foo.Components())
	assert.Equal(t, []string{"properties"}, foo.Properties().Names())
	assert.Equal(t, []int{0, 1, 3}, foo.SampleIndices())

	grad, ok := withBoth.Gradient("component")
	require.True(t, ok)
	assert.Equal(t, []string{"component"}, grad.ComponentNames())

	_, ok = withBoth.Gradient("baz")
	assert.False(t, ok)

	var order []string
	for name := range withBoth.Gradients() {
		order = append(order, name)
	}
	assert.Equal(t, []string{"foo", "component"}, order)
}

func TestWithGradientWithComponents(t *testing.T) {
	component := rangeLabels("component", 5)
	component2 := rangeLabels("component_2", 3)
	b, err := New(zeros(t, 4, 5, 7), rangeLabels("samples", 4), []*labels.Labels{component},
		rangeLabels("properties", 7))
	require.NoError(t, err)

	samples := rangeLabels("sample", 3)
	_, err = b.WithGradient("basic", zeros(t, 3, 5, 7), samples, []*labels.Labels{component})
	require.NoError(t, err)

	_, err = b.WithGradient("components", zeros(t, 3, 3, 5, 7), samples,
		[]*labels.Labels{component2, component})
	require.NoError(t, err)

	_, err = b.WithGradient("wrong", zeros(t, 3, 3, 5, 7), samples,
		[]*labels.Labels{component, component2})
	require.ErrorIs(t, err, ErrInvalidComponents)
	assert.Contains(t, err.Error(),
		"gradients and values components mismatch for values component 0 (the corresponding names are [component])")
}

func TestWithGradientErrors(t *testing.T) {
	b, err := New(zeros(t, 2, 3), rangeLabels("samples", 2), nil, rangeLabels("properties", 3))
	require.NoError(t, err)
	b, err = b.WithGradient("positions", zeros(t, 1, 3), rangeLabels("sample", 1), nil)
	require.NoError(t, err)

	tests := []struct {
		name      string
		parameter string
		data      *tensor.RawTensor
		samples   *labels.Labels
		wantErr   error
		message   string
	}{
		{"duplicate", "positions", zeros(t, 1, 3), rangeLabels("sample", 1), ErrInvalidGradient,
			"gradient with respect to 'positions' already exists"},
		{"values", "values", zeros(t, 1, 3), rangeLabels("sample", 1), ErrInvalidGradient,
			"can not store gradient with respect to 'values'"},
		{"first dimension", "cell", zeros(t, 1, 3), rangeLabels("structure", 1), ErrInvalidGradient,
			"'structure' is not valid for the first dimension"},
		{"out of range", "cell", zeros(t, 3, 3), rangeLabels("sample", 3), ErrInvalidGradient,
			"gradient sample 2 (entry 2) is out of range"},
		{"shape", "cell", zeros(t, 1, 4), rangeLabels("sample", 1), ErrShapeMismatch,
			"the array shape along axis 1 is 4 but we have 3 properties labels"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.WithGradient(tt.parameter, tt.data, tt.samples, nil)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestComponentsToPropertiesOneComponent(t *testing.T) {
	b, err := New(full(t, 1, 3, 2, 3), rangeLabels("samples", 3),
		[]*labels.Labels{rangeLabels("components", 2)}, rangeLabels("properties", 3))
	require.NoError(t, err)

	gradSamples := labels.Must(labels.New([]string{"sample", "parameter"}, [][]int32{{0, 2}, {1, 2}}))
	b, err = b.WithGradient("parameter", full(t, 11, 2, 2, 3), gradSamples,
		[]*labels.Labels{rangeLabels("components", 2)})
	require.NoError(t, err)

	moved, err := b.ComponentsToProperties(cpu.New(), "components")
	require.NoError(t, err)

	assert.Equal(t, 3, moved.Samples().Count())
	assert.Empty(t, moved.Components())
	assert.Equal(t, []string{"components", "properties"}, moved.Properties().Names())
	assert.Equal(t, [][]int32{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}, moved.Properties().Values())
	assert.True(t, moved.Values().Equal(full(t, 1, 3, 6)))

	grad, ok := moved.Gradient("parameter")
	require.True(t, ok)
	assert.Equal(t, [][]int32{{0, 2}, {1, 2}}, grad.Samples().Values())
	assert.True(t, grad.Data().Equal(full(t, 11, 2, 6)))
}

func TestComponentsToPropertiesMultipleComponents(t *testing.T) {
	data, err := tensor.FromFloat64([]float64{
		1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		-1, 1, -2, 2, -3, 3, -4, 4, -5, 5, -6, 6,
	}, tensor.Shape{2, 2, 3, 2})
	require.NoError(t, err)

	components := []*labels.Labels{rangeLabels("component_1", 2), rangeLabels("component_2", 3)}
	b, err := New(data, rangeLabels("samples", 2), components, rangeLabels("properties", 2))
	require.NoError(t, err)

	gradSamples := labels.Must(labels.New([]string{"sample", "parameter"}, [][]int32{{0, 2}, {0, 3}, {1, 2}}))
	b, err = b.WithGradient("parameter", full(t, 11, 3, 2, 3, 2), gradSamples, components)
	require.NoError(t, err)

	moved, err := b.ComponentsToProperties(cpu.New(), "component_1")
	require.NoError(t, err)

	assert.Equal(t, []string{"component_2"}, moved.ComponentNames())
	assert.Equal(t, []string{"component_1", "properties"}, moved.Properties().Names())
	assert.Equal(t, [][]int32{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, moved.Properties().Values())

	expected, err := tensor.FromFloat64([]float64{
		1, 1, 4, 4, 2, 2, 5, 5, 3, 3, 6, 6,
		-1, 1, -4, 4, -2, 2, -5, 5, -3, 3, -6, 6,
	}, tensor.Shape{2, 3, 4})
	require.NoError(t, err)
	assert.True(t, moved.Values().Equal(expected), "got %v", moved.Values())

	grad, ok := moved.Gradient("parameter")
	require.True(t, ok)
	assert.True(t, grad.Data().Equal(full(t, 11, 3, 3, 4)))

	// original block is untouched
	assert.Equal(t, []string{"component_1", "component_2"}, b.ComponentNames())
}

func TestComponentsToPropertiesUnknown(t *testing.T) {
	b, err := New(zeros(t, 1, 2, 1), rangeLabels("samples", 1),
		[]*labels.Labels{rangeLabels("xyz", 2)}, rangeLabels("properties", 1))
	require.NoError(t, err)

	_, err = b.ComponentsToProperties(cpu.New(), "abc")
	require.ErrorIs(t, err, ErrInvalidComponents)
	assert.Contains(t, err.Error(), "unable to find [abc] in the components")

	same, err := b.ComponentsToProperties(cpu.New())
	require.NoError(t, err)
	assert.Same(t, b, same)
}
