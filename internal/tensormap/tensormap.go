// Package tensormap implements TensorMap, a set of blocks indexed by key
// labels.
package tensormap

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/born-ml/equistore/internal/block"
	"github.com/born-ml/equistore/internal/labels"
	"github.com/born-ml/equistore/internal/tensor"
)

// ErrInvalidMap is returned when keys and blocks can not form a map.
var ErrInvalidMap = errors.New("invalid tensor map")

// TensorMap associates one block with every key entry. All blocks share the
// same sample, component and property names and the same gradient
// parameters.
type TensorMap struct {
	keys   *labels.Labels
	blocks []*block.Block
}

// New creates a map from keys and one block per key, in key order.
func New(keys *labels.Labels, blocks []*block.Block) (*TensorMap, error) {
	if len(blocks) != keys.Count() {
		return nil, fmt.Errorf("%w: got %d keys but %d blocks", ErrInvalidMap, keys.Count(), len(blocks))
	}

	for i := 1; i < len(blocks); i++ {
		if err := checkConsistent(blocks[0], blocks[i]); err != nil {
			return nil, fmt.Errorf("%w: block for key %v: %v", ErrInvalidMap, keys.Entry(i), err)
		}
	}

	return &TensorMap{
		keys:   keys,
		blocks: append([]*block.Block(nil), blocks...),
	}, nil
}

func checkConsistent(first, b *block.Block) error {
	if !slices.Equal(first.Samples().Names(), b.Samples().Names()) {
		return fmt.Errorf("sample names %v differ from %v", b.Samples().Names(), first.Samples().Names())
	}
	if !slices.Equal(first.ComponentNames(), b.ComponentNames()) {
		return fmt.Errorf("component names %v differ from %v", b.ComponentNames(), first.ComponentNames())
	}
	if !slices.Equal(first.Properties().Names(), b.Properties().Names()) {
		return fmt.Errorf("property names %v differ from %v", b.Properties().Names(), first.Properties().Names())
	}

	want := first.GradientNames()
	got := b.GradientNames()
	slices.Sort(want)
	slices.Sort(got)
	if !slices.Equal(want, got) {
		return fmt.Errorf("gradients %v differ from %v", got, want)
	}
	for _, parameter := range want {
		g1, _ := first.Gradient(parameter)
		g2, _ := b.Gradient(parameter)
		if !slices.Equal(g1.Samples().Names(), g2.Samples().Names()) {
			return fmt.Errorf("gradient '%s' sample names %v differ from %v",
				parameter, g2.Samples().Names(), g1.Samples().Names())
		}
		if !slices.Equal(g1.ComponentNames(), g2.ComponentNames()) {
			return fmt.Errorf("gradient '%s' component names %v differ from %v",
				parameter, g2.ComponentNames(), g1.ComponentNames())
		}
	}
	return nil
}

// Keys returns the key labels.
func (m *TensorMap) Keys() *labels.Labels { return m.keys }

// Len returns the number of blocks.
func (m *TensorMap) Len() int { return len(m.blocks) }

// Block returns the block for the i-th key.
func (m *TensorMap) Block(i int) *block.Block { return m.blocks[i] }

// BlockByKey returns the block for the given key tuple.
func (m *TensorMap) BlockByKey(key []int32) (*block.Block, bool) {
	i, ok := m.keys.Position(key)
	if !ok {
		return nil, false
	}
	return m.blocks[i], true
}

// Blocks returns the blocks in key order. The slice is a copy.
func (m *TensorMap) Blocks() []*block.Block {
	return append([]*block.Block(nil), m.blocks...)
}

// All iterates over (key, block) pairs in key order.
func (m *TensorMap) All() iter.Seq2[labels.Entry, *block.Block] {
	return func(yield func(labels.Entry, *block.Block) bool) {
		for i, key := range m.keys.All() {
			if !yield(key, m.blocks[i]) {
				return
			}
		}
	}
}

// SampleNames returns the sample names shared by all blocks, or nil for an
// empty map.
func (m *TensorMap) SampleNames() []string {
	if len(m.blocks) == 0 {
		return nil
	}
	return m.blocks[0].Samples().Names()
}

// ComponentNames returns the component names shared by all blocks.
func (m *TensorMap) ComponentNames() []string {
	if len(m.blocks) == 0 {
		return nil
	}
	return m.blocks[0].ComponentNames()
}

// PropertyNames returns the property names shared by all blocks.
func (m *TensorMap) PropertyNames() []string {
	if len(m.blocks) == 0 {
		return nil
	}
	return m.blocks[0].Properties().Names()
}

// GradientNames returns the gradient parameters of the first block.
func (m *TensorMap) GradientNames() []string {
	if len(m.blocks) == 0 {
		return nil
	}
	return m.blocks[0].GradientNames()
}

// ComponentsToProperties returns a new map where the named components have
// been moved into the properties of every block.
func (m *TensorMap) ComponentsToProperties(backend tensor.Backend, dimensions ...string) (*TensorMap, error) {
	blocks := make([]*block.Block, len(m.blocks))
	for i, b := range m.blocks {
		moved, err := b.ComponentsToProperties(backend, dimensions...)
		if err != nil {
			return nil, fmt.Errorf("block for key %v: %w", m.keys.Entry(i), err)
		}
		blocks[i] = moved
	}
	return New(m.keys, blocks)
}

// String summarizes the keys of the map.
func (m *TensorMap) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "TensorMap with %d blocks\nkeys: %s", len(m.blocks), strings.Join(m.keys.Names(), ", "))
	for key := range m.All() {
		fmt.Fprintf(&sb, "\n  %v", key.Values())
	}
	return sb.String()
}
