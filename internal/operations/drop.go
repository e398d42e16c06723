package operations

import (
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/born-ml/equistore/internal/block"
	"github.com/born-ml/equistore/internal/labels"
	"github.com/born-ml/equistore/internal/tensormap"
)

// DropBlocks returns a map without the blocks for the given keys. Remaining
// blocks are shared with m and keep their order. Every key to drop must be
// present in m.
func DropBlocks(m *tensormap.TensorMap, keys *labels.Labels, opts ...Option) (result *tensormap.TensorMap, err error) {
	o := newOptions(opts)
	start := time.Now()
	defer func() { o.log("drop_blocks", m.Len(), start, err) }()

	if !keys.HasNames(m.Keys().Names()) {
		return nil, &Error{
			Op:      "drop_blocks",
			Kind:    ErrKeyMismatch,
			Details: fmt.Sprintf("the names of the keys to drop %v do not match the map key names %v", keys.Names(), m.Keys().Names()),
		}
	}

	dropped := roaring.New()
	var missing [][]int32
	for _, key := range keys.All() {
		pos, ok := m.Keys().Position(key.Values())
		if !ok {
			missing = append(missing, key.Values())
			continue
		}
		dropped.Add(uint32(pos))
	}
	if len(missing) > 0 {
		nonExistent, err := labels.New(keys.Names(), missing)
		if err != nil {
			return nil, err
		}
		return nil, &Error{
			Op:      "drop_blocks",
			Kind:    ErrUnknownKey,
			Details: fmt.Sprintf("some keys in `keys` are not present in `tensor`. Non-existent keys: %v", nonExistent),
		}
	}

	kept := roaring.Flip(dropped, 0, uint64(m.Len()))
	positions := labels.Positions(kept)

	newKeys, err := m.Keys().Take(positions)
	if err != nil {
		return nil, err
	}
	blocks := make([]*block.Block, len(positions))
	for i, pos := range positions {
		blocks[i] = m.Block(pos)
	}
	return tensormap.New(newKeys, blocks)
}
