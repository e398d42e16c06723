package serialization

import (
	"time"
)

// Format constants.
const (
	MagicBytes      = "EQSM"
	FormatVersion   = 1
	FixedHeaderSize = 64   // 0x40 bytes before the JSON header
	HeaderAlignment = 64   // payload starts on a 64 byte boundary
	ChecksumSize    = 32   // SHA-256
	ChecksumOffset  = 0x20 // checksum position in the fixed header
)

// Flags stored in the fixed header.
const (
	FlagZstd        uint32 = 1 << 0 // payload compressed with zstd
	FlagLZ4         uint32 = 1 << 1 // payload compressed with lz4
	FlagHasMetadata uint32 = 1 << 2 // custom metadata included
)

// Header is the JSON header following the fixed header.
//
// Array offsets are relative to the start of the uncompressed payload.
type Header struct {
	FormatVersion int               `json:"format_version"`
	ID            string            `json:"id"`
	CreatedAt     time.Time         `json:"created_at"`
	Compression   string            `json:"compression"`
	PayloadSize   int64             `json:"payload_size"` // uncompressed
	Keys          LabelsMeta        `json:"keys"`
	Blocks        []BlockMeta       `json:"blocks"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// LabelsMeta stores labels inline: Count entries of len(Names) values,
// flattened row by row.
type LabelsMeta struct {
	Names  []string `json:"names"`
	Count  int      `json:"count"`
	Values []int32  `json:"values"`
}

// BlockMeta describes one block of the map.
type BlockMeta struct {
	Samples    LabelsMeta     `json:"samples"`
	Components []LabelsMeta   `json:"components"`
	Properties LabelsMeta     `json:"properties"`
	Values     TensorMeta     `json:"values"`
	Gradients  []GradientMeta `json:"gradients,omitempty"`
}

// GradientMeta describes one gradient of a block. Gradients share the
// properties of their block.
type GradientMeta struct {
	Parameter  string       `json:"parameter"`
	Samples    LabelsMeta   `json:"samples"`
	Components []LabelsMeta `json:"components"`
	Data       TensorMeta   `json:"data"`
}

// TensorMeta describes an array in the payload.
type TensorMeta struct {
	Name   string `json:"name"`   // e.g. "block.0.gradient.positions"
	DType  string `json:"dtype"`  // "float32" or "float64"
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"` // bytes from the start of the payload
	Size   int64  `json:"size"`   // bytes
}

// Tensors returns the metadata of every array, block by block.
func (h *Header) Tensors() []TensorMeta {
	var out []TensorMeta
	for _, b := range h.Blocks {
		out = append(out, b.Values)
		for _, g := range b.Gradients {
			out = append(out, g.Data)
		}
	}
	return out
}

func alignedOffset(headerSize int64) int64 {
	pos := int64(FixedHeaderSize) + headerSize
	return pos + (HeaderAlignment-pos%HeaderAlignment)%HeaderAlignment
}
