package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/equistore/internal/labels"
	"github.com/born-ml/equistore/internal/logging"
	"github.com/born-ml/equistore/internal/tensor"
	"github.com/born-ml/equistore/internal/tensormap"
)

// WriterOptions configures Write.
type WriterOptions struct {
	Compression Compression
	Metadata    map[string]string
	Logger      *logging.Logger // used by Save; nil disables logging
}

// Write encodes m to w and returns the number of bytes written.
//
// Layout:
//
//	0x00  magic "EQSM"
//	0x04  version (uint32 LE)
//	0x08  flags (uint32 LE)
//	0x0C  reserved
//	0x10  JSON header size (uint64 LE)
//	0x18  stored payload size (uint64 LE)
//	0x20  SHA-256 of the stored payload
//	0x40  JSON header, zero padded to a 64 byte boundary
//	      payload (arrays in little endian, optionally compressed)
func Write(w io.Writer, m *tensormap.TensorMap, opts WriterOptions) (int64, error) {
	data, err := Encode(m, opts)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	if err != nil {
		return int64(n), fmt.Errorf("failed to write map: %w", err)
	}
	return int64(n), nil
}

// Encode returns the serialized form of m.
func Encode(m *tensormap.TensorMap, opts WriterOptions) ([]byte, error) {
	header := Header{
		FormatVersion: FormatVersion,
		ID:            uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		Keys:          labelsMeta(m.Keys()),
		Blocks:        make([]BlockMeta, 0, m.Len()),
		Metadata:      opts.Metadata,
	}

	var payload bytes.Buffer
	for i, b := range m.Blocks() {
		meta := BlockMeta{
			Samples:    labelsMeta(b.Samples()),
			Components: labelsMetas(b.Components()),
			Properties: labelsMeta(b.Properties()),
			Values:     appendArray(&payload, fmt.Sprintf("block.%d.values", i), b.Values()),
		}
		for parameter, g := range b.Gradients() {
			name := fmt.Sprintf("block.%d.gradient.%s", i, parameter)
			if err := ValidateTensorName(name); err != nil {
				return nil, fmt.Errorf("gradient '%s' can not be serialized: %w", parameter, err)
			}
			meta.Gradients = append(meta.Gradients, GradientMeta{
				Parameter:  parameter,
				Samples:    labelsMeta(g.Samples()),
				Components: labelsMetas(g.Components()),
				Data:       appendArray(&payload, name, g.Data()),
			})
		}
		header.Blocks = append(header.Blocks, meta)
	}
	header.PayloadSize = int64(payload.Len())

	compression := opts.Compression
	stored, err := compress(payload.Bytes(), compression)
	if err != nil {
		return nil, fmt.Errorf("failed to compress payload: %w", err)
	}
	if stored == nil {
		compression = CompressionNone
		stored = payload.Bytes()
	}
	header.Compression = compression.String()

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal header: %w", err)
	}

	flags := compression.flag()
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	checksum := ComputeChecksum(stored)

	dataOffset := alignedOffset(int64(len(headerJSON)))
	out := make([]byte, dataOffset+int64(len(stored)))
	copy(out[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(out[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(out[8:12], flags)
	binary.LittleEndian.PutUint64(out[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(out[24:32], uint64(len(stored)))
	copy(out[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])
	copy(out[FixedHeaderSize:], headerJSON)
	copy(out[dataOffset:], stored)
	return out, nil
}

// SaveFile writes m to path. The file is written to a temporary file in the
// same directory and renamed, so readers never observe a partial file.
func SaveFile(path string, m *tensormap.TensorMap, opts WriterOptions) error {
	data, err := Encode(m, opts)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

func appendArray(buf *bytes.Buffer, name string, raw *tensor.RawTensor) TensorMeta {
	meta := TensorMeta{
		Name:   name,
		DType:  raw.DType().String(),
		Shape:  []int(raw.Shape()),
		Offset: int64(buf.Len()),
		Size:   int64(raw.ByteSize()),
	}

	var scratch [8]byte
	for _, v := range tensor.Storage(raw) {
		switch raw.DType() {
		case tensor.Float32:
			binary.LittleEndian.PutUint32(scratch[:4], math.Float32bits(float32(v)))
			buf.Write(scratch[:4])
		default:
			binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(v))
			buf.Write(scratch[:])
		}
	}
	return meta
}

func labelsMeta(l *labels.Labels) LabelsMeta {
	meta := LabelsMeta{
		Names:  l.Names(),
		Count:  l.Count(),
		Values: make([]int32, 0, l.Count()*l.Size()),
	}
	for _, entry := range l.All() {
		meta.Values = append(meta.Values, entry.Values()...)
	}
	return meta
}

func labelsMetas(all []*labels.Labels) []LabelsMeta {
	out := make([]LabelsMeta, len(all))
	for i, l := range all {
		out[i] = labelsMeta(l)
	}
	return out
}
