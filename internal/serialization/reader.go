package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/born-ml/equistore/internal/block"
	"github.com/born-ml/equistore/internal/labels"
	"github.com/born-ml/equistore/internal/logging"
	"github.com/born-ml/equistore/internal/tensor"
	"github.com/born-ml/equistore/internal/tensormap"
)

// ReaderOptions configures Read and Decode.
type ReaderOptions struct {
	SkipChecksumValidation bool            // faster but less safe
	ValidationLevel        ValidationLevel // zero value is ValidationStrict
	Logger                 *logging.Logger // used by Load; nil disables logging
}

// Read decodes a map from r.
func Read(r io.Reader, opts ReaderOptions) (*tensormap.TensorMap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read map: %w", err)
	}
	m, _, err := Decode(data, opts)
	return m, err
}

// LoadFile reads the map stored at path.
func LoadFile(path string, opts ReaderOptions) (*tensormap.TensorMap, error) {
	//nolint:gosec // G304: loading user-provided paths is the point
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	m, _, err := Decode(data, opts)
	return m, err
}

// DecodeHeader parses and validates the fixed and JSON headers without
// reading the payload.
func DecodeHeader(data []byte) (*Header, error) {
	h, _, _, err := parseHeader(data)
	return h, err
}

// Decode parses a serialized map. Arrays are copied out of data, so data
// can be released (or unmapped) once Decode returns.
func Decode(data []byte, opts ReaderOptions) (*tensormap.TensorMap, *Header, error) {
	header, stored, checksum, err := parseHeader(data)
	if err != nil {
		return nil, nil, err
	}

	if !opts.SkipChecksumValidation {
		if err := ValidateChecksum(ComputeChecksum(stored), checksum); err != nil {
			return nil, nil, err
		}
	}

	compression, err := ParseCompression(header.Compression)
	if err != nil {
		return nil, nil, err
	}
	if err := ValidatePayloadSize(header.PayloadSize, int64(len(stored)), compression); err != nil {
		return nil, nil, err
	}
	payload, err := decompress(stored, compression, header.PayloadSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decompress payload: %w", err)
	}

	if err := ValidateHeader(header, int64(len(payload)), opts.ValidationLevel); err != nil {
		return nil, nil, fmt.Errorf("validation failed: %w", err)
	}

	m, err := buildMap(header, payload)
	if err != nil {
		return nil, nil, err
	}
	return m, header, nil
}

func parseHeader(data []byte) (*Header, []byte, [32]byte, error) {
	var checksum [32]byte
	if len(data) < FixedHeaderSize {
		return nil, nil, checksum, fmt.Errorf("%w: %d bytes (minimum %d bytes required)", ErrTruncated, len(data), FixedHeaderSize)
	}
	if string(data[0:4]) != MagicBytes {
		return nil, nil, checksum, ErrInvalidMagic
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != FormatVersion {
		return nil, nil, checksum, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	headerSize := binary.LittleEndian.Uint64(data[16:24])
	dataSize := binary.LittleEndian.Uint64(data[24:32])
	copy(checksum[:], data[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > MaxHeaderSize {
		return nil, nil, checksum, ErrHeaderTooLarge
	}
	if uint64(len(data)-FixedHeaderSize) < headerSize {
		return nil, nil, checksum, fmt.Errorf("%w: header needs %d bytes", ErrTruncated, headerSize)
	}

	var header Header
	if err := json.Unmarshal(data[FixedHeaderSize:FixedHeaderSize+int(headerSize)], &header); err != nil {
		return nil, nil, checksum, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	dataOffset := alignedOffset(int64(headerSize))
	if dataOffset > int64(len(data)) || dataSize > uint64(int64(len(data))-dataOffset) {
		return nil, nil, checksum, fmt.Errorf("%w: payload needs %d bytes at offset %d, file has %d",
			ErrTruncated, dataSize, dataOffset, len(data))
	}
	return &header, data[dataOffset : dataOffset+int64(dataSize)], checksum, nil
}

func buildMap(h *Header, payload []byte) (*tensormap.TensorMap, error) {
	keys, err := readLabels("keys", h.Keys)
	if err != nil {
		return nil, err
	}

	blocks := make([]*block.Block, len(h.Blocks))
	for i, meta := range h.Blocks {
		b, err := buildBlock(meta, payload)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		blocks[i] = b
	}
	return tensormap.New(keys, blocks)
}

func buildBlock(meta BlockMeta, payload []byte) (*block.Block, error) {
	samples, err := readLabels("samples", meta.Samples)
	if err != nil {
		return nil, err
	}
	components, err := readLabelsList("components", meta.Components)
	if err != nil {
		return nil, err
	}
	properties, err := readLabels("properties", meta.Properties)
	if err != nil {
		return nil, err
	}
	values, err := readArray(meta.Values, payload)
	if err != nil {
		return nil, err
	}

	b, err := block.New(values, samples, components, properties)
	if err != nil {
		return nil, err
	}

	for _, g := range meta.Gradients {
		gradSamples, err := readLabels("gradient samples", g.Samples)
		if err != nil {
			return nil, err
		}
		gradComponents, err := readLabelsList("gradient components", g.Components)
		if err != nil {
			return nil, err
		}
		data, err := readArray(g.Data, payload)
		if err != nil {
			return nil, err
		}
		b, err = b.WithGradient(g.Parameter, data, gradSamples, gradComponents)
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

func readLabels(what string, meta LabelsMeta) (*labels.Labels, error) {
	width := len(meta.Names)
	if meta.Count < 0 || len(meta.Values) != meta.Count*width || (width == 0 && meta.Count > 1) {
		return nil, &ValidationError{
			Type:    "invalid_labels",
			Details: fmt.Sprintf("%s: %d values for %d entries of %d names", what, len(meta.Values), meta.Count, width),
		}
	}

	rows := make([][]int32, meta.Count)
	for i := range rows {
		rows[i] = meta.Values[i*width : (i+1)*width]
	}
	l, err := labels.New(meta.Names, rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return l, nil
}

func readLabelsList(what string, metas []LabelsMeta) ([]*labels.Labels, error) {
	out := make([]*labels.Labels, len(metas))
	for i, meta := range metas {
		l, err := readLabels(what, meta)
		if err != nil {
			return nil, err
		}
		out[i] = l
	}
	return out, nil
}

// readArray copies one array out of the payload. Bounds and sizes are
// checked here whatever the validation level.
func readArray(meta TensorMeta, payload []byte) (*tensor.RawTensor, error) {
	if err := ValidateTensorSize(meta); err != nil {
		return nil, err
	}
	if meta.Offset < 0 || meta.Offset > int64(len(payload)) || meta.Size > int64(len(payload))-meta.Offset {
		return nil, &ValidationError{
			Type:    "out_of_bounds",
			Tensor:  meta.Name,
			Details: fmt.Sprintf("offset %d + size %d > data_size %d", meta.Offset, meta.Size, len(payload)),
		}
	}

	dtype, _ := tensor.ParseDataType(meta.DType)
	raw, err := tensor.NewRaw(tensor.Shape(meta.Shape), dtype)
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", meta.Name, err)
	}

	src := payload[meta.Offset : meta.Offset+meta.Size]
	out := tensor.Storage(raw)
	switch dtype {
	case tensor.Float32:
		for i := range out {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:])))
		}
	default:
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(src[8*i:]))
		}
	}
	return raw, nil
}
