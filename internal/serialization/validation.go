package serialization

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/born-ml/equistore/internal/tensor"
)

// Validation limits for security and resource protection.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // 100MB
	MaxTensorCount   = 100_000
	MaxTensorNameLen = 4096
	MaxPayloadSize   = 16 << 30 // 16GB uncompressed

	// lz4 blocks can not expand more than 255 times.
	maxLZ4Ratio = 255
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict performs all validation checks (default).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal checks names and array sizes but not overlaps.
	ValidationNormal
	// ValidationNone skips header validation. Array bounds are always
	// checked while decoding.
	ValidationNone
)

// ValidateTensorOffsets checks for overlapping array regions and arrays
// reaching past the end of the payload.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
		}
	}

	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	// Empty arrays occupy no bytes and can share an offset with anything.
	var prev *TensorMeta
	for i := range sorted {
		t := &sorted[i]
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d (negative values not allowed)", t.Offset, t.Size),
			}
		}

		if t.Offset+t.Size > dataSize {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
			}
		}

		if t.Size == 0 {
			continue
		}
		if prev != nil && prev.Offset+prev.Size > t.Offset {
			return &ValidationError{
				Type:    "offset_overlap",
				Tensor:  prev.Name,
				Tensor2: t.Name,
				Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
					prev.Offset, prev.Offset+prev.Size, t.Offset, t.Offset+t.Size),
			}
		}
		prev = t
	}

	return nil
}

// ValidateTensorName rejects names that could be used as paths or that
// hide content behind null bytes.
func ValidateTensorName(name string) error {
	if len(name) > MaxTensorNameLen {
		return &ValidationError{
			Type:    "name_too_long",
			Tensor:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	}
	if name == "" {
		return &ValidationError{Type: "invalid_name", Details: "empty name"}
	}
	if strings.Contains(name, "..") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains '..' (path traversal attempt)",
		}
	}
	if strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains path separator (/ or \\)",
		}
	}
	if strings.Contains(name, "\x00") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains null byte",
		}
	}
	return nil
}

// ValidateTensorSize checks that the byte size of an array matches its dtype
// and shape.
func ValidateTensorSize(t TensorMeta) error {
	dtype, ok := tensor.ParseDataType(t.DType)
	if !ok {
		return fmt.Errorf("%w: %q for tensor %q", ErrUnsupportedDataType, t.DType, t.Name)
	}
	shape := tensor.Shape(t.Shape)
	if err := shape.Validate(); err != nil {
		return &ValidationError{Type: "size_mismatch", Tensor: t.Name, Details: err.Error()}
	}
	want, ok := byteSize(shape, dtype.Size())
	if !ok {
		return &ValidationError{
			Type:    "size_mismatch",
			Tensor:  t.Name,
			Details: fmt.Sprintf("shape %v of %s overflows", shape, t.DType),
		}
	}
	if want != t.Size {
		return &ValidationError{
			Type:    "size_mismatch",
			Tensor:  t.Name,
			Details: fmt.Sprintf("shape %v of %s needs %d bytes, got %d", shape, t.DType, want, t.Size),
		}
	}
	return nil
}

// byteSize returns the number of bytes of shape at elemSize bytes per
// element, or false if it does not fit in an int64.
func byteSize(shape tensor.Shape, elemSize int) (int64, bool) {
	n := int64(elemSize)
	for _, dim := range shape {
		if dim == 0 {
			return 0, true
		}
	}
	for _, dim := range shape {
		if int64(dim) > math.MaxInt64/n {
			return 0, false
		}
		n *= int64(dim)
	}
	return n, true
}

// ValidatePayloadSize checks the uncompressed payload size announced by the
// header against MaxPayloadSize and against what the stored bytes can expand
// to, before anything is allocated for it.
func ValidatePayloadSize(size, stored int64, c Compression) error {
	if size < 0 {
		return &ValidationError{
			Type:    "payload_size",
			Details: fmt.Sprintf("negative payload size %d", size),
		}
	}
	if size > MaxPayloadSize {
		return &ValidationError{
			Type:    "payload_size",
			Details: fmt.Sprintf("payload size %d > max %d", size, int64(MaxPayloadSize)),
		}
	}
	switch c {
	case CompressionNone:
		if size != stored {
			return &ValidationError{
				Type:    "payload_size",
				Details: fmt.Sprintf("payload has %d bytes, header says %d", stored, size),
			}
		}
	case CompressionLZ4:
		if size > stored*maxLZ4Ratio {
			return &ValidationError{
				Type:    "payload_size",
				Details: fmt.Sprintf("%d lz4 bytes can not expand to %d", stored, size),
			}
		}
	}
	return nil
}

// ValidateHeader performs header validation at the given level against the
// uncompressed payload size.
func ValidateHeader(h *Header, dataSize int64, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}

	tensors := h.Tensors()
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
		}
	}
	if len(h.Blocks) != h.Keys.Count {
		return &ValidationError{
			Type:    "invalid_labels",
			Details: fmt.Sprintf("%d keys for %d blocks", h.Keys.Count, len(h.Blocks)),
		}
	}

	for _, t := range tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
		if err := ValidateTensorSize(t); err != nil {
			return err
		}
	}

	if level == ValidationStrict {
		if err := ValidateTensorOffsets(tensors, dataSize); err != nil {
			return err
		}
	}
	return nil
}
