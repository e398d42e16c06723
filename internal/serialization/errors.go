package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch    = errors.New("checksum mismatch: file may be corrupted")
	ErrOffsetOverlap       = errors.New("tensor offsets overlap")
	ErrOutOfBounds         = errors.New("tensor extends beyond data section")
	ErrTooManyTensors      = errors.New("too many tensors in file")
	ErrInvalidTensorName   = errors.New("invalid tensor name")
	ErrHeaderTooLarge      = errors.New("header exceeds maximum size")
	ErrInvalidMagic        = errors.New("invalid magic bytes")
	ErrUnsupportedVersion  = errors.New("unsupported format version")
	ErrTruncated           = errors.New("file is truncated")
	ErrPayloadSize         = errors.New("invalid payload size")
	ErrUnknownCompression  = errors.New("unknown compression")
	ErrInvalidLabels       = errors.New("invalid labels in header")
	ErrUnsupportedDataType = errors.New("unsupported dtype")
)

// ValidationError provides detailed information about validation failures.
type ValidationError struct {
	Type    string // e.g. "offset_overlap", "out_of_bounds"
	Tensor  string // primary array name involved
	Tensor2 string // second array name, for overlaps
	Details string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Tensor2 != "" {
		return fmt.Sprintf("%s: tensors %q and %q: %s", e.Type, e.Tensor, e.Tensor2, e.Details)
	}
	if e.Tensor != "" {
		return fmt.Sprintf("%s: tensor %q: %s", e.Type, e.Tensor, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}

// Unwrap maps the validation type to the matching sentinel error.
func (e *ValidationError) Unwrap() error {
	switch e.Type {
	case "offset_overlap":
		return ErrOffsetOverlap
	case "out_of_bounds", "negative_offset", "size_mismatch":
		return ErrOutOfBounds
	case "too_many_tensors":
		return ErrTooManyTensors
	case "name_too_long", "invalid_name":
		return ErrInvalidTensorName
	case "invalid_labels":
		return ErrInvalidLabels
	case "payload_size":
		return ErrPayloadSize
	}
	return nil
}
