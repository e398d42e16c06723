package operations

import (
	"errors"
	"strings"

	"github.com/born-ml/equistore/internal/labels"
)

// Label construction errors, surfaced unchanged by every operation.
var (
	ErrInvalidName      = labels.ErrInvalidName
	ErrNonIntegerValues = labels.ErrNonIntegerValues
)

// Structural errors. Every operation fails with an *Error wrapping one of
// these before any numeric work starts.
var (
	ErrKeyMismatch        = errors.New("keys mismatch")
	ErrSampleMismatch     = errors.New("samples mismatch")
	ErrComponentMismatch  = errors.New("components mismatch")
	ErrPropertyMismatch   = errors.New("properties mismatch")
	ErrGradientMismatch   = errors.New("gradients mismatch")
	ErrValuesMismatch     = errors.New("values mismatch")
	ErrInsufficientInputs = errors.New("insufficient inputs")
	ErrUnsupportedOperand = errors.New("unsupported operand")
	ErrNotSquare          = errors.New("not a square matrix")
	ErrUnknownKey         = errors.New("unknown key")
	ErrInvalidAxis        = errors.New("invalid axis")
)

// Error describes a structural failure of an operation.
type Error struct {
	Op        string // operation name, e.g. "join"
	Kind      error  // one of the sentinel errors above
	Key       string // offending key, empty when not key specific
	Parameter string // gradient parameter, empty for values
	Details   string
	Err       error // underlying error, if any
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	sb.WriteString(": ")
	sb.WriteString(e.Kind.Error())
	if e.Key != "" {
		sb.WriteString(" for key ")
		sb.WriteString(e.Key)
	}
	if e.Parameter != "" {
		sb.WriteString(" in gradient '")
		sb.WriteString(e.Parameter)
		sb.WriteString("'")
	}
	if e.Details != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Details)
	}
	return sb.String()
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// withKey tags err with the given key if it is an *Error without one.
func withKey(err error, key labels.Entry) error {
	var opErr *Error
	if errors.As(err, &opErr) && opErr.Key == "" {
		tagged := *opErr
		tagged.Key = key.String()
		return &tagged
	}
	return err
}
