// Package labels implements Labels, the named index sets attached to every
// axis of a block and to the keys of a tensor map.
//
// A Labels value is an ordered sequence of unique integer tuples. Each tuple
// has one int32 per name. Labels are immutable: accessors return copies, and
// operations that combine labels build new values.
package labels

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Errors returned by Labels constructors and set operations.
var (
	ErrInvalidName      = errors.New("invalid label name")
	ErrNonIntegerValues = errors.New("labels values must be convertible to integers")
	ErrDuplicateEntry   = errors.New("duplicate label entry")
	ErrInvalidShape     = errors.New("invalid labels shape")
	ErrNamesMismatch    = errors.New("label names mismatch")
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Labels is a named, ordered set of unique integer tuples.
type Labels struct {
	names  []string
	values []int32 // row-major, count × len(names)
	count  int

	// tuple key -> position, built once at construction
	positions map[string]int
}

// New creates Labels from names and one tuple per entry.
//
// Names must be valid identifiers and unique. Every tuple must have
// len(names) values and tuples must be unique. Labels with no names can hold
// at most one (empty) entry.
func New(names []string, values [][]int32) (*Labels, error) {
	width := len(names)
	flat := make([]int32, 0, len(values)*width)
	for i, row := range values {
		if len(row) != width {
			return nil, fmt.Errorf("%w: entry %d has %d values, but there are %d names",
				ErrInvalidShape, i, len(row), width)
		}
		flat = append(flat, row...)
	}
	return build(names, flat, len(values))
}

// FromInt64 creates Labels from int64 tuples. Values outside the int32 range
// fail with ErrNonIntegerValues.
func FromInt64(names []string, values [][]int64) (*Labels, error) {
	rows := make([][]int32, len(values))
	for i, row := range values {
		rows[i] = make([]int32, len(row))
		for j, v := range row {
			if v > math.MaxInt32 || v < math.MinInt32 {
				return nil, fmt.Errorf("%w: %d does not fit in 32 bits (entry %d)", ErrNonIntegerValues, v, i)
			}
			rows[i][j] = int32(v)
		}
	}
	return New(names, rows)
}

// FromFloat64 creates Labels from floating point tuples. Every value must be
// a whole number in the int32 range.
func FromFloat64(names []string, values [][]float64) (*Labels, error) {
	rows := make([][]int32, len(values))
	for i, row := range values {
		rows[i] = make([]int32, len(row))
		for j, v := range row {
			if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
				return nil, fmt.Errorf("%w: got %v (entry %d)", ErrNonIntegerValues, v, i)
			}
			rows[i][j] = int32(v)
		}
	}
	return New(names, rows)
}

// Range creates single-dimension Labels with values 0..n-1.
func Range(name string, n int) (*Labels, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative range length %d", ErrInvalidShape, n)
	}
	if int64(n) > math.MaxInt32+1 {
		return nil, fmt.Errorf("%w: range length %d exceeds int32", ErrNonIntegerValues, n)
	}
	flat := make([]int32, n)
	for i := range flat {
		flat[i] = int32(i)
	}
	return build([]string{name}, flat, n)
}

// Single returns the labels used for blocks with a single sample or property
// and no meaningful index: one entry [0] under the name "_".
func Single() *Labels {
	return Must(build([]string{"_"}, []int32{0}, 1))
}

// Empty returns labels with the given names and no entries.
func Empty(names []string) (*Labels, error) {
	return build(names, nil, 0)
}

// Must panics if err is non-nil. It is intended for labels built from
// constants.
func Must(l *Labels, err error) *Labels {
	if err != nil {
		panic(err)
	}
	return l
}

func build(names []string, flat []int32, count int) (*Labels, error) {
	if err := validateNames(names); err != nil {
		return nil, err
	}

	l := &Labels{
		names:     append([]string(nil), names...),
		values:    flat,
		count:     count,
		positions: make(map[string]int, count),
	}
	for i := 0; i < count; i++ {
		row := l.row(i)
		key := tupleKey(row)
		if first, ok := l.positions[key]; ok {
			return nil, fmt.Errorf("%w: %v appears at positions %d and %d", ErrDuplicateEntry, row, first, i)
		}
		l.positions[key] = i
	}
	return l, nil
}

func validateNames(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if !identifier.MatchString(name) {
			return fmt.Errorf("%w: '%s' is not a valid label name", ErrInvalidName, name)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: '%s' appears more than once", ErrInvalidName, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func tupleKey(tuple []int32) string {
	buf := make([]byte, 0, 4*len(tuple))
	for _, v := range tuple {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v))
	}
	return string(buf)
}

func (l *Labels) row(i int) []int32 {
	w := len(l.names)
	return l.values[i*w : (i+1)*w : (i+1)*w]
}

// Names returns a copy of the label names.
func (l *Labels) Names() []string {
	return append([]string(nil), l.names...)
}

// Size returns the number of names (the width of each entry).
func (l *Labels) Size() int {
	return len(l.names)
}

// Count returns the number of entries.
func (l *Labels) Count() int {
	return l.count
}

// Values returns a copy of all entries.
func (l *Labels) Values() [][]int32 {
	out := make([][]int32, l.count)
	for i := range out {
		out[i] = append([]int32(nil), l.row(i)...)
	}
	return out
}

// Entry returns the i-th entry. It panics if i is out of range.
func (l *Labels) Entry(i int) Entry {
	if i < 0 || i >= l.count {
		panic(fmt.Sprintf("labels: entry %d out of range for %d entries", i, l.count))
	}
	return Entry{names: l.names, values: l.row(i)}
}

// Index returns the position of name among the label names.
func (l *Labels) Index(name string) (int, bool) {
	for i, n := range l.names {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// Column returns a copy of the values for one name.
func (l *Labels) Column(name string) ([]int32, error) {
	j, ok := l.Index(name)
	if !ok {
		return nil, fmt.Errorf("%w: no '%s' dimension in %v", ErrNamesMismatch, name, l.names)
	}
	out := make([]int32, l.count)
	for i := range out {
		out[i] = l.values[i*len(l.names)+j]
	}
	return out, nil
}

// Position returns the index of tuple, or false if it is not present.
func (l *Labels) Position(tuple []int32) (int, bool) {
	if len(tuple) != len(l.names) {
		return -1, false
	}
	i, ok := l.positions[tupleKey(tuple)]
	return i, ok
}

// Contains reports whether tuple is one of the entries.
func (l *Labels) Contains(tuple []int32) bool {
	_, ok := l.Position(tuple)
	return ok
}

// HasNames reports whether l has exactly the given names, in order.
func (l *Labels) HasNames(names []string) bool {
	if len(names) != len(l.names) {
		return false
	}
	for i, n := range names {
		if l.names[i] != n {
			return false
		}
	}
	return true
}

// Equal reports whether both labels have the same names and the same entries
// in the same order.
func (l *Labels) Equal(other *Labels) bool {
	if l == other {
		return true
	}
	if other == nil || !l.HasNames(other.names) || l.count != other.count {
		return false
	}
	for i, v := range l.values {
		if other.values[i] != v {
			return false
		}
	}
	return true
}

// SameEntries reports whether both labels have the same names and the same
// set of entries, regardless of order.
func (l *Labels) SameEntries(other *Labels) bool {
	if other == nil || !l.HasNames(other.names) || l.count != other.count {
		return false
	}
	for key := range l.positions {
		if _, ok := other.positions[key]; !ok {
			return false
		}
	}
	return true
}

// Slice returns the entries in [start, end).
func (l *Labels) Slice(start, end int) *Labels {
	if start < 0 || end > l.count || start > end {
		panic(fmt.Sprintf("labels: slice [%d:%d] out of range for %d entries", start, end, l.count))
	}
	w := len(l.names)
	flat := append([]int32(nil), l.values[start*w:end*w]...)
	return Must(build(l.names, flat, end-start))
}

// Take returns the entries at the given positions, in order. Positions must
// be distinct.
func (l *Labels) Take(indices []int) (*Labels, error) {
	flat := make([]int32, 0, len(indices)*len(l.names))
	for _, i := range indices {
		if i < 0 || i >= l.count {
			return nil, fmt.Errorf("%w: position %d out of range for %d entries", ErrInvalidShape, i, l.count)
		}
		flat = append(flat, l.row(i)...)
	}
	return build(l.names, flat, len(indices))
}

// String renders the labels as a header line followed by one line per entry.
func (l *Labels) String() string {
	const maxShown = 10

	var sb strings.Builder
	fmt.Fprintf(&sb, "Labels(%s)", strings.Join(l.names, ", "))
	for i := 0; i < l.count; i++ {
		if i == maxShown {
			fmt.Fprintf(&sb, "\n  ... %d more", l.count-maxShown)
			break
		}
		fmt.Fprintf(&sb, "\n  %v", l.row(i))
	}
	return sb.String()
}
