package labels

import (
	"fmt"
	"iter"
	"strings"
)

// Entry is a read-only view of one label tuple together with its names.
type Entry struct {
	names  []string
	values []int32
}

// Len returns the number of values in the entry.
func (e Entry) Len() int {
	return len(e.values)
}

// At returns the i-th value.
func (e Entry) At(i int) int32 {
	return e.values[i]
}

// Get returns the value for name.
func (e Entry) Get(name string) (int32, bool) {
	for i, n := range e.names {
		if n == name {
			return e.values[i], true
		}
	}
	return 0, false
}

// Values returns a copy of the tuple.
func (e Entry) Values() []int32 {
	return append([]int32(nil), e.values...)
}

// Names returns a copy of the names.
func (e Entry) Names() []string {
	return append([]string(nil), e.names...)
}

// AsMap returns the entry as a name -> value map.
func (e Entry) AsMap() map[string]int32 {
	m := make(map[string]int32, len(e.names))
	for i, n := range e.names {
		m[n] = e.values[i]
	}
	return m
}

// Equal reports whether both entries hold the same tuple under the same names.
func (e Entry) Equal(other Entry) bool {
	if len(e.names) != len(other.names) {
		return false
	}
	for i := range e.names {
		if e.names[i] != other.names[i] || e.values[i] != other.values[i] {
			return false
		}
	}
	return true
}

func (e Entry) String() string {
	parts := make([]string, len(e.names))
	for i, n := range e.names {
		parts[i] = fmt.Sprintf("%s=%d", n, e.values[i])
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// All returns a sequence of (position, entry) pairs in order. The sequence
// can be iterated any number of times.
func (l *Labels) All() iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for i := 0; i < l.count; i++ {
			if !yield(i, Entry{names: l.names, values: l.row(i)}) {
				return
			}
		}
	}
}
