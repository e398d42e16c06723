package labels

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

func (l *Labels) checkNames(op string, other *Labels) error {
	if !l.HasNames(other.names) {
		return fmt.Errorf("%w: can not compute %s of labels with names %v and %v",
			ErrNamesMismatch, op, l.names, other.names)
	}
	return nil
}

// Union returns the entries of l followed by the entries of other that are
// not already in l.
func (l *Labels) Union(other *Labels) (*Labels, error) {
	if err := l.checkNames("union", other); err != nil {
		return nil, err
	}
	flat := append([]int32(nil), l.values...)
	count := l.count
	for i := 0; i < other.count; i++ {
		row := other.row(i)
		if !l.Contains(row) {
			flat = append(flat, row...)
			count++
		}
	}
	return build(l.names, flat, count)
}

// Intersection returns the entries of l that are also in other, in the
// order of l.
func (l *Labels) Intersection(other *Labels) (*Labels, error) {
	if err := l.checkNames("intersection", other); err != nil {
		return nil, err
	}
	return l.filter(func(row []int32) bool { return other.Contains(row) })
}

// Difference returns the entries of l that are not in other, in the order
// of l.
func (l *Labels) Difference(other *Labels) (*Labels, error) {
	if err := l.checkNames("difference", other); err != nil {
		return nil, err
	}
	return l.filter(func(row []int32) bool { return !other.Contains(row) })
}

// Disjoint reports whether l and other share no entry. Labels with different
// names are never disjoint.
func (l *Labels) Disjoint(other *Labels) bool {
	if !l.HasNames(other.names) {
		return false
	}
	small, large := l, other
	if small.count > large.count {
		small, large = large, small
	}
	for key := range small.positions {
		if _, ok := large.positions[key]; ok {
			return false
		}
	}
	return true
}

func (l *Labels) filter(keep func(row []int32) bool) (*Labels, error) {
	var flat []int32
	count := 0
	for i := 0; i < l.count; i++ {
		if row := l.row(i); keep(row) {
			flat = append(flat, row...)
			count++
		}
	}
	return build(l.names, flat, count)
}

// Concat appends the entries of all labels, in order. Names must match and
// the result must not contain duplicates.
func Concat(all ...*Labels) (*Labels, error) {
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: nothing to concatenate", ErrInvalidShape)
	}
	first := all[0]
	var flat []int32
	count := 0
	for _, l := range all {
		if err := first.checkNames("concatenation", l); err != nil {
			return nil, err
		}
		flat = append(flat, l.values...)
		count += l.count
	}
	return build(first.names, flat, count)
}

// Select returns the positions of the entries of l matching any entry of
// selection. The selection names must be a subset of the names of l; only
// those dimensions are compared.
func (l *Labels) Select(selection *Labels) (*roaring.Bitmap, error) {
	cols := make([]int, len(selection.names))
	for i, name := range selection.names {
		j, ok := l.Index(name)
		if !ok {
			return nil, fmt.Errorf("%w: selection dimension '%s' is not one of %v",
				ErrNamesMismatch, name, l.names)
		}
		cols[i] = j
	}

	selected := roaring.New()
	projected := make([]int32, len(cols))
	for i := 0; i < l.count; i++ {
		row := l.row(i)
		for k, j := range cols {
			projected[k] = row[j]
		}
		if selection.Contains(projected) {
			selected.Add(uint32(i))
		}
	}
	return selected, nil
}

// Positions converts a selection bitmap to sorted positions.
func Positions(bm *roaring.Bitmap) []int {
	out := make([]int, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}
