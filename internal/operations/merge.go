package operations

import (
	"github.com/born-ml/equistore/internal/labels"
)

// TensorDimension is the name of the column recording which input map an
// entry of joined labels comes from.
const TensorDimension = "tensor"

// MergeLabels concatenates the labels of one axis coming from several maps.
//
// When every input has the same names and the same set of entries, a
// leading "tensor" column holding the input index is added. When the names
// match and no entry is repeated across inputs, entries are concatenated
// unchanged. Otherwise the original names are dropped and the result has two
// columns, "tensor" and fallback, the latter counting entries within each
// input.
func MergeLabels(all []*labels.Labels, fallback string) (*labels.Labels, error) {
	return mergeWith(all, fallback, chooseMerge(all))
}

type mergeKind int

const (
	mergePrefix     mergeKind = iota // add a "tensor" column
	mergeConcat                      // concatenate unchanged
	mergePositional                  // ("tensor", fallback) counters
)

func chooseMerge(all []*labels.Labels) mergeKind {
	first := all[0]
	names := first.Names()

	identical := true
	for _, l := range all[1:] {
		if !l.HasNames(names) {
			return mergePositional
		}
		if !l.SameEntries(first) {
			identical = false
		}
	}
	if identical {
		return mergePrefix
	}
	// partially overlapping entries fall back to positional labels
	if _, err := labels.Concat(all...); err != nil {
		return mergePositional
	}
	return mergeConcat
}

func mergeWith(all []*labels.Labels, fallback string, kind mergeKind) (*labels.Labels, error) {
	switch kind {
	case mergePrefix:
		first := all[0]
		rows := make([][]int32, 0, first.Count()*len(all))
		for j, l := range all {
			for _, entry := range l.All() {
				rows = append(rows, append([]int32{int32(j)}, entry.Values()...))
			}
		}
		return labels.New(append([]string{TensorDimension}, first.Names()...), rows)
	case mergeConcat:
		return labels.Concat(all...)
	default:
		var rows [][]int32
		for j, l := range all {
			for k := 0; k < l.Count(); k++ {
				rows = append(rows, []int32{int32(j), int32(k)})
			}
		}
		return labels.New([]string{TensorDimension, fallback}, rows)
	}
}

// mergeKeys merges the labels of one axis for every key, perKey[i] holding
// the labels of key i in each input. All keys use the same merge so the
// joined blocks share label names; keys that would merge differently make
// every key use positional labels.
func mergeKeys(perKey [][]*labels.Labels, fallback string) ([]*labels.Labels, error) {
	kind := mergePositional
	for i, all := range perKey {
		k := chooseMerge(all)
		if i == 0 {
			kind = k
		} else if k != kind {
			kind = mergePositional
			break
		}
	}

	out := make([]*labels.Labels, len(perKey))
	for i, all := range perKey {
		merged, err := mergeWith(all, fallback, kind)
		if err != nil {
			return nil, err
		}
		out[i] = merged
	}
	return out, nil
}
