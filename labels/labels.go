// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package labels provides Labels, the named sets of integer tuples that
// index the keys of a tensor map and every axis of its blocks.
//
// Example:
//
//	keys, err := labels.New([]string{"center", "neighbor"}, [][]int32{{1, 1}, {1, 8}})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pos, ok := keys.Position([]int32{1, 8}) // 1, true
package labels

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/born-ml/equistore/internal/labels"
)

// Labels is a named, ordered set of unique integer tuples.
type Labels = labels.Labels

// Entry is a read-only view of one label tuple together with its names.
type Entry = labels.Entry

// Errors returned by Labels constructors and set operations.
var (
	ErrInvalidName      = labels.ErrInvalidName
	ErrNonIntegerValues = labels.ErrNonIntegerValues
	ErrDuplicateEntry   = labels.ErrDuplicateEntry
	ErrInvalidShape     = labels.ErrInvalidShape
	ErrNamesMismatch    = labels.ErrNamesMismatch
)

// New creates Labels from names and one tuple per entry.
func New(names []string, values [][]int32) (*Labels, error) {
	return labels.New(names, values)
}

// FromInt64 creates Labels from int64 tuples.
func FromInt64(names []string, values [][]int64) (*Labels, error) {
	return labels.FromInt64(names, values)
}

// FromFloat64 creates Labels from floating point tuples holding integers.
func FromFloat64(names []string, values [][]float64) (*Labels, error) {
	return labels.FromFloat64(names, values)
}

// Range creates single-dimension Labels with entries 0..n-1.
func Range(name string, n int) (*Labels, error) {
	return labels.Range(name, n)
}

// Single returns the labels used for maps holding one block.
func Single() *Labels {
	return labels.Single()
}

// Empty creates Labels with names but no entries.
func Empty(names []string) (*Labels, error) {
	return labels.Empty(names)
}

// Must panics if err is non-nil.
func Must(l *Labels, err error) *Labels {
	return labels.Must(l, err)
}

// Concat appends labels sharing the same names. Entries must stay unique.
func Concat(all ...*Labels) (*Labels, error) {
	return labels.Concat(all...)
}

// Positions converts a selection bitmap returned by Labels.Select to sorted
// positions.
func Positions(bm *roaring.Bitmap) []int {
	return labels.Positions(bm)
}
