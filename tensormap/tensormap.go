// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensormap provides TensorMap, a set of blocks indexed by key
// labels.
//
// Example:
//
//	m, err := tensormap.New(keys, []*block.Block{b0, b1})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for key, b := range m.All() {
//	    fmt.Println(key, b.Shape())
//	}
package tensormap

import (
	"github.com/born-ml/equistore/block"
	"github.com/born-ml/equistore/internal/tensormap"
	"github.com/born-ml/equistore/labels"
)

// TensorMap associates one block with every key entry.
type TensorMap = tensormap.TensorMap

// ErrInvalidMap is returned when keys and blocks can not form a map.
var ErrInvalidMap = tensormap.ErrInvalidMap

// New creates a map from keys and one block per key, in key order.
func New(keys *labels.Labels, blocks []*block.Block) (*TensorMap, error) {
	return tensormap.New(keys, blocks)
}
