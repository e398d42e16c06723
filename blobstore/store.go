// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return an error satisfying errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// BlobStore stores immutable blobs by name. Names use forward slashes.
type BlobStore interface {
	// Put writes a blob atomically, replacing any previous content.
	Put(ctx context.Context, name string, data []byte) error
	// Get returns the content of a blob.
	Get(ctx context.Context, name string) ([]byte, error)
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only view of a blob.
type Blob interface {
	// Bytes returns the content. The slice is valid until Close and must
	// not be modified.
	Bytes() []byte
	Size() int64
	Close() error
}

// Opener is implemented by stores that can expose a blob without copying
// it, for example through a memory mapping.
type Opener interface {
	Open(ctx context.Context, name string) (Blob, error)
}
