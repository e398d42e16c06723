// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package serialization saves and loads tensor maps in the EQSM binary
// format, to files or to any blobstore.BlobStore.
//
// Example:
//
//	store, err := blobstore.NewLocalStore("data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	opts := serialization.WriterOptions{Compression: serialization.CompressionZstd}
//	if err := serialization.Save(ctx, store, "energies.eqs", m, opts); err != nil {
//	    log.Fatal(err)
//	}
//	m, err = serialization.Load(ctx, store, "energies.eqs", serialization.ReaderOptions{})
package serialization

import (
	"context"
	"io"

	"github.com/born-ml/equistore/blobstore"
	"github.com/born-ml/equistore/internal/parallel"
	"github.com/born-ml/equistore/internal/serialization"
	"github.com/born-ml/equistore/tensormap"
)

// WriterOptions configures Save, SaveFile and Write.
type WriterOptions = serialization.WriterOptions

// ReaderOptions configures Load, LoadFile and Read.
type ReaderOptions = serialization.ReaderOptions

// Header is the decoded JSON header of a serialized map.
type Header = serialization.Header

// Compression selects how the payload is stored.
type Compression = serialization.Compression

// Supported payload compressions.
const (
	CompressionNone = serialization.CompressionNone
	CompressionLZ4  = serialization.CompressionLZ4
	CompressionZstd = serialization.CompressionZstd
)

// ValidationLevel controls the strictness of header validation.
type ValidationLevel = serialization.ValidationLevel

// Validation levels.
const (
	ValidationStrict = serialization.ValidationStrict
	ValidationNormal = serialization.ValidationNormal
	ValidationNone   = serialization.ValidationNone
)

// ValidationError provides detailed information about validation failures.
type ValidationError = serialization.ValidationError

// Errors returned while decoding.
var (
	ErrChecksumMismatch    = serialization.ErrChecksumMismatch
	ErrInvalidMagic        = serialization.ErrInvalidMagic
	ErrUnsupportedVersion  = serialization.ErrUnsupportedVersion
	ErrTruncated           = serialization.ErrTruncated
	ErrPayloadSize         = serialization.ErrPayloadSize
	ErrHeaderTooLarge      = serialization.ErrHeaderTooLarge
	ErrUnknownCompression  = serialization.ErrUnknownCompression
	ErrUnsupportedDataType = serialization.ErrUnsupportedDataType
)

// ParseCompression converts "none", "lz4" or "zstd" to a Compression.
func ParseCompression(s string) (Compression, error) {
	return serialization.ParseCompression(s)
}

// Save encodes m and stores it under name.
func Save(ctx context.Context, store blobstore.BlobStore, name string, m *tensormap.TensorMap, opts WriterOptions) error {
	return serialization.Save(ctx, store, name, m, opts)
}

// Load reads the map stored under name.
func Load(ctx context.Context, store blobstore.BlobStore, name string, opts ReaderOptions) (*tensormap.TensorMap, error) {
	return serialization.Load(ctx, store, name, opts)
}

// LoadMany loads several maps concurrently, keeping the order of names.
func LoadMany(ctx context.Context, store blobstore.BlobStore, names []string, opts ReaderOptions, workers int) ([]*tensormap.TensorMap, error) {
	cfg := parallel.DefaultConfig()
	if workers > 0 {
		cfg.NumWorkers = workers
		cfg.Enabled = workers > 1
	}
	return serialization.LoadMany(ctx, store, names, opts, cfg)
}

// SaveFile writes m to path atomically.
func SaveFile(path string, m *tensormap.TensorMap, opts WriterOptions) error {
	return serialization.SaveFile(path, m, opts)
}

// LoadFile reads the map stored at path.
func LoadFile(path string, opts ReaderOptions) (*tensormap.TensorMap, error) {
	return serialization.LoadFile(path, opts)
}

// Write encodes m to w.
func Write(w io.Writer, m *tensormap.TensorMap, opts WriterOptions) (int64, error) {
	return serialization.Write(w, m, opts)
}

// Read decodes a map from r.
func Read(r io.Reader, opts ReaderOptions) (*tensormap.TensorMap, error) {
	return serialization.Read(r, opts)
}

// Encode returns the serialized form of m.
func Encode(m *tensormap.TensorMap, opts WriterOptions) ([]byte, error) {
	return serialization.Encode(m, opts)
}

// Decode parses a serialized map and its header.
func Decode(data []byte, opts ReaderOptions) (*tensormap.TensorMap, *Header, error) {
	return serialization.Decode(data, opts)
}

// DecodeHeader parses the header of a serialized map without its payload.
func DecodeHeader(data []byte) (*Header, error) {
	return serialization.DecodeHeader(data)
}
