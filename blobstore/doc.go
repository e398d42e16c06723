// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package blobstore stores serialized tensor maps as named blobs.
//
// BlobStore is the storage contract used by serialization.Save and
// serialization.Load. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests and caching
//   - LocalStore: local filesystem, atomic writes and mmap reads
//   - Throttled: wraps any store with a bytes-per-second limit
//   - minio.Store: MinIO and S3-compatible servers
//   - s3.Store: Amazon S3 with multipart uploads
//
// Stores that can hand out a read-only view of a blob without copying it
// also implement Opener.
package blobstore
