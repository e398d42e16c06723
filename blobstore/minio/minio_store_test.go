// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package minio

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/equistore/blobstore"
)

func TestKeys(t *testing.T) {
	tests := []struct {
		prefix string
		name   string
		key    string
	}{
		{"", "a.eqs", "a.eqs"},
		{"maps/", "a.eqs", "maps/a.eqs"},
		{"maps", "sub/a.eqs", "maps/sub/a.eqs"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			s := NewStore(nil, "bucket", tt.prefix)
			assert.Equal(t, tt.key, s.key(tt.name))
			assert.Equal(t, tt.name, s.name(tt.key))
		})
	}
}

func TestListPrefix(t *testing.T) {
	assert.Equal(t, "sub", NewStore(nil, "b", "").listPrefix("sub"))
	assert.Equal(t, "maps/sub", NewStore(nil, "b", "maps").listPrefix("sub"))
	assert.Equal(t, "maps/", NewStore(nil, "b", "maps/").listPrefix(""))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NotFound"}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("boom")))
}

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	client, err := minio.New("localhost:9000", &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	const bucket = "test-equistore"
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix/")

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "test.eqs", data))

	got, err := store.Get(ctx, "test.eqs")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "test.eqs")

	require.NoError(t, store.Delete(ctx, "test.eqs"))
	_, err = store.Get(ctx, "test.eqs")
	assert.True(t, errors.Is(err, blobstore.ErrNotFound))
}
