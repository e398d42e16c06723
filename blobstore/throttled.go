// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package blobstore

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttled limits the bytes per second read from and written to a store.
type Throttled struct {
	store   BlobStore
	limiter *rate.Limiter
}

// NewThrottled wraps store with a limit of bytesPerSec. The burst equals
// one second worth of bytes. A non-positive limit disables throttling.
func NewThrottled(store BlobStore, bytesPerSec int) *Throttled {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if bytesPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec)
	}
	return &Throttled{store: store, limiter: limiter}
}

// wait blocks until n bytes are available. Requests larger than the burst
// are split.
func (t *Throttled) wait(ctx context.Context, n int) error {
	if t.limiter.Limit() == rate.Inf {
		return nil
	}
	burst := t.limiter.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := t.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// Put waits for len(data) bytes then writes the blob.
func (t *Throttled) Put(ctx context.Context, name string, data []byte) error {
	if err := t.wait(ctx, len(data)); err != nil {
		return err
	}
	return t.store.Put(ctx, name, data)
}

// Get reads the blob then waits for its size in bytes.
func (t *Throttled) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := t.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := t.wait(ctx, len(data)); err != nil {
		return nil, err
	}
	return data, nil
}

// Delete is not throttled.
func (t *Throttled) Delete(ctx context.Context, name string) error {
	return t.store.Delete(ctx, name)
}

// List is not throttled.
func (t *Throttled) List(ctx context.Context, prefix string) ([]string, error) {
	return t.store.List(ctx, prefix)
}
