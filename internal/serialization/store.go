package serialization

import (
	"context"
	"fmt"

	"github.com/born-ml/equistore/blobstore"
	"github.com/born-ml/equistore/internal/logging"
	"github.com/born-ml/equistore/internal/parallel"
	"github.com/born-ml/equistore/internal/tensormap"
)

// Save encodes m and stores it under name.
func Save(ctx context.Context, store blobstore.BlobStore, name string, m *tensormap.TensorMap, opts WriterOptions) error {
	logger := loggerOrNoop(opts.Logger)

	data, err := Encode(m, opts)
	if err == nil {
		err = store.Put(ctx, name, data)
	}
	logger.LogSave(ctx, name, int64(len(data)), err)
	if err != nil {
		return fmt.Errorf("failed to save %q: %w", name, err)
	}
	return nil
}

// Load reads the map stored under name. Stores implementing
// blobstore.Opener are read without an intermediate copy.
func Load(ctx context.Context, store blobstore.BlobStore, name string, opts ReaderOptions) (*tensormap.TensorMap, error) {
	logger := loggerOrNoop(opts.Logger)

	m, err := load(ctx, store, name, opts)
	blocks := 0
	if m != nil {
		blocks = m.Len()
	}
	logger.LogLoad(ctx, name, blocks, err)
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", name, err)
	}
	return m, nil
}

func load(ctx context.Context, store blobstore.BlobStore, name string, opts ReaderOptions) (*tensormap.TensorMap, error) {
	if opener, ok := store.(blobstore.Opener); ok {
		blob, err := opener.Open(ctx, name)
		if err != nil {
			return nil, err
		}
		// Decode copies every array, so the blob can be closed right after.
		defer func() { _ = blob.Close() }()
		m, _, err := Decode(blob.Bytes(), opts)
		return m, err
	}

	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	m, _, err := Decode(data, opts)
	return m, err
}

// LoadMany loads several maps concurrently. The result has the order of
// names.
func LoadMany(ctx context.Context, store blobstore.BlobStore, names []string, opts ReaderOptions, cfg parallel.Config) ([]*tensormap.TensorMap, error) {
	out := make([]*tensormap.TensorMap, len(names))
	err := parallel.ForEach(ctx, len(names), cfg, func(ctx context.Context, i int) error {
		m, err := Load(ctx, store, names[i], opts)
		if err != nil {
			return err
		}
		out[i] = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func loggerOrNoop(l *logging.Logger) *logging.Logger {
	if l == nil {
		return logging.NoopLogger()
	}
	return l
}
