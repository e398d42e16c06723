package operations

import (
	"context"
	"time"

	"github.com/born-ml/equistore/internal/backend/cpu"
	"github.com/born-ml/equistore/internal/logging"
	"github.com/born-ml/equistore/internal/parallel"
	"github.com/born-ml/equistore/internal/tensor"
)

// Option configures an operation.
type Option func(*options)

type options struct {
	backend tensor.Backend
	par     parallel.Config
	logger  *logging.Logger
}

// WithBackend sets the numeric backend. The default is the CPU backend.
func WithBackend(b tensor.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithParallel sets how blocks are distributed across goroutines.
func WithParallel(cfg parallel.Config) Option {
	return func(o *options) {
		o.par = cfg
	}
}

// WithLogger sets the logger. Operations log at debug level on success and
// at error level on failure.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		par:    parallel.DefaultConfig(),
		logger: logging.NoopLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.backend == nil {
		o.backend = cpu.NewWithConfig(o.par)
	}
	return o
}

// eachKey runs fn for every key index and stops at the first error.
func (o *options) eachKey(n int, fn func(i int) error) error {
	return parallel.ForEach(context.Background(), n, o.par, func(_ context.Context, i int) error {
		return fn(i)
	})
}

func (o *options) log(op string, blocks int, start time.Time, err error) {
	o.logger.LogOperation(context.Background(), op, blocks, time.Since(start), err)
}
