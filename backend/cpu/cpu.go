// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/equistore/internal/backend/cpu"
	"github.com/born-ml/equistore/internal/parallel"
	"github.com/born-ml/equistore/tensor"
)

// Backend represents the CPU backend implementation.
//
// CPU backend provides pure Go element-wise and shape operations, with
// large loops split across goroutines, and gonum least-squares solves.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend using every CPU.
//
// Example:
//
//	import (
//	    "github.com/born-ml/equistore/backend/cpu"
//	    "github.com/born-ml/equistore/operations"
//	)
//
//	func main() {
//	    w, err := operations.Solve(x, y, operations.WithBackend(cpu.New()))
//	}
func New() *Backend {
	return internalcpu.New()
}

// NewWithWorkers creates a CPU backend splitting large loops across at most
// workers goroutines. One worker disables parallelism.
func NewWithWorkers(workers int) *Backend {
	cfg := parallel.DefaultConfig()
	cfg.NumWorkers = max(workers, 1)
	cfg.Enabled = workers > 1
	return internalcpu.NewWithConfig(cfg)
}
