// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor map operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Float32 and Float64 arrays
//   - Least squares solves through gonum (LU for square systems, QR otherwise)
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/equistore/backend/cpu"
//	    "github.com/born-ml/equistore/operations"
//	)
//
//	func main() {
//	    backend := cpu.NewWithWorkers(4)
//	    product, err := operations.Multiply(a, operations.MapOperand{Map: b},
//	        operations.WithBackend(backend))
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each operation allocates its
// result and does not share mutable state.
package cpu
