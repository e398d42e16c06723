// Package cpu implements the CPU numeric backend for labeled blocks.
package cpu

import (
	"fmt"

	"github.com/born-ml/equistore/internal/parallel"
	"github.com/born-ml/equistore/internal/tensor"
)

// CPUBackend implements tensor operations on CPU. Element loops are split
// across goroutines for large arrays; linear solves go through gonum.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with explicit parallelism settings.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition of two arrays of identical shape.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.binaryResult("add", a, b)
	out, x, y := tensor.Storage(result), tensor.Storage(a), tensor.Storage(b)
	parallel.For(len(out), func(i int) {
		out[i] = x[i] + y[i]
	}, cpu.par)
	tensor.Round(result)
	return result
}

// Mul performs element-wise multiplication of two arrays of identical shape.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.binaryResult("mul", a, b)
	out, x, y := tensor.Storage(result), tensor.Storage(a), tensor.Storage(b)
	parallel.For(len(out), func(i int) {
		out[i] = x[i] * y[i]
	}, cpu.par)
	tensor.Round(result)
	return result
}

// MulScalar multiplies every element by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType())
	if err != nil {
		panic(fmt.Sprintf("mulscalar: failed to create result tensor: %v", err))
	}
	out, in := tensor.Storage(result), tensor.Storage(x)
	parallel.For(len(out), func(i int) {
		out[i] = in[i] * scalar
	}, cpu.par)
	tensor.Round(result)
	return result
}

func (cpu *CPUBackend) binaryResult(op string, a, b *tensor.RawTensor) *tensor.RawTensor {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("%s: shape mismatch %v vs %v", op, a.Shape(), b.Shape()))
	}
	result, err := tensor.NewRaw(a.Shape(), tensor.Promote(a.DType(), b.DType()))
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}
