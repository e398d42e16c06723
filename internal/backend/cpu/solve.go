package cpu

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/equistore/internal/tensor"
)

// Solve returns w minimizing ||a·w - b||₂ for a (m×n) and b (m×k).
//
// Square systems are solved exactly through an LU factorization, taller
// systems (values stacked with gradients) in the least-squares sense through
// QR. Ill-conditioned systems still produce a result; singular ones return
// tensor.ErrSingular.
func (cpu *CPUBackend) Solve(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	if a.Dims() != 2 || b.Dims() != 2 {
		panic(fmt.Sprintf("solve: only 2D tensors supported, got %dD and %dD", a.Dims(), b.Dims()))
	}

	m, n := a.Dim(0), a.Dim(1)
	k := b.Dim(1)
	if b.Dim(0) != m {
		panic(fmt.Sprintf("solve: row mismatch [%d,%d] vs [%d,%d]", m, n, b.Dim(0), k))
	}

	result, err := tensor.NewRaw(tensor.Shape{n, k}, tensor.Promote(a.DType(), b.DType()))
	if err != nil {
		panic(fmt.Sprintf("solve: failed to create result tensor: %v", err))
	}
	if n == 0 || k == 0 {
		return result, nil
	}
	if m == 0 {
		return nil, fmt.Errorf("%w: no equations for %d unknowns", tensor.ErrSingular, n)
	}

	A := mat.NewDense(m, n, a.Data())
	B := mat.NewDense(m, k, b.Data())

	var w mat.Dense
	if err := w.Solve(A, B); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, fmt.Errorf("%w: %v", tensor.ErrSingular, err)
		}
	}

	out := tensor.Storage(result)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			out[i*k+j] = w.At(i, j)
		}
	}
	tensor.Round(result)
	return result, nil
}
