package cpu

import (
	"fmt"

	"github.com/born-ml/equistore/internal/tensor"
)

// Reshape returns an array with the same data but a different shape.
// Arrays are immutable, so the result shares storage with t.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: invalid shape: %v", err))
	}

	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: incompatible shapes: %v -> %v (different number of elements)",
			t.Shape(), newShape))
	}

	result, err := t.WithShape(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

// Transpose permutes the dimensions of t. With no axes the order is reversed.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	// Default: reverse all dimensions
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: axes length %d != ndim %d", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}

	result, err := tensor.NewRaw(newShape, t.DType())
	if err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}

	transposeData(result, t, axes)
	return result
}

// MoveAxis moves axis from to position to, keeping the relative order of the
// other axes. Negative positions count from the end.
func (cpu *CPUBackend) MoveAxis(t *tensor.RawTensor, from, to int) *tensor.RawTensor {
	ndim := t.Dims()
	if from < 0 {
		from += ndim
	}
	if to < 0 {
		to += ndim
	}
	if from < 0 || from >= ndim || to < 0 || to >= ndim {
		panic(fmt.Sprintf("moveaxis: axes %d -> %d out of range for %dD tensor", from, to, ndim))
	}
	if from == to {
		return t
	}

	axes := make([]int, 0, ndim)
	for ax := 0; ax < ndim; ax++ {
		if ax != from {
			axes = append(axes, ax)
		}
	}
	axes = append(axes[:to], append([]int{from}, axes[to:]...)...)
	return cpu.Transpose(t, axes...)
}

// transposeData walks the output in row-major order and gathers each
// element from the permuted input position.
func transposeData(result, t *tensor.RawTensor, axes []int) {
	out := tensor.Storage(result)
	if len(out) == 0 {
		return
	}
	in := tensor.Storage(t)
	inStrides := t.Shape().ComputeStrides()
	outShape := result.Shape()

	// stride in the input for each output axis
	gather := make([]int, len(axes))
	for i, ax := range axes {
		gather[i] = inStrides[ax]
	}

	idx := make([]int, len(outShape))
	for o := range out {
		offset := 0
		for d, v := range idx {
			offset += v * gather[d]
		}
		out[o] = in[offset]

		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < outShape[d] {
				break
			}
			idx[d] = 0
		}
	}
}

// Cat concatenates arrays along the specified dimension.
//
// All arrays must have the same shape except along the concatenation dimension.
// Supports negative dim indexing (-1 = last dimension).
//
// Example:
//
//	a, _ := tensor.FromRows([][]float64{{1, 2}})
//	b, _ := tensor.FromRows([][]float64{{3, 4, 5}})
//	c := backend.Cat([]*tensor.RawTensor{a, b}, 1) // Shape: [1, 5]
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	shape := tensors[0].Shape()
	ndim := len(shape)
	dtype := tensors[0].DType()

	if dim < 0 {
		dim = ndim + dim
	}

	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("cat: dimension %d out of range for %dD tensor", dim, ndim))
	}

	// Validate shapes and calculate total size along concat dimension
	totalDim := 0
	for i, t := range tensors {
		tShape := t.Shape()
		if len(tShape) != ndim {
			panic(fmt.Sprintf("cat: tensor %d has %d dimensions, expected %d", i, len(tShape), ndim))
		}
		dtype = tensor.Promote(dtype, t.DType())

		for d := 0; d < ndim; d++ {
			if d == dim {
				totalDim += tShape[d]
			} else if tShape[d] != shape[d] {
				panic(fmt.Sprintf("cat: tensor %d dimension %d is %d, expected %d", i, d, tShape[d], shape[d]))
			}
		}
	}

	outShape := shape.Clone()
	outShape[dim] = totalDim

	result, err := tensor.NewRaw(outShape, dtype)
	if err != nil {
		panic(fmt.Sprintf("cat: %v", err))
	}

	// outer: product of dims before dim; inner: product of dims after dim
	outer := tensor.Shape(shape[:dim]).NumElements()
	inner := tensor.Shape(shape[dim+1:]).NumElements()

	out := tensor.Storage(result)
	outRow := totalDim * inner
	offset := 0
	for _, t := range tensors {
		src := tensor.Storage(t)
		chunk := t.Dim(dim) * inner
		for o := 0; o < outer; o++ {
			copy(out[o*outRow+offset:o*outRow+offset+chunk], src[o*chunk:(o+1)*chunk])
		}
		offset += chunk
	}

	return result
}

// Take selects entries along dim, in the order given by indices. Indices may
// repeat; an empty list produces a zero-length axis.
func (cpu *CPUBackend) Take(x *tensor.RawTensor, dim int, indices []int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)
	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("take: dimension %d out of range for %dD tensor", dim, ndim))
	}
	for _, idx := range indices {
		if idx < 0 || idx >= shape[dim] {
			panic(fmt.Sprintf("take: index %d out of range for axis %d with length %d", idx, dim, shape[dim]))
		}
	}

	outShape := shape.Clone()
	outShape[dim] = len(indices)
	result, err := tensor.NewRaw(outShape, x.DType())
	if err != nil {
		panic(fmt.Sprintf("take: %v", err))
	}

	outer := tensor.Shape(shape[:dim]).NumElements()
	inner := tensor.Shape(shape[dim+1:]).NumElements()

	src, out := tensor.Storage(x), tensor.Storage(result)
	for o := 0; o < outer; o++ {
		srcBase := o * shape[dim] * inner
		outBase := o * len(indices) * inner
		for j, idx := range indices {
			copy(out[outBase+j*inner:outBase+(j+1)*inner], src[srcBase+idx*inner:srcBase+(idx+1)*inner])
		}
	}
	return result
}
