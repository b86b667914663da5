// Package tensor provides row-major float64 tensors with NumPy-style
// broadcasting and reverse-mode automatic differentiation.
//
// Every operation returns a fresh tensor; inputs are never mutated. When any
// input participates in gradient computation the result records a backward
// closure, so calling Backward on a scalar result accumulates gradients into
// every upstream tensor whose RequiresGrad flag is set.
//
// Example:
//
//	w := tensor.FromSlice([]float64{0.5}, 1)
//	w.RequiresGrad = true
//	loss := tensor.MulScalar(tensor.Mul(w, w), 2) // 2*w^2
//	loss.Backward()
//	// w.Grad[0] == 4*w.Data[0]
package tensor

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
)

// Tensor is a dense row-major n-dimensional array of float64 values.
//
// Data holds the elements in row-major order and Shape the extent of each
// axis. A tensor with an empty Shape is a scalar with exactly one element.
// Grad, when non-nil, has the same length as Data.
type Tensor struct {
	Data  []float64
	Shape []int

	// Grad accumulates dLoss/dData during Backward. Allocated whenever the
	// tensor participates in gradient computation.
	Grad []float64

	// RequiresGrad marks the underlying storage as a trainable parameter or
	// as an intermediate that must propagate gradients.
	RequiresGrad bool

	parents []*Tensor
	backFn  func()
}

// New creates a zero-filled tensor with the given shape.
// An empty shape yields a scalar.
func New(shape ...int) *Tensor {
	return &Tensor{
		Data:  make([]float64, numElements(shape)),
		Shape: append([]int(nil), shape...),
	}
}

// FromSlice creates a tensor wrapping a copy of data with the given shape.
// It panics if the element count does not match; shapes are programmer input,
// not runtime data.
func FromSlice(data []float64, shape ...int) *Tensor {
	if len(data) != numElements(shape) {
		panic(fmt.Sprintf("tensor: %d values cannot fill shape %v", len(data), shape))
	}
	t := New(shape...)
	copy(t.Data, data)
	return t
}

// Scalar creates a 0-dimensional tensor holding v.
func Scalar(v float64) *Tensor {
	t := New()
	t.Data[0] = v
	return t
}

// Zeros creates a zero-filled tensor. Alias of New, kept for readability at
// call sites that pair it with Ones.
func Zeros(shape ...int) *Tensor { return New(shape...) }

// Ones creates a tensor filled with 1.
func Ones(shape ...int) *Tensor { return Full(1, shape...) }

// Full creates a tensor filled with v.
func Full(v float64, shape ...int) *Tensor {
	t := New(shape...)
	for i := range t.Data {
		t.Data[i] = v
	}
	return t
}

// Rand creates a tensor with uniform values in [0,1).
func Rand(shape ...int) *Tensor {
	t := New(shape...)
	for i := range t.Data {
		t.Data[i] = rand.Float64()
	}
	return t
}

// Randn creates a tensor with standard normal values.
func Randn(shape ...int) *Tensor {
	t := New(shape...)
	for i := range t.Data {
		t.Data[i] = rand.NormFloat64()
	}
	return t
}

// Size returns the total number of elements.
func (t *Tensor) Size() int { return len(t.Data) }

// Rank returns the number of axes.
func (t *Tensor) Rank() int { return len(t.Shape) }

// Item returns the single element of a scalar tensor.
func (t *Tensor) Item() (float64, error) {
	if len(t.Data) != 1 {
		return 0, errors.Errorf("tensor: Item on tensor of shape %v", t.Shape)
	}
	return t.Data[0], nil
}

// At returns the element at the given multi-index.
func (t *Tensor) At(idx ...int) float64 {
	return t.Data[t.flatIndex(idx)]
}

// Set assigns the element at the given multi-index.
func (t *Tensor) Set(v float64, idx ...int) {
	t.Data[t.flatIndex(idx)] = v
}

func (t *Tensor) flatIndex(idx []int) int {
	if len(idx) != len(t.Shape) {
		panic(fmt.Sprintf("tensor: index %v into shape %v", idx, t.Shape))
	}
	strides := computeStrides(t.Shape)
	flat := 0
	for d, i := range idx {
		if i < 0 || i >= t.Shape[d] {
			panic(fmt.Sprintf("tensor: index %v out of range for shape %v", idx, t.Shape))
		}
		flat += i * strides[d]
	}
	return flat
}

// Clone returns a deep copy of data and shape. The copy does not carry the
// autodiff history or gradient of the original.
func (t *Tensor) Clone() *Tensor {
	c := New(t.Shape...)
	copy(c.Data, t.Data)
	return c
}

// Detach returns a view-free copy cut off from the autodiff graph.
func (t *Tensor) Detach() *Tensor { return t.Clone() }

// ZeroGrad resets the accumulated gradient to zero.
func (t *Tensor) ZeroGrad() {
	for i := range t.Grad {
		t.Grad[i] = 0
	}
}

func (t *Tensor) ensureGrad() {
	if t.Grad == nil {
		t.Grad = make([]float64, len(t.Data))
	}
}

// result builds an op output over the given parents, wiring the autodiff
// graph when any parent tracks gradients. back runs during Backward and must
// accumulate into the parents' Grad slices.
func result(shape []int, parents []*Tensor, back func(out *Tensor)) *Tensor {
	out := New(shape...)
	for _, p := range parents {
		if p.RequiresGrad {
			out.RequiresGrad = true
			break
		}
	}
	if out.RequiresGrad && back != nil {
		out.ensureGrad()
		for _, p := range parents {
			if p.RequiresGrad {
				p.ensureGrad()
			}
		}
		out.parents = parents
		out.backFn = func() { back(out) }
	}
	return out
}

// String renders small tensors for debugging.
func (t *Tensor) String() string {
	if len(t.Data) <= 8 {
		return fmt.Sprintf("Tensor(shape=%v, data=%v)", t.Shape, t.Data)
	}
	return fmt.Sprintf("Tensor(shape=%v, data=%v...)", t.Shape, t.Data[:8])
}

func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// computeStrides returns row-major strides for shape.
func computeStrides(shape []int) []int {
	strides := make([]int, len(shape))
	s := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = s
		s *= shape[i]
	}
	return strides
}
