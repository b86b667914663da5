package tensor

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Sum reduces all elements to a scalar.
func Sum(t *Tensor) *Tensor {
	out := result(nil, []*Tensor{t}, func(out *Tensor) {
		g := out.Grad[0]
		for i := range t.Grad {
			t.Grad[i] += g
		}
	})
	out.Data[0] = floats.Sum(t.Data)
	return out
}

// Mean reduces all elements to their scalar mean.
func Mean(t *Tensor) *Tensor {
	return MulScalar(Sum(t), 1/float64(len(t.Data)))
}

// SumAxes sums over the given axes. With keepDims the reduced axes remain as
// size 1, otherwise they are removed.
func SumAxes(t *Tensor, axes []int, keepDims bool) (*Tensor, error) {
	reduce := make([]bool, len(t.Shape))
	for _, a := range axes {
		if a < 0 || a >= len(t.Shape) {
			return nil, errors.Errorf("sum: axis %d out of range for shape %v", a, t.Shape)
		}
		if reduce[a] {
			return nil, errors.Errorf("sum: duplicate axis %d", a)
		}
		reduce[a] = true
	}
	kept := append([]int(nil), t.Shape...)
	for d := range kept {
		if reduce[d] {
			kept[d] = 1
		}
	}
	inStrides := computeStrides(t.Shape)
	keptStrides := computeStrides(kept)
	// map every input element to its cell in the kept-dims output
	dstOf := func(i int) int {
		dst := 0
		for d := range t.Shape {
			if !reduce[d] {
				dst += (i / inStrides[d] % t.Shape[d]) * keptStrides[d]
			}
		}
		return dst
	}
	out := result(kept, []*Tensor{t}, func(out *Tensor) {
		for i := range t.Data {
			t.Grad[i] += out.Grad[dstOf(i)]
		}
	})
	for i, v := range t.Data {
		out.Data[dstOf(i)] += v
	}
	if keepDims {
		return out, nil
	}
	shape := make([]int, 0, len(t.Shape))
	for d, s := range t.Shape {
		if !reduce[d] {
			shape = append(shape, s)
		}
	}
	return Reshape(out, shape...)
}

// MeanAxes averages over the given axes.
func MeanAxes(t *Tensor, axes []int, keepDims bool) (*Tensor, error) {
	s, err := SumAxes(t, axes, keepDims)
	if err != nil {
		return nil, err
	}
	n := 1
	for _, a := range axes {
		n *= t.Shape[a]
	}
	return MulScalar(s, 1/float64(n)), nil
}

// MaxAll returns the largest element. Diagnostic helper, no gradient.
func MaxAll(t *Tensor) float64 { return floats.Max(t.Data) }

// MinAll returns the smallest element. Diagnostic helper, no gradient.
func MinAll(t *Tensor) float64 { return floats.Min(t.Data) }
