package tensor

import "github.com/pkg/errors"

// Reshape returns a copy of t with a new shape holding the same elements.
func Reshape(t *Tensor, shape ...int) (*Tensor, error) {
	if numElements(shape) != len(t.Data) {
		return nil, errors.Errorf("reshape: cannot view %v as %v", t.Shape, shape)
	}
	out := result(shape, []*Tensor{t}, func(out *Tensor) {
		for i := range t.Data {
			t.Grad[i] += out.Grad[i]
		}
	})
	copy(out.Data, t.Data)
	return out, nil
}

// Unsqueeze inserts a size-1 axis at position dim.
func Unsqueeze(t *Tensor, dim int) (*Tensor, error) {
	if dim < 0 || dim > len(t.Shape) {
		return nil, errors.Errorf("unsqueeze: axis %d out of range for shape %v", dim, t.Shape)
	}
	shape := make([]int, 0, len(t.Shape)+1)
	shape = append(shape, t.Shape[:dim]...)
	shape = append(shape, 1)
	shape = append(shape, t.Shape[dim:]...)
	return Reshape(t, shape...)
}

// Squeeze removes the size-1 axis at position dim.
func Squeeze(t *Tensor, dim int) (*Tensor, error) {
	if dim < 0 || dim >= len(t.Shape) || t.Shape[dim] != 1 {
		return nil, errors.Errorf("squeeze: axis %d of shape %v is not of size 1", dim, t.Shape)
	}
	shape := make([]int, 0, len(t.Shape)-1)
	shape = append(shape, t.Shape[:dim]...)
	shape = append(shape, t.Shape[dim+1:]...)
	return Reshape(t, shape...)
}

// Permute reorders the axes of t by perm, which must be a permutation of
// 0..rank-1.
func Permute(t *Tensor, perm ...int) (*Tensor, error) {
	if len(perm) != len(t.Shape) {
		return nil, errors.Errorf("permute: %v does not permute shape %v", perm, t.Shape)
	}
	seen := make([]bool, len(perm))
	shape := make([]int, len(perm))
	for i, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			return nil, errors.Errorf("permute: %v does not permute shape %v", perm, t.Shape)
		}
		seen[p] = true
		shape[i] = t.Shape[p]
	}
	inStrides := computeStrides(t.Shape)
	outStrides := computeStrides(shape)
	// flat output index i maps to input index via the permuted strides
	srcOf := func(i int) int {
		src := 0
		for d := range shape {
			src += (i / outStrides[d] % shape[d]) * inStrides[perm[d]]
		}
		return src
	}
	out := result(shape, []*Tensor{t}, func(out *Tensor) {
		for i := range out.Data {
			t.Grad[srcOf(i)] += out.Grad[i]
		}
	})
	for i := range out.Data {
		out.Data[i] = t.Data[srcOf(i)]
	}
	return out, nil
}

// Expand broadcasts t to the given shape. Axes of size 1 (or missing leading
// axes) are repeated; the gradient sums over the repeated positions.
func Expand(t *Tensor, shape ...int) (*Tensor, error) {
	bc, err := newBcast(t.Shape, shape)
	if err != nil {
		return nil, err
	}
	if len(bc.shape) != len(shape) {
		return nil, errors.Errorf("expand: cannot expand %v to %v", t.Shape, shape)
	}
	for d := range shape {
		if bc.shape[d] != shape[d] {
			return nil, errors.Errorf("expand: cannot expand %v to %v", t.Shape, shape)
		}
	}
	out := result(shape, []*Tensor{t}, func(out *Tensor) {
		for i := 0; i < bc.n; i++ {
			t.Grad[bc.at(0, i)] += out.Grad[i]
		}
	})
	for i := 0; i < bc.n; i++ {
		out.Data[i] = t.Data[bc.at(0, i)]
	}
	return out, nil
}

// Index selects position i along axis, removing that axis from the result.
func Index(t *Tensor, axis, i int) (*Tensor, error) {
	if axis < 0 || axis >= len(t.Shape) {
		return nil, errors.Errorf("index: axis %d out of range for shape %v", axis, t.Shape)
	}
	if i < 0 || i >= t.Shape[axis] {
		return nil, errors.Errorf("index: position %d out of range for axis %d of shape %v", i, axis, t.Shape)
	}
	shape := make([]int, 0, len(t.Shape)-1)
	shape = append(shape, t.Shape[:axis]...)
	shape = append(shape, t.Shape[axis+1:]...)
	inStrides := computeStrides(t.Shape)
	outStrides := computeStrides(shape)
	srcOf := func(j int) int {
		src := i * inStrides[axis]
		for d := range shape {
			in := d
			if d >= axis {
				in = d + 1
			}
			src += (j / outStrides[d] % shape[d]) * inStrides[in]
		}
		return src
	}
	out := result(shape, []*Tensor{t}, func(out *Tensor) {
		for j := range out.Data {
			t.Grad[srcOf(j)] += out.Grad[j]
		}
	})
	for j := range out.Data {
		out.Data[j] = t.Data[srcOf(j)]
	}
	return out, nil
}

// Concat joins tensors along axis. All other axes must match.
func Concat(axis int, ts ...*Tensor) (*Tensor, error) {
	if len(ts) == 0 {
		return nil, errors.New("concat: no tensors")
	}
	first := ts[0]
	if axis < 0 || axis >= len(first.Shape) {
		return nil, errors.Errorf("concat: axis %d out of range for shape %v", axis, first.Shape)
	}
	shape := append([]int(nil), first.Shape...)
	for _, t := range ts[1:] {
		if len(t.Shape) != len(first.Shape) {
			return nil, errors.Errorf("concat: rank mismatch %v vs %v", first.Shape, t.Shape)
		}
		for d := range t.Shape {
			if d == axis {
				continue
			}
			if t.Shape[d] != first.Shape[d] {
				return nil, errors.Errorf("concat: shape mismatch %v vs %v on axis %d", first.Shape, t.Shape, d)
			}
		}
		shape[axis] += t.Shape[axis]
	}
	// treat each tensor as [outer, own*inner] blocks interleaved along axis
	outer := numElements(shape[:axis])
	inner := numElements(shape[axis+1:])
	out := result(shape, ts, func(out *Tensor) {
		off := 0
		for _, t := range ts {
			block := t.Shape[axis] * inner
			if t.RequiresGrad {
				for o := 0; o < outer; o++ {
					dst := o*block + 0
					src := o*shape[axis]*inner + off
					for j := 0; j < block; j++ {
						t.Grad[dst+j] += out.Grad[src+j]
					}
				}
			}
			off += block
		}
	})
	off := 0
	for _, t := range ts {
		block := t.Shape[axis] * inner
		for o := 0; o < outer; o++ {
			copy(out.Data[o*shape[axis]*inner+off:], t.Data[o*block:(o+1)*block])
		}
		off += block
	}
	return out, nil
}
