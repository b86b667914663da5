package tensor

import "github.com/pkg/errors"

// BroadcastShapes computes the common shape of a and b under NumPy rules:
// shapes are aligned at their trailing axes, and each axis pair must be equal
// or contain a 1.
func BroadcastShapes(a, b []int) ([]int, error) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]int, n)
	for i := 1; i <= n; i++ {
		da, db := 1, 1
		if i <= len(a) {
			da = a[len(a)-i]
		}
		if i <= len(b) {
			db = b[len(b)-i]
		}
		switch {
		case da == db:
			out[n-i] = da
		case da == 1:
			out[n-i] = db
		case db == 1:
			out[n-i] = da
		default:
			return nil, errors.Errorf("shapes %v and %v are not broadcastable", a, b)
		}
	}
	return out, nil
}

// bcast maps flat indices of a broadcast output back to flat indices of each
// operand. Operand axes of size 1 get stride 0, so the same source element is
// revisited for every broadcast position.
type bcast struct {
	shape   []int
	strides []int
	n       int
	eff     [][]int // per operand, effective strides aligned to the output rank
}

func newBcast(shapes ...[]int) (*bcast, error) {
	out := []int{}
	for _, s := range shapes {
		var err error
		out, err = BroadcastShapes(out, s)
		if err != nil {
			return nil, err
		}
	}
	b := &bcast{
		shape:   out,
		strides: computeStrides(out),
		n:       numElements(out),
		eff:     make([][]int, len(shapes)),
	}
	for op, s := range shapes {
		strides := computeStrides(s)
		eff := make([]int, len(out))
		offset := len(out) - len(s)
		for d := range out {
			if d < offset || s[d-offset] == 1 {
				eff[d] = 0
			} else {
				eff[d] = strides[d-offset]
			}
		}
		b.eff[op] = eff
	}
	return b, nil
}

// at translates output flat index i to the flat index of operand op.
func (b *bcast) at(op, i int) int {
	eff := b.eff[op]
	src := 0
	for d := range b.shape {
		src += (i / b.strides[d] % b.shape[d]) * eff[d]
	}
	return src
}
