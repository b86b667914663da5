package ltn

import (
	"github.com/pkg/errors"

	"github.com/yeongwoong43/ltn-muttaki/tensor"
)

// align re-expresses the values of several terms over the union of their free
// variables, in first-seen order: existing batch axes are permuted into the
// union order, size-1 axes are inserted for variables a term does not depend
// on, and everything is expanded to the common batch shape. Feature axes stay
// trailing and untouched.
//
// After alignment the operands broadcast elementwise, and the result of any
// elementwise operation over them has exactly the union as its free
// variables.
func align(terms ...*Term) (vars []string, batch []int, aligned []*tensor.Tensor, err error) {
	for _, t := range terms {
		for _, l := range t.FreeVars {
			n := t.Value.Shape[t.axisOf(l)]
			at := -1
			for i, u := range vars {
				if u == l {
					at = i
					break
				}
			}
			if at < 0 {
				vars = append(vars, l)
				batch = append(batch, n)
			} else if batch[at] != n {
				return nil, nil, nil, errors.Wrapf(ErrDimensionMismatch,
					"variable %q has %d individuals in one term and %d in another", l, batch[at], n)
			}
		}
	}

	aligned = make([]*tensor.Tensor, len(terms))
	for i, t := range terms {
		v, err := alignOne(t, vars, batch)
		if err != nil {
			return nil, nil, nil, err
		}
		aligned[i] = v
	}
	return vars, batch, aligned, nil
}

func alignOne(t *Term, vars []string, batch []int) (*tensor.Tensor, error) {
	// permute the term's batch axes into union order, features last
	perm := make([]int, 0, t.Value.Rank())
	for _, u := range vars {
		if ax := t.axisOf(u); ax >= 0 {
			perm = append(perm, ax)
		}
	}
	for ax := len(t.FreeVars); ax < t.Value.Rank(); ax++ {
		perm = append(perm, ax)
	}
	v, err := tensor.Permute(t.Value, perm...)
	if err != nil {
		return nil, err
	}

	// insert size-1 axes for union variables the term does not depend on
	for pos, u := range vars {
		if t.axisOf(u) < 0 {
			if v, err = tensor.Unsqueeze(v, pos); err != nil {
				return nil, err
			}
		}
	}

	target := append([]int(nil), batch...)
	target = append(target, v.Shape[len(vars):]...)
	return tensor.Expand(v, target...)
}

// removeLabels returns vars without the given labels, preserving order.
func removeLabels(vars []string, labels []string) []string {
	drop := make(map[string]bool, len(labels))
	for _, l := range labels {
		drop[l] = true
	}
	out := make([]string, 0, len(vars))
	for _, v := range vars {
		if !drop[v] {
			out = append(out, v)
		}
	}
	return out
}
