package tensor

import "github.com/pkg/errors"

// Backward runs reverse-mode differentiation from t, which must be a scalar.
// Gradients accumulate into the Grad slice of every tensor in the graph whose
// RequiresGrad flag is set; call ZeroGrad between training steps.
func (t *Tensor) Backward() error {
	if len(t.Data) != 1 {
		return errors.Errorf("backward: root must be scalar, got shape %v", t.Shape)
	}
	if !t.RequiresGrad {
		return errors.New("backward: root does not require gradients")
	}
	t.ensureGrad()
	t.Grad[0] = 1

	// topological order over the op graph, then replay in reverse
	var topo []*Tensor
	visited := map[*Tensor]bool{}
	var visit func(n *Tensor)
	visit = func(n *Tensor) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, p := range n.parents {
			visit(p)
		}
		topo = append(topo, n)
	}
	visit(t)

	for i := len(topo) - 1; i >= 0; i-- {
		if topo[i].backFn != nil {
			topo[i].backFn()
		}
	}
	return nil
}

// Parameters filters ts down to the tensors marked trainable. Convenience for
// handing a model's storage to an optimizer.
func Parameters(ts ...*Tensor) []*Tensor {
	var out []*Tensor
	for _, t := range ts {
		if t != nil && t.RequiresGrad {
			out = append(out, t)
		}
	}
	return out
}
