package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// numericGrad estimates dLoss/dParam by central differences. loss must
// rebuild the graph from scratch on every call.
func numericGrad(t *testing.T, param *Tensor, loss func() *Tensor) []float64 {
	t.Helper()
	const h = 1e-6
	grad := make([]float64, len(param.Data))
	for i := range param.Data {
		orig := param.Data[i]
		param.Data[i] = orig + h
		up, err := loss().Item()
		require.NoError(t, err)
		param.Data[i] = orig - h
		down, err := loss().Item()
		require.NoError(t, err)
		param.Data[i] = orig
		grad[i] = (up - down) / (2 * h)
	}
	return grad
}

// checkGrad compares the backward gradient of loss() against central
// differences.
func checkGrad(t *testing.T, param *Tensor, loss func() *Tensor) {
	t.Helper()
	want := numericGrad(t, param, loss)
	param.Grad = nil
	l := loss()
	require.NoError(t, l.Backward())
	require.NotNil(t, param.Grad)
	for i := range want {
		if math.Abs(want[i]-param.Grad[i]) > 1e-4 {
			t.Errorf("grad[%d]: numeric %v, backward %v", i, want[i], param.Grad[i])
		}
	}
}

// TestBackwardSimpleChain verifies d(2*w^2)/dw = 4w
func TestBackwardSimpleChain(t *testing.T) {
	w := FromSlice([]float64{3}, 1)
	w.RequiresGrad = true

	sq, err := Mul(w, w)
	require.NoError(t, err)
	loss := Sum(MulScalar(sq, 2))
	require.NoError(t, loss.Backward())
	almostEqual(t, 12, w.Grad[0], 1e-9, "d(2w^2)/dw at w=3")
}

// TestBackwardRequiresScalar verifies the root constraint
func TestBackwardRequiresScalar(t *testing.T) {
	w := FromSlice([]float64{1, 2}, 2)
	w.RequiresGrad = true
	doubled := MulScalar(w, 2)
	require.Error(t, doubled.Backward())
}

// TestBackwardBroadcast verifies gradients sum over broadcast axes
func TestBackwardBroadcast(t *testing.T) {
	w := FromSlice([]float64{0.3, -0.6}, 2)
	w.RequiresGrad = true
	x := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 3, 2)

	checkGrad(t, w, func() *Tensor {
		prod, err := Mul(x, w) // w broadcast over rows
		require.NoError(t, err)
		return Sum(prod)
	})
}

// TestBackwardDivMaximum verifies nonlinear binary op gradients
func TestBackwardDivMaximum(t *testing.T) {
	w := FromSlice([]float64{0.7, 2.5, -1.2}, 3)
	w.RequiresGrad = true
	b := FromSlice([]float64{1.5, 0.5, 2}, 3)

	checkGrad(t, w, func() *Tensor {
		q, err := Div(w, b)
		require.NoError(t, err)
		m, err := Maximum(q, b)
		require.NoError(t, err)
		return Sum(m)
	})
}

// TestBackwardUnaryChain verifies exp/log/pow/sigmoid gradients
func TestBackwardUnaryChain(t *testing.T) {
	w := FromSlice([]float64{0.2, 0.9, 1.7}, 3)
	w.RequiresGrad = true

	checkGrad(t, w, func() *Tensor {
		return Sum(Sigmoid(Pow(AddScalar(w, 1), 2)))
	})
	w.ZeroGrad()
	checkGrad(t, w, func() *Tensor {
		return Sum(Log(Exp(w)))
	})
}

// TestBackwardShapeOps verifies permute/expand/index/concat gradients
func TestBackwardShapeOps(t *testing.T) {
	w := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	w.RequiresGrad = true

	checkGrad(t, w, func() *Tensor {
		p, err := Permute(w, 1, 0)
		require.NoError(t, err)
		row, err := Index(p, 0, 1)
		require.NoError(t, err)
		return Sum(Pow(row, 2))
	})

	w.Grad = nil
	checkGrad(t, w, func() *Tensor {
		u, err := Unsqueeze(w, 2)
		require.NoError(t, err)
		e, err := Expand(u, 2, 3, 2)
		require.NoError(t, err)
		return Sum(Mul2(e, e))
	})

	w.Grad = nil
	checkGrad(t, w, func() *Tensor {
		c, err := Concat(0, w, w)
		require.NoError(t, err)
		return Sum(Pow(c, 3))
	})
}

// Mul2 is a test shorthand for Mul that must not fail.
func Mul2(a, b *Tensor) *Tensor {
	out, err := Mul(a, b)
	if err != nil {
		panic(err)
	}
	return out
}

// TestBackwardReduceAxes verifies SumAxes/MeanAxes gradients
func TestBackwardReduceAxes(t *testing.T) {
	w := FromSlice([]float64{0.1, 0.4, 0.9, 1.6, 2.5, 3.6}, 2, 3)
	w.RequiresGrad = true

	checkGrad(t, w, func() *Tensor {
		m, err := MeanAxes(Pow(w, 2), []int{1}, false)
		if err != nil {
			panic(err)
		}
		return Sum(Pow(m, 2))
	})
}

// TestBackwardWhere verifies gradients route to the selected branch only
func TestBackwardWhere(t *testing.T) {
	w := FromSlice([]float64{1, -2, 3}, 3)
	w.RequiresGrad = true
	cond := FromSlice([]float64{1, 0, 1}, 3)

	out, err := Where(cond, w, Scalar(0))
	require.NoError(t, err)
	loss := Sum(out)
	require.NoError(t, loss.Backward())
	require.Equal(t, []float64{1, 0, 1}, w.Grad)
}

// TestBackwardMatMul verifies matrix multiplication gradients
func TestBackwardMatMul(t *testing.T) {
	w := FromSlice([]float64{0.5, -0.3, 0.8, 0.1, -0.7, 0.2}, 2, 3)
	w.RequiresGrad = true
	x := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 3, 2)

	checkGrad(t, w, func() *Tensor {
		out, err := MatMul(w, x)
		if err != nil {
			panic(err)
		}
		return Sum(Pow(out, 2))
	})
}

// TestBackwardMatMulBatched verifies gradients flow through the flattened
// batch path of MatMul
func TestBackwardMatMulBatched(t *testing.T) {
	w := FromSlice([]float64{0.4, -0.2, 0.9}, 3, 1)
	w.RequiresGrad = true
	x := FromSlice([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, 2, 2, 3)
	x.RequiresGrad = true

	for _, param := range []*Tensor{w, x} {
		checkGrad(t, param, func() *Tensor {
			out, err := MatMul(x, w)
			if err != nil {
				panic(err)
			}
			return Sum(Pow(out, 2))
		})
	}
}

// TestGradAccumulation verifies gradients add across backward calls until
// cleared
func TestGradAccumulation(t *testing.T) {
	w := FromSlice([]float64{2}, 1)
	w.RequiresGrad = true

	for i := 0; i < 2; i++ {
		l := Sum(MulScalar(w, 3))
		require.NoError(t, l.Backward())
	}
	almostEqual(t, 6, w.Grad[0], 1e-12, "accumulated gradient")

	w.ZeroGrad()
	almostEqual(t, 0, w.Grad[0], 0, "cleared gradient")
}

// TestParameters verifies trainable filtering
func TestParameters(t *testing.T) {
	a := New(2)
	b := New(2)
	b.RequiresGrad = true
	params := Parameters(a, b, nil)
	require.Len(t, params, 1)
	require.Same(t, b, params[0])
}
