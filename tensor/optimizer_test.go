package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// quadraticLoss returns (w0-3)^2 + (w1+1)^2 as a fresh graph.
func quadraticLoss(w *Tensor) *Tensor {
	target := FromSlice([]float64{3, -1}, 2)
	diff, err := Sub(w, target)
	if err != nil {
		panic(err)
	}
	return Sum(Pow(diff, 2))
}

// TestSGDConverges verifies plain SGD reaches the quadratic minimum
func TestSGDConverges(t *testing.T) {
	w := FromSlice([]float64{0, 0}, 2)
	w.RequiresGrad = true
	opt := NewSGD([]*Tensor{w}, 0.1)

	for i := 0; i < 200; i++ {
		opt.ZeroGrad()
		loss := quadraticLoss(w)
		require.NoError(t, loss.Backward())
		opt.Step()
	}
	almostEqual(t, 3, w.Data[0], 1e-6, "w[0]")
	almostEqual(t, -1, w.Data[1], 1e-6, "w[1]")
}

// TestSGDMomentum verifies the momentum path also converges
func TestSGDMomentum(t *testing.T) {
	w := FromSlice([]float64{5, 5}, 2)
	w.RequiresGrad = true
	opt := NewSGDWithMomentum([]*Tensor{w}, 0.05, 0.9)

	for i := 0; i < 300; i++ {
		opt.ZeroGrad()
		loss := quadraticLoss(w)
		require.NoError(t, loss.Backward())
		opt.Step()
	}
	almostEqual(t, 3, w.Data[0], 1e-4, "w[0]")
	almostEqual(t, -1, w.Data[1], 1e-4, "w[1]")
}

// TestAdamConverges verifies Adam reaches the quadratic minimum
func TestAdamConverges(t *testing.T) {
	w := FromSlice([]float64{10, -10}, 2)
	w.RequiresGrad = true
	opt := NewAdam([]*Tensor{w}, 0.5)

	for i := 0; i < 500; i++ {
		opt.ZeroGrad()
		loss := quadraticLoss(w)
		require.NoError(t, loss.Backward())
		opt.Step()
	}
	if math.Abs(w.Data[0]-3) > 1e-2 || math.Abs(w.Data[1]+1) > 1e-2 {
		t.Errorf("Adam did not converge: %v", w.Data)
	}
}

// TestOptimizerNames verifies the Name accessors
func TestOptimizerNames(t *testing.T) {
	w := New(1)
	w.RequiresGrad = true
	require.Equal(t, "sgd", NewSGD([]*Tensor{w}, 0.1).Name())
	require.Equal(t, "adam", NewAdam([]*Tensor{w}, 0.1).Name())
}
