package ltn

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeongwoong43/ltn-muttaki/tensor"
)

// TestDiagZips verifies zipped variables index together instead of crossing
func TestDiagZips(t *testing.T) {
	x, err := NewVariable("x", tensor.FromSlice([]float64{0, 1, 2}, 3, 1))
	require.NoError(t, err)
	y, err := NewVariable("y", tensor.FromSlice([]float64{0, 5, 2}, 3, 1))
	require.NoError(t, err)

	zipped, err := Diag(x, y)
	require.NoError(t, err)
	require.Len(t, zipped, 2)
	assert.Equal(t, zipped[0].FreeVars, zipped[1].FreeVars)

	f, err := eqPredicate().Call(zipped[0], zipped[1])
	require.NoError(t, err)
	require.Equal(t, []int{3}, f.Value.Shape)
	// pairwise: (0,0)=1, (1,5)=0, (2,2)=1
	assert.Equal(t, []float64{1, 0, 1}, f.Value.Data)
}

// TestDiagUnequalCounts verifies zipping demands equal individual counts
func TestDiagUnequalCounts(t *testing.T) {
	x, err := NewVariable("x", tensor.FromSlice([]float64{0, 1}, 2, 1))
	require.NoError(t, err)
	y, err := NewVariable("y", tensor.FromSlice([]float64{0, 1, 2}, 3, 1))
	require.NoError(t, err)

	_, err = Diag(x, y)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

// TestDiagRejectsNonVariables verifies only plain variables can be zipped
func TestDiagRejectsNonVariables(t *testing.T) {
	x, err := NewVariable("x", tensor.FromSlice([]float64{0, 1}, 2, 1))
	require.NoError(t, err)
	c := NewConstant(tensor.FromSlice([]float64{1}, 1), false)

	_, err = Diag(x, c)
	assert.Error(t, err)
	_, err = Diag(x)
	assert.Error(t, err)
}

// TestUndiag verifies restoring independent quantification
func TestUndiag(t *testing.T) {
	x, err := NewVariable("x", tensor.FromSlice([]float64{0, 1}, 2, 1))
	require.NoError(t, err)
	y, err := NewVariable("y", tensor.FromSlice([]float64{0, 1}, 2, 1))
	require.NoError(t, err)

	zipped, err := Diag(x, y)
	require.NoError(t, err)
	restored, err := Undiag(zipped...)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, restored[0].FreeVars)
	assert.Equal(t, []string{"y"}, restored[1].FreeVars)

	// back to the cross product
	f, err := eqPredicate().Call(restored[0], restored[1])
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, f.Value.Shape)

	// a term never zipped cannot be restored
	_, err = Undiag(x)
	assert.Error(t, err)
}
