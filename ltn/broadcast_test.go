package ltn

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeongwoong43/ltn-muttaki/tensor"
)

// TestAlignUnion verifies the variable union is built in first-seen order and
// every operand is expanded onto the common batch shape
func TestAlignUnion(t *testing.T) {
	x, err := NewVariable("x", tensor.FromSlice([]float64{1, 2, 3}, 3))
	require.NoError(t, err)
	y, err := NewVariable("y", tensor.FromSlice([]float64{10, 20}, 2))
	require.NoError(t, err)

	vars, batch, aligned, err := align(x, y)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, vars)
	assert.Equal(t, []int{3, 2}, batch)
	require.Len(t, aligned, 2)
	assert.Equal(t, []int{3, 2}, aligned[0].Shape)
	assert.Equal(t, []int{3, 2}, aligned[1].Shape)

	// x varies along axis 0, constant along axis 1; y the other way
	assert.Equal(t, []float64{1, 1, 2, 2, 3, 3}, aligned[0].Data)
	assert.Equal(t, []float64{10, 20, 10, 20, 10, 20}, aligned[1].Data)
}

// TestAlignReordersAxes verifies a term whose free variables appear in a
// different order is permuted onto the union order
func TestAlignReordersAxes(t *testing.T) {
	// f over (y, x), g over (x, y)
	f := &Term{
		Value:    tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3),
		FreeVars: []string{"y", "x"},
	}
	g := &Term{
		Value:    tensor.FromSlice([]float64{10, 20, 30, 40, 50, 60}, 3, 2),
		FreeVars: []string{"x", "y"},
	}

	vars, batch, aligned, err := align(f, g)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x"}, vars)
	assert.Equal(t, []int{2, 3}, batch)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, aligned[0].Data)
	// g transposed into (y, x) order
	assert.Equal(t, []float64{10, 30, 50, 20, 40, 60}, aligned[1].Data)
}

// TestAlignKeepsFeatureAxes verifies feature dimensions stay trailing
func TestAlignKeepsFeatureAxes(t *testing.T) {
	x, err := NewVariable("x", tensor.FromSlice([]float64{1, 2, 3, 4}, 2, 2))
	require.NoError(t, err)
	y, err := NewVariable("y", tensor.FromSlice([]float64{5, 6, 7}, 3, 1))
	require.NoError(t, err)

	_, batch, aligned, err := align(x, y)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, batch)
	assert.Equal(t, []int{2, 3, 2}, aligned[0].Shape)
	assert.Equal(t, []int{2, 3, 1}, aligned[1].Shape)
}

// TestAlignConstant verifies constants broadcast over every variable
func TestAlignConstant(t *testing.T) {
	c := NewConstant(tensor.FromSlice([]float64{9, 9}, 2), false)
	x, err := NewVariable("x", tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, 3, 2))
	require.NoError(t, err)

	vars, batch, aligned, err := align(c, x)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, vars)
	assert.Equal(t, []int{3}, batch)
	assert.Equal(t, []int{3, 2}, aligned[0].Shape)
	assert.Equal(t, []float64{9, 9, 9, 9, 9, 9}, aligned[0].Data)
}

func TestAlignSizeMismatch(t *testing.T) {
	a := &Term{Value: tensor.FromSlice([]float64{1, 2}, 2), FreeVars: []string{"x"}}
	b := &Term{Value: tensor.FromSlice([]float64{1, 2, 3}, 3), FreeVars: []string{"x"}}
	_, _, _, err := align(a, b)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}
