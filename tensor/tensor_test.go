package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCreation verifies basic tensor construction
func TestCreation(t *testing.T) {
	x := New(3, 4)
	if x.Size() != 12 {
		t.Errorf("Expected size 12, got %d", x.Size())
	}
	if len(x.Shape) != 2 || x.Shape[0] != 3 || x.Shape[1] != 4 {
		t.Errorf("Expected shape [3, 4], got %v", x.Shape)
	}

	y := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	if y.At(0, 0) != 1 || y.At(1, 2) != 6 {
		t.Errorf("Data not correctly initialized: %v", y.Data)
	}

	s := Scalar(2.5)
	v, err := s.Item()
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	ones := Ones(2, 2)
	for _, o := range ones.Data {
		assert.Equal(t, 1.0, o)
	}
}

// TestFromSliceMismatch verifies shape/data validation
func TestFromSliceMismatch(t *testing.T) {
	assert.Panics(t, func() { FromSlice([]float64{1, 2, 3}, 2, 2) })
}

// TestClone verifies deep copy semantics
func TestClone(t *testing.T) {
	orig := FromSlice([]float64{1, 2, 3, 4}, 4)
	clone := orig.Clone()
	orig.Data[0] = 100
	if clone.Data[0] != 1 {
		t.Errorf("Clone was modified when original changed")
	}
}

// TestSetAt verifies multi-index access
func TestSetAt(t *testing.T) {
	x := New(2, 3)
	x.Set(7, 1, 2)
	assert.Equal(t, 7.0, x.At(1, 2))
	assert.Equal(t, 7.0, x.Data[5])
}

// TestItemNonScalar verifies Item rejects non-scalars
func TestItemNonScalar(t *testing.T) {
	_, err := New(2).Item()
	assert.Error(t, err)
}

// TestBroadcastShapes verifies NumPy broadcasting rules
func TestBroadcastShapes(t *testing.T) {
	out, err := BroadcastShapes([]int{3, 1}, []int{3, 4})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, out)

	out, err = BroadcastShapes([]int{4}, []int{2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, out)

	out, err = BroadcastShapes(nil, []int{2})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, out)

	_, err = BroadcastShapes([]int{3}, []int{4})
	assert.Error(t, err)
}

func almostEqual(t *testing.T, want, got float64, tol float64, msg string) {
	t.Helper()
	if math.Abs(want-got) > tol {
		t.Errorf("%s: expected %v, got %v", msg, want, got)
	}
}
