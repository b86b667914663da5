package tensor

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// binaryOp applies f elementwise over the broadcast of a and b. dfa and dfb
// give the partial derivatives with respect to a and b evaluated at
// (x, y, f(x,y)); a nil derivative marks the op as non-differentiable in that
// operand (gradients stop there).
func binaryOp(a, b *Tensor, f func(x, y float64) float64, dfa, dfb func(x, y, out float64) float64) (*Tensor, error) {
	bc, err := newBcast(a.Shape, b.Shape)
	if err != nil {
		return nil, err
	}
	out := result(bc.shape, []*Tensor{a, b}, func(out *Tensor) {
		for i := 0; i < bc.n; i++ {
			ai, bi := bc.at(0, i), bc.at(1, i)
			if a.RequiresGrad && dfa != nil {
				a.Grad[ai] += out.Grad[i] * dfa(a.Data[ai], b.Data[bi], out.Data[i])
			}
			if b.RequiresGrad && dfb != nil {
				b.Grad[bi] += out.Grad[i] * dfb(a.Data[ai], b.Data[bi], out.Data[i])
			}
		}
	})
	for i := 0; i < bc.n; i++ {
		out.Data[i] = f(a.Data[bc.at(0, i)], b.Data[bc.at(1, i)])
	}
	return out, nil
}

// unaryOp applies f elementwise; df is the derivative at (x, f(x)).
func unaryOp(a *Tensor, f func(float64) float64, df func(x, out float64) float64) *Tensor {
	out := result(a.Shape, []*Tensor{a}, func(out *Tensor) {
		for i := range a.Data {
			a.Grad[i] += out.Grad[i] * df(a.Data[i], out.Data[i])
		}
	})
	for i, x := range a.Data {
		out.Data[i] = f(x)
	}
	return out
}

func sameShape(a, b *Tensor) bool {
	if len(a.Shape) != len(b.Shape) {
		return false
	}
	for i := range a.Shape {
		if a.Shape[i] != b.Shape[i] {
			return false
		}
	}
	return true
}

// Add returns a + b with broadcasting.
func Add(a, b *Tensor) (*Tensor, error) {
	if sameShape(a, b) && !a.RequiresGrad && !b.RequiresGrad {
		// flat fast path for inference-only tensors
		out := New(a.Shape...)
		copy(out.Data, a.Data)
		floats.Add(out.Data, b.Data)
		return out, nil
	}
	return binaryOp(a, b,
		func(x, y float64) float64 { return x + y },
		func(x, y, o float64) float64 { return 1 },
		func(x, y, o float64) float64 { return 1 })
}

// Sub returns a - b with broadcasting.
func Sub(a, b *Tensor) (*Tensor, error) {
	if sameShape(a, b) && !a.RequiresGrad && !b.RequiresGrad {
		out := New(a.Shape...)
		copy(out.Data, a.Data)
		floats.Sub(out.Data, b.Data)
		return out, nil
	}
	return binaryOp(a, b,
		func(x, y float64) float64 { return x - y },
		func(x, y, o float64) float64 { return 1 },
		func(x, y, o float64) float64 { return -1 })
}

// Mul returns a * b elementwise with broadcasting.
func Mul(a, b *Tensor) (*Tensor, error) {
	if sameShape(a, b) && !a.RequiresGrad && !b.RequiresGrad {
		out := New(a.Shape...)
		copy(out.Data, a.Data)
		floats.Mul(out.Data, b.Data)
		return out, nil
	}
	return binaryOp(a, b,
		func(x, y float64) float64 { return x * y },
		func(x, y, o float64) float64 { return y },
		func(x, y, o float64) float64 { return x })
}

// Div returns a / b elementwise with broadcasting.
func Div(a, b *Tensor) (*Tensor, error) {
	return binaryOp(a, b,
		func(x, y float64) float64 { return x / y },
		func(x, y, o float64) float64 { return 1 / y },
		func(x, y, o float64) float64 { return -x / (y * y) })
}

// Maximum returns the elementwise maximum; the gradient follows the larger
// operand (ties go to a).
func Maximum(a, b *Tensor) (*Tensor, error) {
	return binaryOp(a, b,
		math.Max,
		func(x, y, o float64) float64 {
			if x >= y {
				return 1
			}
			return 0
		},
		func(x, y, o float64) float64 {
			if y > x {
				return 1
			}
			return 0
		})
}

// Minimum returns the elementwise minimum; the gradient follows the smaller
// operand (ties go to a).
func Minimum(a, b *Tensor) (*Tensor, error) {
	return binaryOp(a, b,
		math.Min,
		func(x, y, o float64) float64 {
			if x <= y {
				return 1
			}
			return 0
		},
		func(x, y, o float64) float64 {
			if y < x {
				return 1
			}
			return 0
		})
}

// AddScalar returns t + s.
func AddScalar(t *Tensor, s float64) *Tensor {
	return unaryOp(t,
		func(x float64) float64 { return x + s },
		func(x, o float64) float64 { return 1 })
}

// MulScalar returns t * s.
func MulScalar(t *Tensor, s float64) *Tensor {
	return unaryOp(t,
		func(x float64) float64 { return x * s },
		func(x, o float64) float64 { return s })
}

// SubFromScalar returns s - t. The fuzzy negation 1-a is SubFromScalar(a, 1).
func SubFromScalar(t *Tensor, s float64) *Tensor {
	return unaryOp(t,
		func(x float64) float64 { return s - x },
		func(x, o float64) float64 { return -1 })
}

// Pow returns t raised elementwise to the scalar exponent p.
func Pow(t *Tensor, p float64) *Tensor {
	return unaryOp(t,
		func(x float64) float64 { return math.Pow(x, p) },
		func(x, o float64) float64 { return p * math.Pow(x, p-1) })
}

// Clamp limits values to [lo, hi]. The gradient passes through unclamped
// positions only.
func Clamp(t *Tensor, lo, hi float64) *Tensor {
	return unaryOp(t,
		func(x float64) float64 { return math.Min(math.Max(x, lo), hi) },
		func(x, o float64) float64 {
			if x >= lo && x <= hi {
				return 1
			}
			return 0
		})
}

// Exp returns e^t elementwise.
func Exp(t *Tensor) *Tensor {
	return unaryOp(t, math.Exp, func(x, o float64) float64 { return o })
}

// Log returns the natural logarithm elementwise.
func Log(t *Tensor) *Tensor {
	return unaryOp(t, math.Log, func(x, o float64) float64 { return 1 / x })
}

// Sqrt returns the elementwise square root.
func Sqrt(t *Tensor) *Tensor {
	return unaryOp(t, math.Sqrt, func(x, o float64) float64 { return 0.5 / o })
}

// Neg returns -t.
func Neg(t *Tensor) *Tensor { return MulScalar(t, -1) }

// Sigmoid returns 1/(1+e^-t) elementwise.
func Sigmoid(t *Tensor) *Tensor {
	return unaryOp(t,
		func(x float64) float64 { return 1 / (1 + math.Exp(-x)) },
		func(x, o float64) float64 { return o * (1 - o) })
}

// Tanh returns tanh(t) elementwise.
func Tanh(t *Tensor) *Tensor {
	return unaryOp(t, math.Tanh, func(x, o float64) float64 { return 1 - o*o })
}

// =============================================================================
// Comparisons
// =============================================================================
// Comparison results are 0/1 tensors and carry no gradient; they are used as
// guards and masks, not as differentiable values.

func compare(a, b *Tensor, f func(x, y float64) bool) (*Tensor, error) {
	bc, err := newBcast(a.Shape, b.Shape)
	if err != nil {
		return nil, err
	}
	out := New(bc.shape...)
	for i := 0; i < bc.n; i++ {
		if f(a.Data[bc.at(0, i)], b.Data[bc.at(1, i)]) {
			out.Data[i] = 1
		}
	}
	return out, nil
}

// Greater returns 1 where a > b, else 0.
func Greater(a, b *Tensor) (*Tensor, error) {
	return compare(a, b, func(x, y float64) bool { return x > y })
}

// GreaterEqual returns 1 where a >= b, else 0.
func GreaterEqual(a, b *Tensor) (*Tensor, error) {
	return compare(a, b, func(x, y float64) bool { return x >= y })
}

// Less returns 1 where a < b, else 0.
func Less(a, b *Tensor) (*Tensor, error) {
	return compare(a, b, func(x, y float64) bool { return x < y })
}

// LessEqual returns 1 where a <= b, else 0.
func LessEqual(a, b *Tensor) (*Tensor, error) {
	return compare(a, b, func(x, y float64) bool { return x <= y })
}

// Equal returns 1 where a == b, else 0.
func Equal(a, b *Tensor) (*Tensor, error) {
	return compare(a, b, func(x, y float64) bool { return x == y })
}

// Where selects x where cond is non-zero and y elsewhere, broadcasting all
// three operands. The condition itself carries no gradient.
func Where(cond, x, y *Tensor) (*Tensor, error) {
	bc, err := newBcast(cond.Shape, x.Shape, y.Shape)
	if err != nil {
		return nil, err
	}
	out := result(bc.shape, []*Tensor{x, y}, func(out *Tensor) {
		for i := 0; i < bc.n; i++ {
			if cond.Data[bc.at(0, i)] != 0 {
				if x.RequiresGrad {
					x.Grad[bc.at(1, i)] += out.Grad[i]
				}
			} else if y.RequiresGrad {
				y.Grad[bc.at(2, i)] += out.Grad[i]
			}
		}
	})
	for i := 0; i < bc.n; i++ {
		if cond.Data[bc.at(0, i)] != 0 {
			out.Data[i] = x.Data[bc.at(1, i)]
		} else {
			out.Data[i] = y.Data[bc.at(2, i)]
		}
	}
	return out, nil
}

// MatMul multiplies a by b [K,N]. The left operand may carry extra leading
// batch axes: an [..., K] tensor is flattened to [rows, K] for the product
// and the result reshaped back to [..., N].
func MatMul(a, b *Tensor) (*Tensor, error) {
	if len(a.Shape) < 2 || len(b.Shape) != 2 || a.Shape[len(a.Shape)-1] != b.Shape[0] {
		return nil, errors.Errorf("matmul: incompatible shapes %v and %v", a.Shape, b.Shape)
	}
	lhs := a
	if len(a.Shape) > 2 {
		k := a.Shape[len(a.Shape)-1]
		var err error
		if lhs, err = Reshape(a, len(a.Data)/k, k); err != nil {
			return nil, err
		}
	}
	m, k, n := lhs.Shape[0], lhs.Shape[1], b.Shape[1]
	out := result([]int{m, n}, []*Tensor{lhs, b}, func(out *Tensor) {
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				g := out.Grad[i*n+j]
				for l := 0; l < k; l++ {
					if lhs.RequiresGrad {
						lhs.Grad[i*k+l] += g * b.Data[l*n+j]
					}
					if b.RequiresGrad {
						b.Grad[l*n+j] += g * lhs.Data[i*k+l]
					}
				}
			}
		}
	})
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			sum := 0.0
			for l := 0; l < k; l++ {
				sum += lhs.Data[i*k+l] * b.Data[l*n+j]
			}
			out.Data[i*n+j] = sum
		}
	}
	if len(a.Shape) > 2 {
		shape := append(append([]int(nil), a.Shape[:len(a.Shape)-1]...), n)
		return Reshape(out, shape...)
	}
	return out, nil
}
