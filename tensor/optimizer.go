package tensor

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Optimizer applies accumulated gradients to a fixed set of parameter
// tensors.
type Optimizer interface {
	// Step updates every parameter from its Grad slice.
	Step()

	// ZeroGrad clears the gradients of every parameter.
	ZeroGrad()

	// Name returns the optimizer name.
	Name() string
}

// ============================================================================
// SGD (stochastic gradient descent with optional momentum)
// ============================================================================

type SGD struct {
	params     []*Tensor
	lr         float64
	momentum   float64
	velocities [][]float64
}

// NewSGD creates a plain gradient-descent optimizer over params.
func NewSGD(params []*Tensor, lr float64) *SGD {
	return NewSGDWithMomentum(params, lr, 0)
}

// NewSGDWithMomentum creates an SGD optimizer with momentum.
func NewSGDWithMomentum(params []*Tensor, lr, momentum float64) *SGD {
	opt := &SGD{params: params, lr: lr, momentum: momentum}
	if momentum != 0 {
		opt.velocities = make([][]float64, len(params))
		for i, p := range params {
			opt.velocities[i] = make([]float64, len(p.Data))
		}
	}
	return opt
}

func (opt *SGD) Step() {
	for i, p := range opt.params {
		if p.Grad == nil {
			continue
		}
		if opt.momentum == 0 {
			// w = w - lr * grad
			floats.AddScaled(p.Data, -opt.lr, p.Grad)
			continue
		}
		// v = momentum*v + grad; w = w - lr*v
		v := opt.velocities[i]
		floats.Scale(opt.momentum, v)
		floats.Add(v, p.Grad)
		floats.AddScaled(p.Data, -opt.lr, v)
	}
}

func (opt *SGD) ZeroGrad() {
	for _, p := range opt.params {
		p.ZeroGrad()
	}
}

func (opt *SGD) Name() string { return "sgd" }

// ============================================================================
// Adam
// ============================================================================

type Adam struct {
	params []*Tensor
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	step   int
	m      [][]float64
	v      [][]float64
}

// NewAdam creates an Adam optimizer with the usual defaults
// (beta1=0.9, beta2=0.999, eps=1e-8).
func NewAdam(params []*Tensor, lr float64) *Adam {
	opt := &Adam{
		params: params,
		lr:     lr,
		beta1:  0.9,
		beta2:  0.999,
		eps:    1e-8,
		m:      make([][]float64, len(params)),
		v:      make([][]float64, len(params)),
	}
	for i, p := range params {
		opt.m[i] = make([]float64, len(p.Data))
		opt.v[i] = make([]float64, len(p.Data))
	}
	return opt
}

func (opt *Adam) Step() {
	opt.step++
	bc1 := 1 - math.Pow(opt.beta1, float64(opt.step))
	bc2 := 1 - math.Pow(opt.beta2, float64(opt.step))
	for i, p := range opt.params {
		if p.Grad == nil {
			continue
		}
		m, v := opt.m[i], opt.v[i]
		for j, g := range p.Grad {
			m[j] = opt.beta1*m[j] + (1-opt.beta1)*g
			v[j] = opt.beta2*v[j] + (1-opt.beta2)*g*g
			p.Data[j] -= opt.lr * (m[j] / bc1) / (math.Sqrt(v[j]/bc2) + opt.eps)
		}
	}
}

func (opt *Adam) ZeroGrad() {
	for _, p := range opt.params {
		p.ZeroGrad()
	}
}

func (opt *Adam) Name() string { return "adam" }
