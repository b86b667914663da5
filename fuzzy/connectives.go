// Package fuzzy implements differentiable fuzzy-logic operators over truth
// values in [0,1]: the connective t-norms/t-conorms and the generalized-mean
// quantifier aggregators.
//
// Each connective family is an enum kind dispatched by a switch, so a formula
// can be evaluated under product, Gödel, or Łukasiewicz semantics by changing
// a single constant:
//
//	c, _ := fuzzy.ApplyAnd(fuzzy.AndProduct, a, b) // a*b
//	c, _ = fuzzy.ApplyAnd(fuzzy.AndGodel, a, b)    // min(a,b)
//
// All operators are built from tensor ops, so gradients flow through them.
package fuzzy

import (
	"github.com/pkg/errors"

	"github.com/yeongwoong43/ltn-muttaki/tensor"
)

// AndKind selects the conjunction t-norm.
type AndKind int

const (
	AndProduct     AndKind = iota // a*b
	AndGodel                      // min(a,b)
	AndLukasiewicz                // max(0, a+b-1)
)

// OrKind selects the disjunction t-conorm.
type OrKind int

const (
	OrProbSum      OrKind = iota // a+b-a*b
	OrMax                        // max(a,b)
	OrLukasiewicz                // min(1, a+b)
)

// ImpliesKind selects the implication operator.
type ImpliesKind int

const (
	ImpliesReichenbach ImpliesKind = iota // 1-a+a*b
	ImpliesGodel                          // 1 if a<=b else b
	ImpliesLukasiewicz                    // min(1, 1-a+b)
)

// Not returns the standard fuzzy negation 1-a.
func Not(a *tensor.Tensor) *tensor.Tensor {
	return tensor.SubFromScalar(a, 1)
}

// ApplyAnd evaluates the selected conjunction elementwise with broadcasting.
func ApplyAnd(kind AndKind, a, b *tensor.Tensor) (*tensor.Tensor, error) {
	switch kind {
	case AndProduct:
		return tensor.Mul(a, b)
	case AndGodel:
		return tensor.Minimum(a, b)
	case AndLukasiewicz:
		sum, err := tensor.Add(a, b)
		if err != nil {
			return nil, err
		}
		return tensor.Clamp(tensor.AddScalar(sum, -1), 0, 1), nil
	default:
		return nil, errors.Errorf("fuzzy: unknown conjunction kind %d", kind)
	}
}

// ApplyOr evaluates the selected disjunction elementwise with broadcasting.
func ApplyOr(kind OrKind, a, b *tensor.Tensor) (*tensor.Tensor, error) {
	switch kind {
	case OrProbSum:
		sum, err := tensor.Add(a, b)
		if err != nil {
			return nil, err
		}
		prod, err := tensor.Mul(a, b)
		if err != nil {
			return nil, err
		}
		return tensor.Sub(sum, prod)
	case OrMax:
		return tensor.Maximum(a, b)
	case OrLukasiewicz:
		sum, err := tensor.Add(a, b)
		if err != nil {
			return nil, err
		}
		return tensor.Clamp(sum, 0, 1), nil
	default:
		return nil, errors.Errorf("fuzzy: unknown disjunction kind %d", kind)
	}
}

// ApplyImplies evaluates the selected implication elementwise with
// broadcasting.
func ApplyImplies(kind ImpliesKind, a, b *tensor.Tensor) (*tensor.Tensor, error) {
	switch kind {
	case ImpliesReichenbach:
		prod, err := tensor.Mul(a, b)
		if err != nil {
			return nil, err
		}
		return tensor.Add(tensor.SubFromScalar(a, 1), prod)
	case ImpliesGodel:
		le, err := tensor.LessEqual(a, b)
		if err != nil {
			return nil, err
		}
		return tensor.Where(le, tensor.Scalar(1), b)
	case ImpliesLukasiewicz:
		sum, err := tensor.Add(tensor.SubFromScalar(a, 1), b)
		if err != nil {
			return nil, err
		}
		return tensor.Clamp(sum, 0, 1), nil
	default:
		return nil, errors.Errorf("fuzzy: unknown implication kind %d", kind)
	}
}

// ApplyEquiv evaluates a<->b as And(a->b, b->a) under the given operator
// kinds.
func ApplyEquiv(ik ImpliesKind, ak AndKind, a, b *tensor.Tensor) (*tensor.Tensor, error) {
	fwd, err := ApplyImplies(ik, a, b)
	if err != nil {
		return nil, err
	}
	bwd, err := ApplyImplies(ik, b, a)
	if err != nil {
		return nil, err
	}
	return ApplyAnd(ak, fwd, bwd)
}
