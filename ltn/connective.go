package ltn

import (
	"github.com/yeongwoong43/ltn-muttaki/fuzzy"
	"github.com/yeongwoong43/ltn-muttaki/tensor"
)

// BinaryConnective composes a fuzzy binary operator with the alignment
// engine: the two formula operands are aligned onto their variable union and
// combined elementwise. The fuzzy semantics is chosen once, at construction.
type BinaryConnective struct {
	apply func(a, b *tensor.Tensor) (*tensor.Tensor, error)
}

// NewAnd builds a conjunction connective under the given t-norm.
func NewAnd(kind fuzzy.AndKind) BinaryConnective {
	return BinaryConnective{apply: func(a, b *tensor.Tensor) (*tensor.Tensor, error) {
		return fuzzy.ApplyAnd(kind, a, b)
	}}
}

// NewOr builds a disjunction connective under the given t-conorm.
func NewOr(kind fuzzy.OrKind) BinaryConnective {
	return BinaryConnective{apply: func(a, b *tensor.Tensor) (*tensor.Tensor, error) {
		return fuzzy.ApplyOr(kind, a, b)
	}}
}

// NewImplies builds an implication connective of the given kind.
func NewImplies(kind fuzzy.ImpliesKind) BinaryConnective {
	return BinaryConnective{apply: func(a, b *tensor.Tensor) (*tensor.Tensor, error) {
		return fuzzy.ApplyImplies(kind, a, b)
	}}
}

// NewEquiv builds a biconditional as And(a->b, b->a) under the given kinds.
func NewEquiv(ik fuzzy.ImpliesKind, ak fuzzy.AndKind) BinaryConnective {
	return BinaryConnective{apply: func(a, b *tensor.Tensor) (*tensor.Tensor, error) {
		return fuzzy.ApplyEquiv(ik, ak, a, b)
	}}
}

// Apply evaluates the connective over two formulas, producing a formula over
// the union of their free variables. Operands with disjoint variables yield
// the full cross product.
func (c BinaryConnective) Apply(a, b *Term) (*Term, error) {
	if err := requireFormula("connective", a); err != nil {
		return nil, err
	}
	if err := requireFormula("connective", b); err != nil {
		return nil, err
	}
	vars, _, aligned, err := align(a, b)
	if err != nil {
		return nil, err
	}
	out, err := c.apply(aligned[0], aligned[1])
	if err != nil {
		return nil, err
	}
	return &Term{Value: out, FreeVars: vars}, nil
}

// Not negates a formula: 1 - a, elementwise.
func Not(a *Term) (*Term, error) {
	if err := requireFormula("not", a); err != nil {
		return nil, err
	}
	return &Term{
		Value:    fuzzy.Not(a.Value),
		FreeVars: append([]string(nil), a.FreeVars...),
	}, nil
}
