package ltn

import (
	"github.com/pkg/errors"

	"github.com/yeongwoong43/ltn-muttaki/tensor"
)

// Callable is the contract for wrapped models: it receives one aligned,
// batched tensor per logical argument — all sharing the same leading batch
// shape — and returns one batched tensor. The callable must be vectorized: it
// is invoked once per evaluation, not once per individual.
type Callable func(args ...*tensor.Tensor) (*tensor.Tensor, error)

// Predicate grounds a fuzzy relation: it maps grounded terms to a formula,
// one truth value per assignment of the argument variables.
//
// The wrapped callable's output is expected to lie in [0,1]; like predicate
// parameters, this is the caller's contract and is not checked at runtime.
// Build the callable on a bounded squashing function, or use
// NewPredicateFromLogits to apply the sigmoid here.
type Predicate struct {
	fn Callable
}

// NewPredicate wraps a vectorized callable whose output is already in [0,1].
func NewPredicate(fn Callable) *Predicate {
	return &Predicate{fn: fn}
}

// NewPredicateFromLogits wraps a callable producing unbounded logits; the
// sigmoid of its output becomes the truth value.
func NewPredicateFromLogits(fn Callable) *Predicate {
	return &Predicate{fn: func(args ...*tensor.Tensor) (*tensor.Tensor, error) {
		logits, err := fn(args...)
		if err != nil {
			return nil, err
		}
		return tensor.Sigmoid(logits), nil
	}}
}

// Call aligns the arguments onto their variable union, invokes the callable
// once, and wraps the result as a formula over the union.
func (p *Predicate) Call(args ...*Term) (*Term, error) {
	vars, batch, aligned, err := align(args...)
	if err != nil {
		return nil, err
	}
	out, err := p.fn(aligned...)
	if err != nil {
		return nil, err
	}
	// tolerate a trailing singleton output axis from models ending in a
	// 1-unit layer
	if out.Rank() == len(batch)+1 && out.Shape[len(batch)] == 1 {
		if out, err = tensor.Squeeze(out, len(batch)); err != nil {
			return nil, err
		}
	}
	if err := checkBatchShape("predicate", out, batch); err != nil {
		return nil, err
	}
	if out.Rank() != len(batch) {
		return nil, errors.Wrapf(ErrDimensionMismatch,
			"predicate output has shape %v; want one truth value per assignment %v", out.Shape, batch)
	}
	return &Term{Value: out, FreeVars: vars}, nil
}

// Function grounds a term-producing mapping, such as a learned embedding or
// an arithmetic combination of individuals. Unlike a predicate its output may
// keep trailing feature dimensions and is not confined to [0,1].
type Function struct {
	fn Callable
}

// NewFunction wraps a vectorized callable.
func NewFunction(fn Callable) *Function {
	return &Function{fn: fn}
}

// Call aligns the arguments onto their variable union, invokes the callable
// once, and wraps the result as a term over the union, preserving the
// callable's trailing output dimensions.
func (f *Function) Call(args ...*Term) (*Term, error) {
	vars, batch, aligned, err := align(args...)
	if err != nil {
		return nil, err
	}
	out, err := f.fn(aligned...)
	if err != nil {
		return nil, err
	}
	if err := checkBatchShape("function", out, batch); err != nil {
		return nil, err
	}
	return &Term{Value: out, FreeVars: vars}, nil
}

func checkBatchShape(op string, out *tensor.Tensor, batch []int) error {
	if out.Rank() < len(batch) {
		return errors.Wrapf(ErrDimensionMismatch,
			"%s output has shape %v; want leading batch dimensions %v", op, out.Shape, batch)
	}
	for d, n := range batch {
		if out.Shape[d] != n {
			return errors.Wrapf(ErrDimensionMismatch,
				"%s output has shape %v; want leading batch dimensions %v", op, out.Shape, batch)
		}
	}
	return nil
}
