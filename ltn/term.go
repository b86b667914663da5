package ltn

import (
	"github.com/pkg/errors"

	"github.com/yeongwoong43/ltn-muttaki/tensor"
)

// Term is a grounded logical term: a tensor value together with the ordered
// list of free logical variables it depends on. The leading axes of Value
// correspond 1:1 and in order to FreeVars; any trailing axes are the term's
// own feature dimensions. A term whose value is scalar per variable
// assignment (no feature axes) and lies in [0,1] is a formula.
//
// Constants and variables are built explicitly by the caller; everything else
// is produced by predicates, functions, connectives, and quantifiers, and is
// an immutable transient value of the evaluation that created it.
type Term struct {
	Value    *tensor.Tensor
	FreeVars []string

	// original labels behind a diagonal label, kept so Undiag can restore
	// independent quantification
	latent string
}

// NewConstant grounds a single individual. A trainable constant's storage
// participates in gradient updates; its embedding is learned.
func NewConstant(value *tensor.Tensor, trainable bool) *Term {
	if trainable {
		value.RequiresGrad = true
	}
	return &Term{Value: value}
}

// NewVariable grounds a labelled sequence of individuals: the first axis of
// individuals enumerates them (duplicates permitted and meaningful), any
// further axes are features.
func NewVariable(label string, individuals *tensor.Tensor) (*Term, error) {
	if label == "" {
		return nil, errors.New("ltn: variable label must be non-empty")
	}
	if individuals.Rank() < 1 {
		return nil, errors.Wrapf(ErrDimensionMismatch,
			"variable %q needs a leading axis of individuals, got scalar", label)
	}
	return &Term{Value: individuals, FreeVars: []string{label}}, nil
}

// NewProposition grounds a 0-ary predicate: a single truth value, optionally
// trainable.
func NewProposition(truth float64, trainable bool) (*Term, error) {
	if truth < 0 || truth > 1 {
		return nil, errors.Wrapf(ErrInvalidRange, "proposition value %v", truth)
	}
	v := tensor.Scalar(truth)
	v.RequiresGrad = trainable
	return &Term{Value: v}, nil
}

// NFreeVars returns the number of free variables of the term.
func (t *Term) NFreeVars() int { return len(t.FreeVars) }

// IsFormula reports whether the term is scalar per variable assignment.
func (t *Term) IsFormula() bool { return t.Value.Rank() == len(t.FreeVars) }

// axisOf returns the value axis owned by label, or -1.
func (t *Term) axisOf(label string) int {
	for i, v := range t.FreeVars {
		if v == label {
			return i
		}
	}
	return -1
}

// Take projects one free variable onto one individual: the value is sliced
// along the axis owned by label at position index, and label disappears from
// the free variables. The projection stays inside the autodiff graph.
func (t *Term) Take(label string, index int) (*Term, error) {
	axis := t.axisOf(label)
	if axis < 0 {
		return nil, errors.Wrapf(ErrUndefinedVariable, "take %q from term over %v", label, t.FreeVars)
	}
	v, err := tensor.Index(t.Value, axis, index)
	if err != nil {
		return nil, errors.Wrapf(ErrDimensionMismatch, "take %q[%d]: %v", label, index, err)
	}
	fv := make([]string, 0, len(t.FreeVars)-1)
	for _, l := range t.FreeVars {
		if l != label {
			fv = append(fv, l)
		}
	}
	return &Term{Value: v, FreeVars: fv}, nil
}

// Item returns the truth value of a closed formula.
func (t *Term) Item() (float64, error) {
	return t.Value.Item()
}

func requireFormula(op string, t *Term) error {
	if !t.IsFormula() {
		return errors.Wrapf(ErrDimensionMismatch,
			"%s: operand with free variables %v has feature dimensions (shape %v); a formula is scalar per assignment",
			op, t.FreeVars, t.Value.Shape)
	}
	return nil
}
