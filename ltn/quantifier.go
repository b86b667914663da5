package ltn

import (
	"github.com/pkg/errors"

	"github.com/yeongwoong43/ltn-muttaki/fuzzy"
	"github.com/yeongwoong43/ltn-muttaki/tensor"
)

// DefaultP is a reasonable aggregation exponent for callers without a
// preference. p=2 weights hard examples noticeably more than the arithmetic
// mean without approaching the hard min/max.
const DefaultP = 2

// Quantifier reduces a formula over one or more of its free variables with a
// generalized-mean aggregator: universal quantification uses the p-mean of
// the errors, existential the p-mean of the truth values. Larger exponents
// approach the classical min/max semantics.
type Quantifier struct {
	exists bool
	p      float64
}

// NewForAll builds a universal quantifier with aggregation exponent p (>= 1).
func NewForAll(p float64) Quantifier { return Quantifier{exists: false, p: p} }

// NewExists builds an existential quantifier with aggregation exponent p
// (>= 1).
func NewExists(p float64) Quantifier { return Quantifier{exists: true, p: p} }

// Apply quantifies formula f over the given variables. The result is a
// formula whose free variables are f's minus the quantified ones.
func (q Quantifier) Apply(vars []*Term, f *Term) (*Term, error) {
	labels, err := quantifiedLabels(vars)
	if err != nil {
		return nil, err
	}
	if err := requireFormula("quantifier", f); err != nil {
		return nil, err
	}
	axes := make([]int, len(labels))
	for i, l := range labels {
		ax := f.axisOf(l)
		if ax < 0 {
			return nil, errors.Wrapf(ErrUndefinedVariable,
				"quantify %q over formula with free variables %v", l, f.FreeVars)
		}
		axes[i] = ax
	}
	var out *tensor.Tensor
	if q.exists {
		out, err = fuzzy.AggregPMean(f.Value, axes, q.p)
	} else {
		out, err = fuzzy.AggregPMeanError(f.Value, axes, q.p)
	}
	if err != nil {
		return nil, err
	}
	return &Term{Value: out, FreeVars: removeLabels(f.FreeVars, labels)}, nil
}

// ApplyMasked quantifies f over the given variables, restricted to the
// assignments where the mask formula is non-zero. Masked-out assignments are
// excluded from the aggregation entirely; if a remaining (outer) index has no
// surviving assignments, forall reports 1 and exists reports 0, matching the
// classical vacuous conventions. The mask may depend on variables of f, on
// the quantified variables, and on variables of its own.
func (q Quantifier) ApplyMasked(vars []*Term, f, mask *Term) (*Term, error) {
	labels, err := quantifiedLabels(vars)
	if err != nil {
		return nil, err
	}
	if err := requireFormula("quantifier", f); err != nil {
		return nil, err
	}
	if err := requireFormula("quantifier mask", mask); err != nil {
		return nil, err
	}
	union, _, aligned, err := align(f, mask)
	if err != nil {
		return nil, err
	}
	axes := make([]int, len(labels))
	for i, l := range labels {
		ax := -1
		for d, u := range union {
			if u == l {
				ax = d
				break
			}
		}
		if ax < 0 {
			return nil, errors.Wrapf(ErrUndefinedVariable,
				"quantify %q over formula and mask with free variables %v", l, union)
		}
		axes[i] = ax
	}
	var out *tensor.Tensor
	if q.exists {
		out, err = fuzzy.AggregPMeanMasked(aligned[0], aligned[1], axes, q.p)
	} else {
		out, err = fuzzy.AggregPMeanErrorMasked(aligned[0], aligned[1], axes, q.p)
	}
	if err != nil {
		return nil, err
	}
	return &Term{Value: out, FreeVars: removeLabels(union, labels)}, nil
}

func quantifiedLabels(vars []*Term) ([]string, error) {
	if len(vars) == 0 {
		return nil, errors.New("ltn: quantifier needs at least one variable")
	}
	labels := make([]string, len(vars))
	seen := make(map[string]bool, len(vars))
	for i, v := range vars {
		if len(v.FreeVars) != 1 {
			return nil, errors.Errorf("ltn: quantifier operand %d is not a variable (free variables %v)", i, v.FreeVars)
		}
		l := v.FreeVars[0]
		if seen[l] {
			return nil, errors.Errorf("ltn: variable %q quantified twice", l)
		}
		seen[l] = true
		labels[i] = l
	}
	return labels, nil
}

// SatAgg aggregates the truth values of closed formulas into the overall
// satisfaction level of a knowledge base, using the p-mean-error aggregator.
// A training loop typically minimizes 1 - SatAgg(axioms...).
func SatAgg(p float64, formulas ...*Term) (*tensor.Tensor, error) {
	if len(formulas) == 0 {
		return nil, errors.New("ltn: satagg needs at least one formula")
	}
	stacked := make([]*tensor.Tensor, len(formulas))
	for i, f := range formulas {
		if len(f.FreeVars) != 0 || f.Value.Size() != 1 {
			return nil, errors.Wrapf(ErrDimensionMismatch,
				"satagg operand %d is not closed: free variables %v, shape %v",
				i, f.FreeVars, f.Value.Shape)
		}
		v, err := tensor.Reshape(f.Value, 1)
		if err != nil {
			return nil, err
		}
		stacked[i] = v
	}
	all, err := tensor.Concat(0, stacked...)
	if err != nil {
		return nil, err
	}
	out, err := fuzzy.AggregPMeanError(all, []int{0}, p)
	if err != nil {
		return nil, err
	}
	return out, nil
}
