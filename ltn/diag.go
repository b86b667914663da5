package ltn

import (
	"strings"

	"github.com/pkg/errors"
)

// Diag zips two or more variables so they index together: the returned terms
// share one synthetic free-variable label, and downstream operators pair the
// i-th individual of each input with the i-th individual of every other
// instead of taking the cross product. All inputs must be variables with the
// same number of individuals.
func Diag(vars ...*Term) ([]*Term, error) {
	if len(vars) < 2 {
		return nil, errors.New("ltn: diag needs at least two variables")
	}
	labels := make([]string, len(vars))
	n := -1
	for i, v := range vars {
		if len(v.FreeVars) != 1 {
			return nil, errors.Errorf("ltn: diag operand %d is not a variable (free variables %v)", i, v.FreeVars)
		}
		labels[i] = v.FreeVars[0]
		if n < 0 {
			n = v.Value.Shape[0]
		} else if v.Value.Shape[0] != n {
			return nil, errors.Wrapf(ErrDimensionMismatch,
				"diag: variable %q has %d individuals, %q has %d",
				labels[0], n, labels[i], v.Value.Shape[0])
		}
	}
	shared := "diag_" + strings.Join(labels, "_")
	out := make([]*Term, len(vars))
	for i, v := range vars {
		out[i] = &Term{
			Value:    v.Value,
			FreeVars: []string{shared},
			latent:   labels[i],
		}
	}
	return out, nil
}

// Undiag restores the original labels of diagonally-zipped variables, so they
// quantify independently again.
func Undiag(vars ...*Term) ([]*Term, error) {
	out := make([]*Term, len(vars))
	for i, v := range vars {
		if v.latent == "" {
			return nil, errors.Errorf("ltn: undiag operand %d was not produced by Diag", i)
		}
		out[i] = &Term{Value: v.Value, FreeVars: []string{v.latent}}
	}
	return out, nil
}
