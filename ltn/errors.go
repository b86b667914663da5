package ltn

import "github.com/pkg/errors"

// Sentinel errors for malformed axiom constructions. They are programming
// errors on the caller's side, raised synchronously and never retried; check
// them with errors.Is.
var (
	// ErrUndefinedVariable reports a reference to a free-variable label that
	// a term does not depend on.
	ErrUndefinedVariable = errors.New("undefined variable")

	// ErrDimensionMismatch reports incompatible individual counts or feature
	// dimensions, e.g. diagonal quantification over variables of different
	// sizes.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidRange reports a truth value outside [0,1] where one was
	// required. Predicate outputs are a caller contract and are not checked
	// at runtime; this error covers the places the core does validate, such
	// as proposition construction.
	ErrInvalidRange = errors.New("truth value outside [0,1]")
)
