// Package ltn grounds first-order-logic formulas as differentiable tensor
// computations, so logical axioms can serve as training losses for the models
// that implement their predicates and functions.
//
// The building blocks mirror the logic:
//   - Constants and Variables ground individuals as tensors; a Variable's
//     first axis enumerates its individuals.
//   - Predicates and Functions lift vectorized callables over grounded terms.
//   - Connectives combine formulas under a chosen fuzzy semantics (product,
//     Gödel, or Łukasiewicz families, see package fuzzy).
//   - Quantifiers aggregate a formula over its free variables with
//     generalized means, optionally guarded by a mask formula.
//
// Free variables are tracked per term; when an operator combines terms the
// alignment engine broadcasts their tensors onto the union of their free
// variables, so a formula over n distinct variables evaluates over the full
// cross product of their individuals. Diag switches selected variables to
// zipped (pairwise) indexing instead.
//
// Example, "every point with small norm is inside":
//
//	x, _ := ltn.NewVariable("x", points)       // [n, 2] tensor
//	inside := ltn.NewPredicateFromLogits(model.Forward)
//	small := ltn.NewPredicate(smallNorm)
//	implies := ltn.NewImplies(fuzzy.ImpliesReichenbach)
//	forall := ltn.NewForAll(2)
//
//	sx, _ := small.Call(x)
//	ix, _ := inside.Call(x)
//	body, _ := implies.Apply(sx, ix)
//	axiom, _ := forall.Apply([]*ltn.Term{x}, body)
//
//	sat, _ := ltn.SatAgg(2, axiom)
//	loss := tensor.SubFromScalar(sat, 1)
//	loss.Backward()
//
// Evaluation is pure: every operation returns a fresh immutable term, and the
// only shared mutable state is the storage behind trainable constants,
// propositions, and model parameters, which only an external optimizer step
// mutates. Evaluating independent formulas concurrently is safe as long as no
// training step is updating that storage at the same time.
package ltn
