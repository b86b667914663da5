package fuzzy

import (
	"github.com/pkg/errors"

	"github.com/yeongwoong43/ltn-muttaki/tensor"
)

// Eps is the stability margin for quantifier aggregation. Truth values are
// rescaled into [Eps, 1-Eps] before exponentiation so the p-th powers keep
// finite gradients at the boundary; the rescaling perturbs the aggregate by
// at most 2*Eps.
const Eps = 1e-4

// tiny keeps the derivative of the p-th root finite when a guarded
// aggregation has zero surviving elements and the mean underneath is exactly
// zero. The surviving Where branch never sees the perturbation.
const tiny = 1e-12

// stable rescales truth values away from exactly 0 and 1.
func stable(v *tensor.Tensor) *tensor.Tensor {
	return tensor.AddScalar(tensor.MulScalar(v, 1-2*Eps), Eps)
}

func checkExponent(p float64) error {
	if p < 1 {
		return errors.Errorf("fuzzy: aggregation exponent must be >= 1, got %v", p)
	}
	return nil
}

// AggregPMeanError implements universal quantification as the generalized
// mean of the errors: 1 - (mean((1-v)^p))^(1/p) over the given axes. Larger p
// approaches the minimum, p=1 is the arithmetic complement-mean.
func AggregPMeanError(v *tensor.Tensor, axes []int, p float64) (*tensor.Tensor, error) {
	if err := checkExponent(p); err != nil {
		return nil, err
	}
	pw := tensor.Pow(tensor.SubFromScalar(stable(v), 1), p)
	mean, err := tensor.MeanAxes(pw, axes, false)
	if err != nil {
		return nil, err
	}
	return tensor.SubFromScalar(tensor.Pow(mean, 1/p), 1), nil
}

// AggregPMean implements existential quantification as the generalized mean:
// (mean(v^p))^(1/p) over the given axes. Larger p approaches the maximum.
func AggregPMean(v *tensor.Tensor, axes []int, p float64) (*tensor.Tensor, error) {
	if err := checkExponent(p); err != nil {
		return nil, err
	}
	pw := tensor.Pow(stable(v), p)
	mean, err := tensor.MeanAxes(pw, axes, false)
	if err != nil {
		return nil, err
	}
	return tensor.Pow(mean, 1/p), nil
}

// AggregPMeanErrorMasked is the guarded form of AggregPMeanError: only
// positions where mask is non-zero contribute, and the mean divides by the
// surviving count per outer index. An outer index whose mask selects nothing
// aggregates to 1 (vacuous truth). mask must have the shape of v.
func AggregPMeanErrorMasked(v, mask *tensor.Tensor, axes []int, p float64) (*tensor.Tensor, error) {
	if err := checkExponent(p); err != nil {
		return nil, err
	}
	pw := tensor.Pow(tensor.SubFromScalar(stable(v), 1), p)
	mean, cnt, err := maskedMean(pw, mask, axes)
	if err != nil {
		return nil, err
	}
	root := tensor.Pow(tensor.AddScalar(mean, tiny), 1/p)
	nonEmpty, err := tensor.Greater(cnt, tensor.Scalar(0))
	if err != nil {
		return nil, err
	}
	return tensor.Where(nonEmpty, tensor.SubFromScalar(root, 1), tensor.Scalar(1))
}

// AggregPMeanMasked is the guarded form of AggregPMean. An outer index whose
// mask selects nothing aggregates to 0 (vacuous falsity). mask must have the
// shape of v.
func AggregPMeanMasked(v, mask *tensor.Tensor, axes []int, p float64) (*tensor.Tensor, error) {
	if err := checkExponent(p); err != nil {
		return nil, err
	}
	pw := tensor.Pow(stable(v), p)
	mean, cnt, err := maskedMean(pw, mask, axes)
	if err != nil {
		return nil, err
	}
	root := tensor.Pow(tensor.AddScalar(mean, tiny), 1/p)
	nonEmpty, err := tensor.Greater(cnt, tensor.Scalar(0))
	if err != nil {
		return nil, err
	}
	return tensor.Where(nonEmpty, root, tensor.Scalar(0))
}

// maskedMean divides the masked sum of pw over axes by the per-index count of
// surviving positions. Mask values are tested against zero first, so a
// fractional guard selects its position fully instead of weighting it. The
// count is floored at 1 to keep the division defined for empty selections;
// callers dispatch on cnt to apply their empty-set convention.
func maskedMean(pw, mask *tensor.Tensor, axes []int) (mean, cnt *tensor.Tensor, err error) {
	if len(pw.Shape) != len(mask.Shape) {
		return nil, nil, errors.Errorf("fuzzy: mask shape %v does not match values shape %v", mask.Shape, pw.Shape)
	}
	for d := range pw.Shape {
		if pw.Shape[d] != mask.Shape[d] {
			return nil, nil, errors.Errorf("fuzzy: mask shape %v does not match values shape %v", mask.Shape, pw.Shape)
		}
	}
	selected, err := tensor.Greater(mask, tensor.Scalar(0))
	if err != nil {
		return nil, nil, err
	}
	masked, err := tensor.Mul(pw, selected)
	if err != nil {
		return nil, nil, err
	}
	num, err := tensor.SumAxes(masked, axes, false)
	if err != nil {
		return nil, nil, err
	}
	cnt, err = tensor.SumAxes(selected, axes, false)
	if err != nil {
		return nil, nil, err
	}
	floor, err := tensor.Maximum(cnt, tensor.Scalar(1))
	if err != nil {
		return nil, nil, err
	}
	mean, err = tensor.Div(num, floor)
	if err != nil {
		return nil, nil, err
	}
	return mean, cnt, nil
}
