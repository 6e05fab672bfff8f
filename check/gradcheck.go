// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package check

import (
	"github.com/gradnet-ml/gradnet/nn"
	"github.com/gradnet-ml/gradnet/tensor"
)

// GradCheckTol is the tolerance for central-difference comparisons. Looser
// than DefaultTol because the finite difference itself carries O(eps^2)
// truncation error.
const GradCheckTol = 1e-4

// gradCheckEps is the perturbation step for central differences.
const gradCheckEps = 1e-5

// scalarLoss reduces a layer output against a fixed upstream gradient, so
// every analytic gradient under test corresponds to the same scalar
// objective sum(output * upstream).
func scalarLoss[T tensor.Float](output, upstream *tensor.Tensor[T]) float64 {
	var loss float64
	u := upstream.Data()
	for i, v := range output.Data() {
		loss += float64(v) * float64(u[i])
	}
	return loss
}

// numericalGradient perturbs each element of values in turn and estimates
// the gradient of loss() by central differences.
func numericalGradient[T tensor.Float](values []T, loss func() float64) []float64 {
	grad := make([]float64, len(values))
	for i := range values {
		orig := values[i]
		values[i] = orig + T(gradCheckEps)
		plus := loss()
		values[i] = orig - T(gradCheckEps)
		minus := loss()
		values[i] = orig
		grad[i] = (plus - minus) / (2 * gradCheckEps)
	}
	return grad
}

// GradCheck verifies a layer's analytic gradients against central
// differences. forward must run the block under test on input; analytic
// gradients are taken from one Forward/Backward pair with the fixed
// upstream gradient, then each input element and each parameter element is
// perturbed and the finite-difference slope compared. Returns the first
// divergence as a *ToleranceError, or nil.
//
// The layer must be deterministic and in a mode where repeated Forward
// calls on the same input produce the same output.
func GradCheck[T tensor.Float](name string,
	forward func(*tensor.Tensor[T]) *tensor.Tensor[T],
	backward func(*tensor.Tensor[T]) *tensor.Tensor[T],
	params []*nn.Parameter[T],
	input, upstream *tensor.Tensor[T]) error {

	forward(input)
	analyticInput := backward(upstream)

	analyticParams := make([][]T, len(params))
	for i, p := range params {
		grad := p.Grad().Data()
		analyticParams[i] = make([]T, len(grad))
		copy(analyticParams[i], grad)
	}

	loss := func() float64 {
		return scalarLoss(forward(input), upstream)
	}

	numInput := numericalGradient(input.Data(), loss)
	if err := compareFlat(name, "input-gradient", analyticInput.Data(), numInput); err != nil {
		return err
	}

	for i, p := range params {
		numParam := numericalGradient(p.Value().Data(), loss)
		if err := compareFlat(name, p.Name()+"-gradient", analyticParams[i], numParam); err != nil {
			return err
		}
	}

	// The loss closure left a dangling forward cache; consume it so the
	// layer is reusable after a successful check.
	backward(upstream)
	return nil
}

func compareFlat[T tensor.Float](layer, name string, analytic []T, numeric []float64) error {
	var maxDiff float64
	for i := range analytic {
		d := float64(analytic[i]) - numeric[i]
		if d < 0 {
			d = -d
		}
		if d > maxDiff {
			maxDiff = d
		}
	}
	if maxDiff > GradCheckTol {
		return &ToleranceError{Layer: layer, Tensor: name, MaxDiff: maxDiff, Tol: GradCheckTol}
	}
	return nil
}
