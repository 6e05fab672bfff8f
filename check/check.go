// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package check validates layer implementations against independent
// reference computations. A layer and a direct-definition reference kernel
// are driven with identical weights and inputs; forward outputs and every
// gradient are compared within a tolerance, and any divergence is reported
// with the layer, the offending tensor and its magnitude. A finite-difference
// gradient checker provides a second, implementation-independent oracle.
package check

import (
	"fmt"

	"github.com/gradnet-ml/gradnet/tensor"
)

// DefaultTol is the absolute tolerance used by the float64 comparisons.
const DefaultTol = 1e-5

// ToleranceError reports a comparison that diverged beyond the tolerance.
// It is a test-result condition, returned rather than panicked.
type ToleranceError struct {
	Layer   string  // layer under test
	Tensor  string  // which tensor diverged: "output", "input-gradient", ...
	MaxDiff float64 // largest absolute elementwise difference
	Tol     float64
}

func (e *ToleranceError) Error() string {
	return fmt.Sprintf("%s: %s diverged from reference by %.3e (tolerance %.3e)",
		e.Layer, e.Tensor, e.MaxDiff, e.Tol)
}

// Compare returns a *ToleranceError when got and want differ by more than
// tol in any element, and nil when they agree.
func Compare[T tensor.Float](layer, name string, got, want *tensor.Tensor[T], tol float64) error {
	if !got.Shape().Equal(want.Shape()) {
		return fmt.Errorf("%s: %s shape %v does not match reference shape %v",
			layer, name, got.Shape(), want.Shape())
	}
	diff := tensor.MaxAbsDiff(got, want)
	if diff > tol {
		return &ToleranceError{Layer: layer, Tensor: name, MaxDiff: diff, Tol: tol}
	}
	return nil
}
