// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim implements gradient-descent optimizers over layer
// parameters. Each optimizer reads the gradient a Backward pass left on the
// parameter and updates the parameter value in place.
package optim

import (
	"github.com/gradnet-ml/gradnet/nn"
	"github.com/gradnet-ml/gradnet/tensor"
)

// Optimizer updates a fixed set of parameters from their current gradients.
type Optimizer[T tensor.Float] interface {
	// Step applies one update to every parameter.
	Step()
	// ZeroGrad clears every parameter gradient.
	ZeroGrad()
}

// zeroGrads clears the gradients of all params.
func zeroGrads[T tensor.Float](params []*nn.Parameter[T]) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
