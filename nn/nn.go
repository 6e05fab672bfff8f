// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn implements convolutional-network layers with hand-derived
// backpropagation.
//
// Every layer implements the Layer interface: Forward computes the output
// and caches whatever state its analytic backward pass needs; Backward
// consumes that cache, fills the gradients of the layer's parameters, and
// returns the gradient with respect to the layer's input. There is no
// automatic differentiation: each layer's gradient is derived by hand and
// checked numerically against reference kernels and finite differences
// (see the check package).
//
// Layers are not safe for concurrent use: the cache written by Forward is
// read by the immediately following Backward on the same instance.
//
// Example:
//
//	model := nn.NewSequential[float64](
//	    nn.NewConv2D[float64](3, 16, 3, 3, nn.Stride{H: 1, W: 1}, nn.Padding{H: 1, W: 1}, true),
//	    nn.NewReLU[float64](),
//	    nn.NewFlatten[float64](),
//	    nn.NewLinear[float64](16*8*8, 10),
//	)
//	out := model.Forward(input)
//	model.Backward(lossGrad)
package nn

import "github.com/gradnet-ml/gradnet/tensor"

// Layer is the base interface for all network components.
//
// Forward computes the output for an input tensor and records the state the
// backward pass needs. Backward takes the gradient of the loss with respect
// to the layer's output, overwrites the gradients of the layer's parameters,
// and returns the gradient with respect to the layer's input.
//
// Backward must be preceded by a matching Forward on the same instance;
// calling it against an empty cache panics with *CacheError.
type Layer[T tensor.Float] interface {
	Forward(input *tensor.Tensor[T]) *tensor.Tensor[T]
	Backward(grad *tensor.Tensor[T]) *tensor.Tensor[T]

	// Parameters returns the layer's trainable parameters. Layers without
	// trainable state return nil.
	Parameters() []*Parameter[T]
}

// ModeSetter is implemented by layers whose forward pass differs between
// training and evaluation (BatchNorm2D). Containers propagate the flag.
type ModeSetter interface {
	SetTraining(training bool)
}

// Stride bundles a vertical and horizontal stride.
type Stride struct {
	H, W int
}

// Padding bundles a symmetric vertical and horizontal zero-padding.
type Padding struct {
	H, W int
}
