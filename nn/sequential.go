// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"strings"

	"github.com/gradnet-ml/gradnet/tensor"
)

// Sequential chains layers end to end. Forward runs them in order, Backward
// in reverse order, so one Backward call propagates the loss gradient through
// the whole stack and fills every parameter gradient along the way.
type Sequential[T tensor.Float] struct {
	layers []Layer[T]
}

// NewSequential creates a sequential container over the given layers.
func NewSequential[T tensor.Float](layers ...Layer[T]) *Sequential[T] {
	return &Sequential[T]{layers: layers}
}

// Add appends a layer to the end of the chain.
func (s *Sequential[T]) Add(layer Layer[T]) {
	s.layers = append(s.layers, layer)
}

// Forward runs the input through every layer in order.
func (s *Sequential[T]) Forward(input *tensor.Tensor[T]) *tensor.Tensor[T] {
	out := input
	for _, layer := range s.layers {
		out = layer.Forward(out)
	}
	return out
}

// Backward propagates the gradient through every layer in reverse order.
func (s *Sequential[T]) Backward(grad *tensor.Tensor[T]) *tensor.Tensor[T] {
	for i := len(s.layers) - 1; i >= 0; i-- {
		grad = s.layers[i].Backward(grad)
	}
	return grad
}

// Parameters returns the parameters of every layer, in layer order.
func (s *Sequential[T]) Parameters() []*Parameter[T] {
	var params []*Parameter[T]
	for _, layer := range s.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// SetTraining propagates the mode to every layer that distinguishes
// training from evaluation.
func (s *Sequential[T]) SetTraining(training bool) {
	for _, layer := range s.layers {
		if m, ok := layer.(ModeSetter); ok {
			m.SetTraining(training)
		}
	}
}

// Layers returns the contained layers in order.
func (s *Sequential[T]) Layers() []Layer[T] { return s.layers }

// String returns a string representation of the container.
func (s *Sequential[T]) String() string {
	var b strings.Builder
	b.WriteString("Sequential(\n")
	for _, layer := range s.layers {
		b.WriteString("  ")
		if str, ok := layer.(interface{ String() string }); ok {
			b.WriteString(str.String())
		} else {
			b.WriteString("Layer")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	return b.String()
}
