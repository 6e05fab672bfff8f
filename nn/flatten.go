// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import "github.com/gradnet-ml/gradnet/tensor"

// Flatten reshapes a multi-dimensional feature map (batch, C, H, W) to a
// 2-D (batch, features) layout. It has no trainable parameters; the only
// state is the original shape recorded for the backward reshape.
//
// Total element count is preserved and the reshape is a view: no data is
// copied in either direction.
type Flatten[T tensor.Float] struct {
	inputShape tensor.Shape
}

// NewFlatten creates a new Flatten layer.
func NewFlatten[T tensor.Float]() *Flatten[T] {
	return &Flatten[T]{}
}

// Forward reshapes (batch, d1, ..., dk) to (batch, d1*...*dk) and records
// the original shape.
func (f *Flatten[T]) Forward(input *tensor.Tensor[T]) *tensor.Tensor[T] {
	shape := input.Shape()
	if len(shape) < 2 {
		panicShape("Flatten", "expected at least 2D input, got shape %v", shape)
	}
	f.inputShape = shape.Clone()
	batch := shape[0]
	return input.Reshape(batch, shape.NumElements()/batch)
}

// Backward reshapes the incoming (batch, features) gradient back to the
// cached original shape.
func (f *Flatten[T]) Backward(grad *tensor.Tensor[T]) *tensor.Tensor[T] {
	if f.inputShape == nil {
		panic(&CacheError{Layer: "Flatten"})
	}
	batch := f.inputShape[0]
	features := f.inputShape.NumElements() / batch
	mustMatch("Flatten", "upstream gradient", grad.Shape(), tensor.Shape{batch, features})

	out := grad.Reshape(f.inputShape...)
	f.inputShape = nil
	return out
}

// Parameters returns nil: Flatten has no trainable parameters.
func (f *Flatten[T]) Parameters() []*Parameter[T] { return nil }
