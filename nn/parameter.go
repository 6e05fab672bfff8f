// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import "github.com/gradnet-ml/gradnet/tensor"

// Parameter is a trainable tensor owned by the layer that created it,
// paired with an accumulated-gradient tensor of identical shape.
//
// The gradient is overwritten (not accumulated across unrelated calls) by
// the owning layer's Backward pass and consumed by an optimizer's Step.
type Parameter[T tensor.Float] struct {
	name  string
	value *tensor.Tensor[T]
	grad  *tensor.Tensor[T]
}

// NewParameter creates a parameter around an initialized value tensor.
// The gradient tensor is allocated zero-filled with the same shape.
func NewParameter[T tensor.Float](name string, value *tensor.Tensor[T]) *Parameter[T] {
	return &Parameter[T]{
		name:  name,
		value: value,
		grad:  tensor.Zeros[T](value.Shape()),
	}
}

// Name returns the parameter name (e.g. "conv2d.weight").
func (p *Parameter[T]) Name() string {
	return p.name
}

// Value returns the parameter tensor.
func (p *Parameter[T]) Value() *tensor.Tensor[T] {
	return p.value
}

// Grad returns the gradient tensor. It has the same shape as Value and is
// overwritten by each backward pass of the owning layer.
func (p *Parameter[T]) Grad() *tensor.Tensor[T] {
	return p.grad
}

// ZeroGrad clears the gradient in place.
func (p *Parameter[T]) ZeroGrad() {
	p.grad.Zero()
}

// setGrad replaces the gradient contents. The incoming tensor must have the
// parameter's shape.
func (p *Parameter[T]) setGrad(g *tensor.Tensor[T]) {
	mustMatch("parameter "+p.name, "gradient", g.Shape(), p.value.Shape())
	copy(p.grad.Data(), g.Data())
}
