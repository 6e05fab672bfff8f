// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import "github.com/gradnet-ml/gradnet/tensor"

// Activation layers are stateless element-wise transforms with no trainable
// parameters. Forward caches the tensor the analytic derivative is cheapest
// to evaluate from (the input for ReLU-family, the output for sigmoid-family);
// Backward multiplies the upstream gradient by that derivative.

// ReLU applies f(x) = max(0, x) element-wise.
type ReLU[T tensor.Float] struct {
	input *tensor.Tensor[T]
}

// NewReLU creates a new ReLU activation layer.
func NewReLU[T tensor.Float]() *ReLU[T] {
	return &ReLU[T]{}
}

// Forward applies max(0, x) and caches the input.
func (r *ReLU[T]) Forward(input *tensor.Tensor[T]) *tensor.Tensor[T] {
	r.input = input
	out := tensor.New[T](input.Shape())
	in, res := input.Data(), out.Data()
	for i, v := range in {
		if v > 0 {
			res[i] = v
		}
	}
	return out
}

// Backward passes the upstream gradient through where the cached input was
// positive and zeroes it elsewhere.
func (r *ReLU[T]) Backward(grad *tensor.Tensor[T]) *tensor.Tensor[T] {
	if r.input == nil {
		panic(&CacheError{Layer: "ReLU"})
	}
	mustMatch("ReLU", "upstream gradient", grad.Shape(), r.input.Shape())

	out := tensor.New[T](grad.Shape())
	in, g, res := r.input.Data(), grad.Data(), out.Data()
	for i := range g {
		if in[i] > 0 {
			res[i] = g[i]
		}
	}
	r.input = nil
	return out
}

// Parameters returns nil: ReLU has no trainable parameters.
func (r *ReLU[T]) Parameters() []*Parameter[T] { return nil }

// LeakyReLU applies f(x) = x for x > 0 and alpha*x otherwise.
type LeakyReLU[T tensor.Float] struct {
	alpha T
	input *tensor.Tensor[T]
}

// NewLeakyReLU creates a LeakyReLU with the given negative-side slope
// (commonly 0.01).
func NewLeakyReLU[T tensor.Float](alpha T) *LeakyReLU[T] {
	return &LeakyReLU[T]{alpha: alpha}
}

// Forward applies the leaky rectifier and caches the input.
func (l *LeakyReLU[T]) Forward(input *tensor.Tensor[T]) *tensor.Tensor[T] {
	l.input = input
	out := tensor.New[T](input.Shape())
	in, res := input.Data(), out.Data()
	for i, v := range in {
		if v > 0 {
			res[i] = v
		} else {
			res[i] = l.alpha * v
		}
	}
	return out
}

// Backward scales the upstream gradient by 1 or alpha depending on the sign
// of the cached input.
func (l *LeakyReLU[T]) Backward(grad *tensor.Tensor[T]) *tensor.Tensor[T] {
	if l.input == nil {
		panic(&CacheError{Layer: "LeakyReLU"})
	}
	mustMatch("LeakyReLU", "upstream gradient", grad.Shape(), l.input.Shape())

	out := tensor.New[T](grad.Shape())
	in, g, res := l.input.Data(), grad.Data(), out.Data()
	for i := range g {
		if in[i] > 0 {
			res[i] = g[i]
		} else {
			res[i] = l.alpha * g[i]
		}
	}
	l.input = nil
	return out
}

// Parameters returns nil: LeakyReLU has no trainable parameters.
func (l *LeakyReLU[T]) Parameters() []*Parameter[T] { return nil }

// Sigmoid applies f(x) = 1 / (1 + exp(-x)) element-wise.
//
// The derivative is cheapest from the output: f'(x) = y * (1 - y), so the
// forward output is what gets cached.
type Sigmoid[T tensor.Float] struct {
	output *tensor.Tensor[T]
}

// NewSigmoid creates a new Sigmoid activation layer.
func NewSigmoid[T tensor.Float]() *Sigmoid[T] {
	return &Sigmoid[T]{}
}

// Forward applies the logistic function and caches the output.
func (s *Sigmoid[T]) Forward(input *tensor.Tensor[T]) *tensor.Tensor[T] {
	out := tensor.New[T](input.Shape())
	in, res := input.Data(), out.Data()
	for i, v := range in {
		res[i] = 1 / (1 + expT(-v))
	}
	s.output = out
	return out
}

// Backward computes grad * y * (1 - y) from the cached output.
func (s *Sigmoid[T]) Backward(grad *tensor.Tensor[T]) *tensor.Tensor[T] {
	if s.output == nil {
		panic(&CacheError{Layer: "Sigmoid"})
	}
	mustMatch("Sigmoid", "upstream gradient", grad.Shape(), s.output.Shape())

	out := tensor.New[T](grad.Shape())
	y, g, res := s.output.Data(), grad.Data(), out.Data()
	for i := range g {
		res[i] = g[i] * y[i] * (1 - y[i])
	}
	s.output = nil
	return out
}

// Parameters returns nil: Sigmoid has no trainable parameters.
func (s *Sigmoid[T]) Parameters() []*Parameter[T] { return nil }

// Tanh applies the hyperbolic tangent element-wise.
type Tanh[T tensor.Float] struct {
	output *tensor.Tensor[T]
}

// NewTanh creates a new Tanh activation layer.
func NewTanh[T tensor.Float]() *Tanh[T] {
	return &Tanh[T]{}
}

// Forward applies tanh and caches the output.
func (t *Tanh[T]) Forward(input *tensor.Tensor[T]) *tensor.Tensor[T] {
	out := tensor.New[T](input.Shape())
	in, res := input.Data(), out.Data()
	for i, v := range in {
		res[i] = tanhT(v)
	}
	t.output = out
	return out
}

// Backward computes grad * (1 - y^2) from the cached output.
func (t *Tanh[T]) Backward(grad *tensor.Tensor[T]) *tensor.Tensor[T] {
	if t.output == nil {
		panic(&CacheError{Layer: "Tanh"})
	}
	mustMatch("Tanh", "upstream gradient", grad.Shape(), t.output.Shape())

	out := tensor.New[T](grad.Shape())
	y, g, res := t.output.Data(), grad.Data(), out.Data()
	for i := range g {
		res[i] = g[i] * (1 - y[i]*y[i])
	}
	t.output = nil
	return out
}

// Parameters returns nil: Tanh has no trainable parameters.
func (t *Tanh[T]) Parameters() []*Parameter[T] { return nil }

// Identity passes its input through unchanged. Useful as a placeholder
// activation in composed blocks.
type Identity[T tensor.Float] struct {
	shape tensor.Shape
}

// NewIdentity creates a new Identity layer.
func NewIdentity[T tensor.Float]() *Identity[T] {
	return &Identity[T]{}
}

// Forward returns the input unchanged.
func (id *Identity[T]) Forward(input *tensor.Tensor[T]) *tensor.Tensor[T] {
	id.shape = input.Shape().Clone()
	return input
}

// Backward returns the upstream gradient unchanged.
func (id *Identity[T]) Backward(grad *tensor.Tensor[T]) *tensor.Tensor[T] {
	if id.shape == nil {
		panic(&CacheError{Layer: "Identity"})
	}
	mustMatch("Identity", "upstream gradient", grad.Shape(), id.shape)
	id.shape = nil
	return grad
}

// Parameters returns nil: Identity has no trainable parameters.
func (id *Identity[T]) Parameters() []*Parameter[T] { return nil }
