// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"

	"github.com/gradnet-ml/gradnet/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the affine transform y = x @ W + b where:
//   - x is the input with shape (batch, inFeatures)
//   - W is the weight matrix with shape (inFeatures, outFeatures)
//   - b is the bias vector with shape (outFeatures)
//   - y is the output with shape (batch, outFeatures)
//
// Weights are initialized with Xavier/Glorot uniform, biases with zeros.
//
// Backward, given dL/dy of shape (batch, outFeatures):
//
//	dL/dW = xᵀ @ dL/dy
//	dL/db = sum over the batch of dL/dy
//	dL/dx = dL/dy @ Wᵀ
type Linear[T tensor.Float] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[T] // (inFeatures, outFeatures)
	bias        *Parameter[T] // (outFeatures)

	input *tensor.Tensor[T] // forward cache
}

// NewLinear creates a new fully connected layer.
func NewLinear[T tensor.Float](inFeatures, outFeatures int) *Linear[T] {
	if inFeatures <= 0 || outFeatures <= 0 {
		panicShape("Linear", "invalid feature counts in=%d, out=%d", inFeatures, outFeatures)
	}

	weight := NewParameter("linear.weight",
		Xavier[T](inFeatures, outFeatures, tensor.Shape{inFeatures, outFeatures}))
	bias := NewParameter("linear.bias", tensor.Zeros[T](tensor.Shape{outFeatures}))

	return &Linear[T]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
	}
}

// Forward computes y = x @ W + b and caches x.
//
// Input: (batch, inFeatures) -> output: (batch, outFeatures).
func (l *Linear[T]) Forward(input *tensor.Tensor[T]) *tensor.Tensor[T] {
	shape := input.Shape()
	if len(shape) != 2 {
		panicShape("Linear", "expected 2D input (batch, features), got shape %v", shape)
	}
	if shape[1] != l.inFeatures {
		panicShape("Linear", "input features %d do not match layer features %d", shape[1], l.inFeatures)
	}
	l.input = input

	out := input.MatMul(l.weight.Value())
	batch := shape[0]
	outData := out.Data()
	biasData := l.bias.Value().Data()
	for b := 0; b < batch; b++ {
		row := outData[b*l.outFeatures : (b+1)*l.outFeatures]
		for j, bv := range biasData {
			row[j] += bv
		}
	}
	return out
}

// Backward computes the weight, bias and input gradients from the cached
// input. The cached input is never mutated.
func (l *Linear[T]) Backward(grad *tensor.Tensor[T]) *tensor.Tensor[T] {
	if l.input == nil {
		panic(&CacheError{Layer: "Linear"})
	}
	batch := l.input.Shape()[0]
	mustMatch("Linear", "upstream gradient", grad.Shape(), tensor.Shape{batch, l.outFeatures})

	// dW = xᵀ @ g
	l.weight.setGrad(l.input.Transpose().MatMul(grad))

	// db = sum over the batch of g
	biasGrad := tensor.Zeros[T](tensor.Shape{l.outFeatures})
	bg := biasGrad.Data()
	g := grad.Data()
	for b := 0; b < batch; b++ {
		row := g[b*l.outFeatures : (b+1)*l.outFeatures]
		for j, v := range row {
			bg[j] += v
		}
	}
	l.bias.setGrad(biasGrad)

	// dx = g @ Wᵀ
	inputGrad := grad.MatMul(l.weight.Value().Transpose())
	l.input = nil
	return inputGrad
}

// Parameters returns the weight and bias parameters.
func (l *Linear[T]) Parameters() []*Parameter[T] {
	return []*Parameter[T]{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear[T]) Weight() *Parameter[T] { return l.weight }

// Bias returns the bias parameter.
func (l *Linear[T]) Bias() *Parameter[T] { return l.bias }

// InFeatures returns the number of input features.
func (l *Linear[T]) InFeatures() int { return l.inFeatures }

// OutFeatures returns the number of output features.
func (l *Linear[T]) OutFeatures() int { return l.outFeatures }

// String returns a string representation of the layer.
func (l *Linear[T]) String() string {
	return fmt.Sprintf("Linear(in_features=%d, out_features=%d)", l.inFeatures, l.outFeatures)
}
