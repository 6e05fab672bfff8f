// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/gradnet-ml/gradnet/tensor"
)

// Softmax normalizes each row of a (batch, classes) tensor into a
// probability distribution. The forward pass subtracts the row maximum
// before exponentiating for numerical stability.
//
// The backward pass applies the softmax Jacobian row by row:
//
//	dx[i] = y[i] * (g[i] - Σ_j g[j]*y[j])
//
// When the layer feeds a cross-entropy loss, prefer CrossEntropyWithSoftmax,
// which fuses both gradients into the numerically stable (p - target)/batch
// form.
type Softmax[T tensor.Float] struct {
	output *tensor.Tensor[T]
}

// NewSoftmax creates a softmax layer.
func NewSoftmax[T tensor.Float]() *Softmax[T] {
	return &Softmax[T]{}
}

// Forward computes row-wise softmax and caches the probabilities.
func (s *Softmax[T]) Forward(input *tensor.Tensor[T]) *tensor.Tensor[T] {
	shape := input.Shape()
	if len(shape) != 2 {
		panicShape("Softmax", "expected 2D input (batch, classes), got shape %v", shape)
	}
	n, classes := shape[0], shape[1]

	out := tensor.New[T](shape)
	outData := out.Data()
	inData := input.Data()
	for b := 0; b < n; b++ {
		row := inData[b*classes : (b+1)*classes]
		outRow := outData[b*classes : (b+1)*classes]

		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		var sum T
		for i, v := range row {
			e := expT(v - maxVal)
			outRow[i] = e
			sum += e
		}
		for i := range outRow {
			outRow[i] /= sum
		}
	}

	s.output = out
	return out
}

// Backward applies the softmax Jacobian to the upstream gradient.
func (s *Softmax[T]) Backward(grad *tensor.Tensor[T]) *tensor.Tensor[T] {
	if s.output == nil {
		panic(&CacheError{Layer: "Softmax"})
	}
	mustMatch("Softmax", "upstream gradient", grad.Shape(), s.output.Shape())

	shape := s.output.Shape()
	n, classes := shape[0], shape[1]
	inputGrad := tensor.New[T](shape)
	ig := inputGrad.Data()
	gradData := grad.Data()
	outData := s.output.Data()
	for b := 0; b < n; b++ {
		gRow := gradData[b*classes : (b+1)*classes]
		yRow := outData[b*classes : (b+1)*classes]
		var dot T
		for i := range yRow {
			dot += gRow[i] * yRow[i]
		}
		igRow := ig[b*classes : (b+1)*classes]
		for i := range yRow {
			igRow[i] = yRow[i] * (gRow[i] - dot)
		}
	}

	s.output = nil
	return inputGrad
}

// Parameters returns nil; softmax has no learnable parameters.
func (s *Softmax[T]) Parameters() []*Parameter[T] { return nil }

// String returns a string representation of the layer.
func (s *Softmax[T]) String() string { return "Softmax()" }
