// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/gradnet-ml/gradnet/tensor"
)

// GlobalAvgPool2D averages each channel plane down to a single value.
//
// Input shape:  (batch, channels, H, W)
// Output shape: (batch, channels)
//
// The backward pass spreads each upstream gradient uniformly over the plane
// it was averaged from, scaled by 1/(H*W).
type GlobalAvgPool2D[T tensor.Float] struct {
	inputShape tensor.Shape
}

// NewGlobalAvgPool2D creates a global average pooling layer.
func NewGlobalAvgPool2D[T tensor.Float]() *GlobalAvgPool2D[T] {
	return &GlobalAvgPool2D[T]{}
}

// Forward averages over the spatial dimensions.
func (p *GlobalAvgPool2D[T]) Forward(input *tensor.Tensor[T]) *tensor.Tensor[T] {
	shape := input.Shape()
	if len(shape) != 4 {
		panicShape("GlobalAvgPool2D", "expected 4D input (N,C,H,W), got shape %v", shape)
	}
	n, ch, h, w := shape[0], shape[1], shape[2], shape[3]
	planeSize := h * w
	p.inputShape = shape.Clone()

	out := tensor.New[T](tensor.Shape{n, ch})
	outData := out.Data()
	inData := input.Data()
	for i := 0; i < n*ch; i++ {
		var sum T
		for _, v := range inData[i*planeSize : (i+1)*planeSize] {
			sum += v
		}
		outData[i] = sum / T(planeSize)
	}
	return out
}

// Backward spreads each gradient uniformly across its source plane.
func (p *GlobalAvgPool2D[T]) Backward(grad *tensor.Tensor[T]) *tensor.Tensor[T] {
	if p.inputShape == nil {
		panic(&CacheError{Layer: "GlobalAvgPool2D"})
	}
	n, ch := p.inputShape[0], p.inputShape[1]
	mustMatch("GlobalAvgPool2D", "upstream gradient", grad.Shape(), tensor.Shape{n, ch})

	planeSize := p.inputShape[2] * p.inputShape[3]
	inputGrad := tensor.New[T](p.inputShape)
	ig := inputGrad.Data()
	gradData := grad.Data()
	for i := 0; i < n*ch; i++ {
		v := gradData[i] / T(planeSize)
		plane := ig[i*planeSize : (i+1)*planeSize]
		for j := range plane {
			plane[j] = v
		}
	}

	p.inputShape = nil
	return inputGrad
}

// Parameters returns nil; pooling has no learnable parameters.
func (p *GlobalAvgPool2D[T]) Parameters() []*Parameter[T] { return nil }

// String returns a string representation of the layer.
func (p *GlobalAvgPool2D[T]) String() string { return "GlobalAvgPool2D()" }
