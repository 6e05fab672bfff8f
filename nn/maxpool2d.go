// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"

	"github.com/gradnet-ml/gradnet/tensor"
)

// MaxPool2D is a 2-D max-pooling layer without padding.
//
// Input shape:  (batch, channels, H, W)
// Output shape: (batch, channels, HOut, WOut)
//
// where
//
//	HOut = (H - kernelH) / strideH + 1
//	WOut = (W - kernelW) / strideW + 1
//
// Windows that would extend past the input border are dropped. Each output
// element is the maximum of its window; on ties the first maximum in
// row-major window order wins, and the backward pass routes the whole
// upstream gradient to that single winning location. Where windows overlap,
// routed gradients accumulate.
type MaxPool2D[T tensor.Float] struct {
	kernelH int
	kernelW int
	stride  Stride

	inputShape tensor.Shape // forward cache
	maxIndices []int        // flat input index of the winner per output element
}

// NewMaxPool2D creates a max-pooling layer with the given window and stride.
func NewMaxPool2D[T tensor.Float](kernelH, kernelW int, stride Stride) *MaxPool2D[T] {
	if kernelH <= 0 || kernelW <= 0 {
		panicShape("MaxPool2D", "invalid kernel size %dx%d", kernelH, kernelW)
	}
	if stride.H <= 0 || stride.W <= 0 {
		panicShape("MaxPool2D", "invalid stride (%d, %d)", stride.H, stride.W)
	}
	return &MaxPool2D[T]{kernelH: kernelH, kernelW: kernelW, stride: stride}
}

// Forward pools each window down to its maximum and caches the winning
// positions for the backward pass.
func (p *MaxPool2D[T]) Forward(input *tensor.Tensor[T]) *tensor.Tensor[T] {
	shape := input.Shape()
	if len(shape) != 4 {
		panicShape("MaxPool2D", "expected 4D input (N,C,H,W), got shape %v", shape)
	}
	n, ch, h, w := shape[0], shape[1], shape[2], shape[3]
	if p.kernelH > h || p.kernelW > w {
		panicShape("MaxPool2D", "kernel %dx%d larger than input %dx%d", p.kernelH, p.kernelW, h, w)
	}
	hOut, wOut := p.outputSize(h, w)

	p.inputShape = shape.Clone()
	p.maxIndices = make([]int, n*ch*hOut*wOut)

	out := tensor.New[T](tensor.Shape{n, ch, hOut, wOut})
	outData := out.Data()
	inData := input.Data()

	outIdx := 0
	for b := 0; b < n; b++ {
		for c := 0; c < ch; c++ {
			plane := inData[(b*ch+c)*h*w : (b*ch+c+1)*h*w]
			planeBase := (b*ch + c) * h * w
			for outH := 0; outH < hOut; outH++ {
				for outW := 0; outW < wOut; outW++ {
					hStart := outH * p.stride.H
					wStart := outW * p.stride.W
					maxIdx := hStart*w + wStart
					maxVal := plane[maxIdx]
					for kh := 0; kh < p.kernelH; kh++ {
						row := (hStart + kh) * w
						for kw := 0; kw < p.kernelW; kw++ {
							idx := row + wStart + kw
							if plane[idx] > maxVal {
								maxVal = plane[idx]
								maxIdx = idx
							}
						}
					}
					outData[outIdx] = maxVal
					p.maxIndices[outIdx] = planeBase + maxIdx
					outIdx++
				}
			}
		}
	}
	return out
}

// Backward scatters each upstream gradient to the input position that won
// its window, then clears the cache.
func (p *MaxPool2D[T]) Backward(grad *tensor.Tensor[T]) *tensor.Tensor[T] {
	if p.maxIndices == nil {
		panic(&CacheError{Layer: "MaxPool2D"})
	}
	n, ch := p.inputShape[0], p.inputShape[1]
	hOut, wOut := p.outputSize(p.inputShape[2], p.inputShape[3])
	mustMatch("MaxPool2D", "upstream gradient", grad.Shape(), tensor.Shape{n, ch, hOut, wOut})

	inputGrad := tensor.Zeros[T](p.inputShape)
	ig := inputGrad.Data()
	for i, v := range grad.Data() {
		ig[p.maxIndices[i]] += v
	}

	p.inputShape = nil
	p.maxIndices = nil
	return inputGrad
}

func (p *MaxPool2D[T]) outputSize(h, w int) (int, int) {
	return (h-p.kernelH)/p.stride.H + 1, (w-p.kernelW)/p.stride.W + 1
}

// ComputeOutputSize returns the output spatial dimensions (HOut, WOut) for
// the given input spatial dimensions.
func (p *MaxPool2D[T]) ComputeOutputSize(inputH, inputW int) (int, int) {
	return p.outputSize(inputH, inputW)
}

// Parameters returns nil; pooling has no learnable parameters.
func (p *MaxPool2D[T]) Parameters() []*Parameter[T] { return nil }

// String returns a string representation of the layer.
func (p *MaxPool2D[T]) String() string {
	return fmt.Sprintf("MaxPool2D(kernel_size=(%d, %d), stride=(%d, %d))",
		p.kernelH, p.kernelW, p.stride.H, p.stride.W)
}
