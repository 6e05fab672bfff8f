// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package resnet composes the layer library into residual networks built
// from bottleneck blocks, up to the ResNet-101 layout.
package resnet

import (
	"fmt"

	"github.com/gradnet-ml/gradnet/nn"
	"github.com/gradnet-ml/gradnet/tensor"
)

// Bottleneck is the three-convolution residual block used by deep ResNets:
//
//	main:     conv1x1 (in -> mid) -> ReLU -> conv3x3 (mid -> mid, stride s,
//	          pad 1) -> ReLU -> conv1x1 (mid -> out)
//	shortcut: identity when in == out and s == 1, otherwise a learned
//	          conv1x1 (in -> out, stride s) projection
//	output:   ReLU(main + shortcut)
//
// The backward pass splits the upstream gradient additively at the merge:
// it flows through both branches independently and the two input gradients
// are summed, mirroring the forward addition.
type Bottleneck[T tensor.Float] struct {
	conv1 *nn.Conv2D[T]
	relu1 *nn.ReLU[T]
	conv2 *nn.Conv2D[T]
	relu2 *nn.ReLU[T]
	conv3 *nn.Conv2D[T]

	projection *nn.Conv2D[T] // nil for an identity shortcut

	// merge cache: pre-activation sum, kept for the final ReLU gradient
	preActivation *tensor.Tensor[T]
}

// NewBottleneck creates a bottleneck block. midChannels is the width of the
// 3x3 convolution; stride applies to the 3x3 convolution and to the
// projection shortcut when one is needed.
func NewBottleneck[T tensor.Float](inChannels, midChannels, outChannels, stride int) *Bottleneck[T] {
	if stride <= 0 {
		panic(&nn.ShapeError{Layer: "Bottleneck", Msg: fmt.Sprintf("invalid stride %d", stride)})
	}
	b := &Bottleneck[T]{
		conv1: nn.NewConv2D[T](inChannels, midChannels, 1, 1,
			nn.Stride{H: 1, W: 1}, nn.Padding{}, true),
		relu1: nn.NewReLU[T](),
		conv2: nn.NewConv2D[T](midChannels, midChannels, 3, 3,
			nn.Stride{H: stride, W: stride}, nn.Padding{H: 1, W: 1}, true),
		relu2: nn.NewReLU[T](),
		conv3: nn.NewConv2D[T](midChannels, outChannels, 1, 1,
			nn.Stride{H: 1, W: 1}, nn.Padding{}, true),
	}
	if inChannels != outChannels || stride != 1 {
		b.projection = nn.NewConv2D[T](inChannels, outChannels, 1, 1,
			nn.Stride{H: stride, W: stride}, nn.Padding{}, true)
	}
	return b
}

// Forward runs the main branch and the shortcut, sums them and applies the
// final ReLU.
func (b *Bottleneck[T]) Forward(input *tensor.Tensor[T]) *tensor.Tensor[T] {
	main := b.conv1.Forward(input)
	main = b.relu1.Forward(main)
	main = b.conv2.Forward(main)
	main = b.relu2.Forward(main)
	main = b.conv3.Forward(main)

	shortcut := input
	if b.projection != nil {
		shortcut = b.projection.Forward(input)
	}

	sum := main.Add(shortcut)
	b.preActivation = sum

	out := tensor.New[T](sum.Shape())
	outData := out.Data()
	for i, v := range sum.Data() {
		if v > 0 {
			outData[i] = v
		}
	}
	return out
}

// Backward propagates the gradient through the final ReLU, splits it at the
// merge point and sums the contributions of the main branch and the shortcut.
func (b *Bottleneck[T]) Backward(grad *tensor.Tensor[T]) *tensor.Tensor[T] {
	if b.preActivation == nil {
		panic(&nn.CacheError{Layer: "Bottleneck"})
	}

	// Gradient of the final ReLU, gated by the pre-activation sum.
	merged := tensor.New[T](b.preActivation.Shape())
	mData := merged.Data()
	gradData := grad.Data()
	if len(gradData) != len(mData) {
		panic(&nn.ShapeError{Layer: "Bottleneck", Msg: fmt.Sprintf(
			"upstream gradient shape %v does not match output shape %v",
			grad.Shape(), b.preActivation.Shape())})
	}
	for i, v := range b.preActivation.Data() {
		if v > 0 {
			mData[i] = gradData[i]
		}
	}

	mainGrad := b.conv3.Backward(merged)
	mainGrad = b.relu2.Backward(mainGrad)
	mainGrad = b.conv2.Backward(mainGrad)
	mainGrad = b.relu1.Backward(mainGrad)
	mainGrad = b.conv1.Backward(mainGrad)

	shortcutGrad := merged
	if b.projection != nil {
		shortcutGrad = b.projection.Backward(merged)
	}

	b.preActivation = nil
	return mainGrad.Add(shortcutGrad)
}

// Parameters returns the parameters of the three main convolutions and, when
// present, the projection shortcut.
func (b *Bottleneck[T]) Parameters() []*nn.Parameter[T] {
	params := append(b.conv1.Parameters(), b.conv2.Parameters()...)
	params = append(params, b.conv3.Parameters()...)
	if b.projection != nil {
		params = append(params, b.projection.Parameters()...)
	}
	return params
}

// HasProjection reports whether the shortcut is a learned projection rather
// than the identity.
func (b *Bottleneck[T]) HasProjection() bool { return b.projection != nil }

// ComputeOutputSize returns the output spatial dimensions for the given
// input spatial dimensions.
func (b *Bottleneck[T]) ComputeOutputSize(inputH, inputW int) (int, int) {
	return b.conv2.ComputeOutputSize(inputH, inputW)
}

// String returns a string representation of the block.
func (b *Bottleneck[T]) String() string {
	return fmt.Sprintf("Bottleneck(in=%d, mid=%d, out=%d, projection=%v)",
		b.conv1.InChannels(), b.conv2.InChannels(), b.conv3.OutChannels(), b.projection != nil)
}
