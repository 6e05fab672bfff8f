// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package resnet

import (
	"fmt"

	"github.com/gradnet-ml/gradnet/nn"
	"github.com/gradnet-ml/gradnet/tensor"
)

// expansion is the bottleneck output-to-mid channel ratio.
const expansion = 4

// ResNet is a residual network of bottleneck blocks: a 7x7 stem convolution
// with stride 2, max pooling, four bottleneck stages, global average pooling
// and a final fully-connected classifier.
type ResNet[T tensor.Float] struct {
	stem    *nn.Conv2D[T]
	relu    *nn.ReLU[T]
	pool    *nn.MaxPool2D[T]
	stages  []*Bottleneck[T]
	avgPool *nn.GlobalAvgPool2D[T]
	fc      *nn.Linear[T]

	blocksPerStage []int
}

// NewResNet builds a bottleneck residual network for the given stage depths.
// blocksPerStage gives the number of bottleneck blocks in each of the four
// stages; stage widths are 64, 128, 256 and 512 with expansion 4. The first
// block of every stage after the first downsamples with stride 2.
func NewResNet[T tensor.Float](inChannels, numClasses int, blocksPerStage [4]int) *ResNet[T] {
	for i, n := range blocksPerStage {
		if n <= 0 {
			panic(&nn.ShapeError{Layer: "ResNet", Msg: fmt.Sprintf("stage %d has %d blocks", i, n)})
		}
	}

	r := &ResNet[T]{
		stem: nn.NewConv2D[T](inChannels, 64, 7, 7,
			nn.Stride{H: 2, W: 2}, nn.Padding{H: 3, W: 3}, true),
		relu:           nn.NewReLU[T](),
		pool:           nn.NewMaxPool2D[T](3, 3, nn.Stride{H: 2, W: 2}),
		avgPool:        nn.NewGlobalAvgPool2D[T](),
		blocksPerStage: blocksPerStage[:],
	}

	widths := [4]int{64, 128, 256, 512}
	channels := 64
	for stage, blocks := range blocksPerStage {
		mid := widths[stage]
		out := mid * expansion
		for block := 0; block < blocks; block++ {
			stride := 1
			if stage > 0 && block == 0 {
				stride = 2
			}
			r.stages = append(r.stages, NewBottleneck[T](channels, mid, out, stride))
			channels = out
		}
	}

	r.fc = nn.NewLinear[T](channels, numClasses)
	return r
}

// NewResNet101 builds the 101-layer configuration: stage depths 3, 4, 23, 3.
func NewResNet101[T tensor.Float](inChannels, numClasses int) *ResNet[T] {
	return NewResNet[T](inChannels, numClasses, [4]int{3, 4, 23, 3})
}

// NewResNet50 builds the 50-layer configuration: stage depths 3, 4, 6, 3.
func NewResNet50[T tensor.Float](inChannels, numClasses int) *ResNet[T] {
	return NewResNet[T](inChannels, numClasses, [4]int{3, 4, 6, 3})
}

// Forward runs the full network and returns class logits of shape
// (batch, numClasses).
func (r *ResNet[T]) Forward(input *tensor.Tensor[T]) *tensor.Tensor[T] {
	out := r.stem.Forward(input)
	out = r.relu.Forward(out)
	out = r.pool.Forward(out)
	for _, block := range r.stages {
		out = block.Forward(out)
	}
	out = r.avgPool.Forward(out)
	return r.fc.Forward(out)
}

// Backward propagates the logit gradient back to the input, filling every
// parameter gradient along the way.
func (r *ResNet[T]) Backward(grad *tensor.Tensor[T]) *tensor.Tensor[T] {
	g := r.fc.Backward(grad)
	g = r.avgPool.Backward(g)
	for i := len(r.stages) - 1; i >= 0; i-- {
		g = r.stages[i].Backward(g)
	}
	g = r.pool.Backward(g)
	g = r.relu.Backward(g)
	return r.stem.Backward(g)
}

// Parameters returns every learnable parameter in forward order.
func (r *ResNet[T]) Parameters() []*nn.Parameter[T] {
	params := r.stem.Parameters()
	for _, block := range r.stages {
		params = append(params, block.Parameters()...)
	}
	return append(params, r.fc.Parameters()...)
}

// NumBlocks returns the total number of bottleneck blocks.
func (r *ResNet[T]) NumBlocks() int { return len(r.stages) }

// String returns a string representation of the network.
func (r *ResNet[T]) String() string {
	return fmt.Sprintf("ResNet(blocks=%v, classes=%d)", r.blocksPerStage, r.fc.OutFeatures())
}
