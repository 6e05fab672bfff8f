// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"

	"github.com/gradnet-ml/gradnet/tensor"
)

// BatchNorm2D normalizes each channel of a (batch, channels, H, W) tensor
// over the batch and spatial dimensions, then applies a learnable per-channel
// scale and shift.
//
// In training mode the layer normalizes with the current batch statistics
// and updates exponential running estimates:
//
//	running = momentum*batch + (1-momentum)*running
//
// The running variance uses the unbiased estimate (n/(n-1) correction). In
// evaluation mode the running estimates are used and treated as constants by
// the backward pass.
type BatchNorm2D[T tensor.Float] struct {
	numFeatures int
	eps         T
	momentum    T
	training    bool

	gamma *Parameter[T] // (numFeatures), initialized to ones
	beta  *Parameter[T] // (numFeatures), initialized to zeros

	runningMean []T
	runningVar  []T

	// forward cache
	input      *tensor.Tensor[T]
	normalized []T
	batchMean  []T
	batchVar   []T // biased (population) variance used for normalization
	usedBatch  bool
}

// NewBatchNorm2D creates a batch-normalization layer for the given channel
// count with eps 1e-5 and momentum 0.1.
func NewBatchNorm2D[T tensor.Float](numFeatures int) *BatchNorm2D[T] {
	if numFeatures <= 0 {
		panicShape("BatchNorm2D", "invalid feature count %d", numFeatures)
	}
	bn := &BatchNorm2D[T]{
		numFeatures: numFeatures,
		eps:         T(1e-5),
		momentum:    T(0.1),
		training:    true,
		gamma:       NewParameter("batchnorm2d.gamma", tensor.Ones[T](tensor.Shape{numFeatures})),
		beta:        NewParameter("batchnorm2d.beta", tensor.Zeros[T](tensor.Shape{numFeatures})),
		runningMean: make([]T, numFeatures),
		runningVar:  make([]T, numFeatures),
	}
	for i := range bn.runningVar {
		bn.runningVar[i] = 1
	}
	return bn
}

// SetTraining switches between batch statistics (true) and running
// statistics (false).
func (bn *BatchNorm2D[T]) SetTraining(training bool) { bn.training = training }

// Forward normalizes the input per channel and caches what the backward
// pass needs.
func (bn *BatchNorm2D[T]) Forward(input *tensor.Tensor[T]) *tensor.Tensor[T] {
	shape := input.Shape()
	if len(shape) != 4 {
		panicShape("BatchNorm2D", "expected 4D input (N,C,H,W), got shape %v", shape)
	}
	if shape[1] != bn.numFeatures {
		panicShape("BatchNorm2D", "input channels %d do not match features %d", shape[1], bn.numFeatures)
	}
	n, ch, h, w := shape[0], shape[1], shape[2], shape[3]
	planeSize := h * w
	m := n * planeSize // samples per channel

	inData := input.Data()
	mean := make([]T, ch)
	variance := make([]T, ch)

	if bn.training {
		for c := 0; c < ch; c++ {
			var sum T
			for b := 0; b < n; b++ {
				plane := inData[(b*ch+c)*planeSize : (b*ch+c+1)*planeSize]
				for _, v := range plane {
					sum += v
				}
			}
			mu := sum / T(m)
			var sqSum T
			for b := 0; b < n; b++ {
				plane := inData[(b*ch+c)*planeSize : (b*ch+c+1)*planeSize]
				for _, v := range plane {
					d := v - mu
					sqSum += d * d
				}
			}
			mean[c] = mu
			variance[c] = sqSum / T(m)

			unbiased := variance[c]
			if m > 1 {
				unbiased = sqSum / T(m-1)
			}
			bn.runningMean[c] = bn.momentum*mu + (1-bn.momentum)*bn.runningMean[c]
			bn.runningVar[c] = bn.momentum*unbiased + (1-bn.momentum)*bn.runningVar[c]
		}
	} else {
		copy(mean, bn.runningMean)
		copy(variance, bn.runningVar)
	}

	out := tensor.New[T](shape)
	outData := out.Data()
	normalized := make([]T, len(inData))
	gammaData := bn.gamma.Value().Data()
	betaData := bn.beta.Value().Data()
	for c := 0; c < ch; c++ {
		invStd := 1 / sqrtT(variance[c]+bn.eps)
		for b := 0; b < n; b++ {
			base := (b*ch + c) * planeSize
			for p := 0; p < planeSize; p++ {
				xh := (inData[base+p] - mean[c]) * invStd
				normalized[base+p] = xh
				outData[base+p] = gammaData[c]*xh + betaData[c]
			}
		}
	}

	bn.input = input
	bn.normalized = normalized
	bn.batchMean = mean
	bn.batchVar = variance
	bn.usedBatch = bn.training
	return out
}

// Backward computes the gamma, beta and input gradients. In training mode
// the gradient flows through the batch mean and variance; in evaluation mode
// the running statistics are constants.
func (bn *BatchNorm2D[T]) Backward(grad *tensor.Tensor[T]) *tensor.Tensor[T] {
	if bn.input == nil {
		panic(&CacheError{Layer: "BatchNorm2D"})
	}
	shape := bn.input.Shape()
	mustMatch("BatchNorm2D", "upstream gradient", grad.Shape(), shape)

	n, ch, h, w := shape[0], shape[1], shape[2], shape[3]
	planeSize := h * w
	m := n * planeSize

	gradData := grad.Data()
	inData := bn.input.Data()
	gammaData := bn.gamma.Value().Data()

	gammaGrad := tensor.Zeros[T](tensor.Shape{ch})
	betaGrad := tensor.Zeros[T](tensor.Shape{ch})
	gg := gammaGrad.Data()
	bg := betaGrad.Data()

	inputGrad := tensor.New[T](shape)
	ig := inputGrad.Data()

	for c := 0; c < ch; c++ {
		invStd := 1 / sqrtT(bn.batchVar[c]+bn.eps)

		var sumG, sumGXh T
		for b := 0; b < n; b++ {
			base := (b*ch + c) * planeSize
			for p := 0; p < planeSize; p++ {
				g := gradData[base+p]
				sumG += g
				sumGXh += g * bn.normalized[base+p]
			}
		}
		gg[c] = sumGXh
		bg[c] = sumG

		if !bn.usedBatch {
			scale := gammaData[c] * invStd
			for b := 0; b < n; b++ {
				base := (b*ch + c) * planeSize
				for p := 0; p < planeSize; p++ {
					ig[base+p] = gradData[base+p] * scale
				}
			}
			continue
		}

		// dL/dxhat = g*gamma, then propagate through variance and mean.
		var dVar, dMeanDirect, sumDiff T
		for b := 0; b < n; b++ {
			base := (b*ch + c) * planeSize
			for p := 0; p < planeSize; p++ {
				dxh := gradData[base+p] * gammaData[c]
				diff := inData[base+p] - bn.batchMean[c]
				dVar += dxh * diff
				dMeanDirect += dxh
				sumDiff += diff
			}
		}
		dVar *= -0.5 * invStd * invStd * invStd
		dMean := -dMeanDirect*invStd + dVar*(-2*sumDiff/T(m))

		for b := 0; b < n; b++ {
			base := (b*ch + c) * planeSize
			for p := 0; p < planeSize; p++ {
				dxh := gradData[base+p] * gammaData[c]
				diff := inData[base+p] - bn.batchMean[c]
				ig[base+p] = dxh*invStd + dVar*2*diff/T(m) + dMean/T(m)
			}
		}
	}

	bn.gamma.setGrad(gammaGrad)
	bn.beta.setGrad(betaGrad)

	bn.input = nil
	bn.normalized = nil
	bn.batchMean = nil
	bn.batchVar = nil
	return inputGrad
}

// Parameters returns the gamma and beta parameters.
func (bn *BatchNorm2D[T]) Parameters() []*Parameter[T] {
	return []*Parameter[T]{bn.gamma, bn.beta}
}

// RunningMean returns the exponential running mean per channel.
func (bn *BatchNorm2D[T]) RunningMean() []T { return bn.runningMean }

// RunningVar returns the exponential running variance per channel.
func (bn *BatchNorm2D[T]) RunningVar() []T { return bn.runningVar }

// String returns a string representation of the layer.
func (bn *BatchNorm2D[T]) String() string {
	return fmt.Sprintf("BatchNorm2D(num_features=%d, eps=%v, momentum=%v)", bn.numFeatures, bn.eps, bn.momentum)
}
