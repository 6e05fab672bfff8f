// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/gradnet-ml/gradnet/tensor"
)

// lossEps keeps log arguments away from zero.
const lossEps = 1e-8

// CrossEntropyLoss computes the mean cross-entropy between predicted
// probabilities and one-hot targets, both shaped (batch, classes).
// Predictions are clipped to [lossEps, 1] before the log.
type CrossEntropyLoss[T tensor.Float] struct {
	pred   *tensor.Tensor[T]
	target *tensor.Tensor[T]
}

// NewCrossEntropyLoss creates a cross-entropy loss over probabilities.
func NewCrossEntropyLoss[T tensor.Float]() *CrossEntropyLoss[T] {
	return &CrossEntropyLoss[T]{}
}

// Forward returns the mean cross-entropy over the batch.
func (l *CrossEntropyLoss[T]) Forward(pred, target *tensor.Tensor[T]) T {
	if len(pred.Shape()) != 2 {
		panicShape("CrossEntropyLoss", "expected 2D predictions (batch, classes), got shape %v", pred.Shape())
	}
	mustMatch("CrossEntropyLoss", "target", target.Shape(), pred.Shape())
	l.pred = pred
	l.target = target

	n := pred.Shape()[0]
	predData := pred.Data()
	targetData := target.Data()
	var loss T
	for i, t := range targetData {
		if t == 0 {
			continue
		}
		p := predData[i]
		if p < lossEps {
			p = lossEps
		}
		loss -= t * logT(p)
	}
	return loss / T(n)
}

// Backward returns dL/dpred for the last Forward call.
func (l *CrossEntropyLoss[T]) Backward() *tensor.Tensor[T] {
	if l.pred == nil {
		panic(&CacheError{Layer: "CrossEntropyLoss"})
	}
	n := l.pred.Shape()[0]
	grad := tensor.New[T](l.pred.Shape())
	g := grad.Data()
	predData := l.pred.Data()
	targetData := l.target.Data()
	for i, t := range targetData {
		if t == 0 {
			continue
		}
		p := predData[i]
		if p < lossEps {
			p = lossEps
		}
		g[i] = -t / p / T(n)
	}

	l.pred = nil
	l.target = nil
	return grad
}

// CrossEntropyWithSoftmax fuses a softmax over logits with cross-entropy
// against one-hot targets. Fusing makes the gradient the numerically stable
//
//	dL/dlogits = (softmax(logits) - target) / batch
//
// so no Jacobian or clipped log enters the backward pass.
type CrossEntropyWithSoftmax[T tensor.Float] struct {
	probs  *tensor.Tensor[T]
	target *tensor.Tensor[T]
}

// NewCrossEntropyWithSoftmax creates a fused softmax cross-entropy loss.
func NewCrossEntropyWithSoftmax[T tensor.Float]() *CrossEntropyWithSoftmax[T] {
	return &CrossEntropyWithSoftmax[T]{}
}

// Forward computes softmax probabilities from the logits and returns the
// mean cross-entropy against the targets.
func (l *CrossEntropyWithSoftmax[T]) Forward(logits, target *tensor.Tensor[T]) T {
	shape := logits.Shape()
	if len(shape) != 2 {
		panicShape("CrossEntropyWithSoftmax", "expected 2D logits (batch, classes), got shape %v", shape)
	}
	mustMatch("CrossEntropyWithSoftmax", "target", target.Shape(), shape)
	n, classes := shape[0], shape[1]

	probs := tensor.New[T](shape)
	probsData := probs.Data()
	logitsData := logits.Data()
	for b := 0; b < n; b++ {
		row := logitsData[b*classes : (b+1)*classes]
		pRow := probsData[b*classes : (b+1)*classes]
		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		var sum T
		for i, v := range row {
			e := expT(v - maxVal)
			pRow[i] = e
			sum += e
		}
		for i := range pRow {
			pRow[i] /= sum
		}
	}
	l.probs = probs
	l.target = target

	targetData := target.Data()
	var loss T
	for i, t := range targetData {
		if t == 0 {
			continue
		}
		p := probsData[i]
		if p < lossEps {
			p = lossEps
		}
		loss -= t * logT(p)
	}
	return loss / T(n)
}

// Backward returns dL/dlogits for the last Forward call.
func (l *CrossEntropyWithSoftmax[T]) Backward() *tensor.Tensor[T] {
	if l.probs == nil {
		panic(&CacheError{Layer: "CrossEntropyWithSoftmax"})
	}
	n := l.probs.Shape()[0]
	grad := tensor.New[T](l.probs.Shape())
	g := grad.Data()
	probsData := l.probs.Data()
	targetData := l.target.Data()
	for i := range g {
		g[i] = (probsData[i] - targetData[i]) / T(n)
	}

	l.probs = nil
	l.target = nil
	return grad
}
