// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/gradnet-ml/gradnet/nn"
	"github.com/gradnet-ml/gradnet/tensor"
)

// AdaBound is Adam with per-element learning-rate clamping. The clamp
// bounds tighten toward finalLR as training progresses, so the optimizer
// behaves like Adam early and converges to SGD with rate finalLR:
//
//	lower = finalLR * (1 - 1/(gamma*t + 1))
//	upper = finalLR * (1 + 1/(gamma*t))
//	step  = clamp(lr/(sqrt(vHat)+eps), lower, upper) * mHat
type AdaBound[T tensor.Float] struct {
	params  []*nn.Parameter[T]
	lr      T
	finalLR T
	beta1   T
	beta2   T
	gamma   T
	eps     T
	step    int
	m       [][]T
	v       [][]T
}

// NewAdaBound creates an AdaBound optimizer with beta1=0.9, beta2=0.999,
// gamma=1e-3, eps=1e-8.
func NewAdaBound[T tensor.Float](params []*nn.Parameter[T], lr, finalLR T) *AdaBound[T] {
	m := make([][]T, len(params))
	v := make([][]T, len(params))
	for i, p := range params {
		n := p.Value().NumElements()
		m[i] = make([]T, n)
		v[i] = make([]T, n)
	}
	return &AdaBound[T]{
		params:  params,
		lr:      lr,
		finalLR: finalLR,
		beta1:   T(0.9),
		beta2:   T(0.999),
		gamma:   T(1e-3),
		eps:     T(1e-8),
		m:       m,
		v:       v,
	}
}

// Step applies one AdaBound update to every parameter.
func (o *AdaBound[T]) Step() {
	o.step++
	t := T(o.step)
	bc1 := 1 - powT(o.beta1, o.step)
	bc2 := 1 - powT(o.beta2, o.step)
	lower := o.finalLR * (1 - 1/(o.gamma*t+1))
	upper := o.finalLR * (1 + 1/(o.gamma*t))
	for i, p := range o.params {
		value := p.Value().Data()
		grad := p.Grad().Data()
		m, v := o.m[i], o.v[i]
		for j := range value {
			g := grad[j]
			m[j] = o.beta1*m[j] + (1-o.beta1)*g
			v[j] = o.beta2*v[j] + (1-o.beta2)*g*g
			mHat := m[j] / bc1
			vHat := v[j] / bc2
			rate := o.lr / (sqrtT(vHat) + o.eps)
			if rate < lower {
				rate = lower
			} else if rate > upper {
				rate = upper
			}
			value[j] -= rate * mHat
		}
	}
}

// ZeroGrad clears every parameter gradient.
func (o *AdaBound[T]) ZeroGrad() { zeroGrads(o.params) }
