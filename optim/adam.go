// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"math"

	"github.com/chewxy/math32"

	"github.com/gradnet-ml/gradnet/nn"
	"github.com/gradnet-ml/gradnet/tensor"
)

// Adam implements the Adam optimizer with bias-corrected first and second
// moment estimates.
type Adam[T tensor.Float] struct {
	params []*nn.Parameter[T]
	lr     T
	beta1  T
	beta2  T
	eps    T
	step   int
	m      [][]T // first moment
	v      [][]T // second moment
}

// NewAdam creates an Adam optimizer with the usual defaults
// beta1=0.9, beta2=0.999, eps=1e-8.
func NewAdam[T tensor.Float](params []*nn.Parameter[T], lr T) *Adam[T] {
	m := make([][]T, len(params))
	v := make([][]T, len(params))
	for i, p := range params {
		n := p.Value().NumElements()
		m[i] = make([]T, n)
		v[i] = make([]T, n)
	}
	return &Adam[T]{
		params: params,
		lr:     lr,
		beta1:  T(0.9),
		beta2:  T(0.999),
		eps:    T(1e-8),
		m:      m,
		v:      v,
	}
}

// Step applies one Adam update to every parameter.
func (o *Adam[T]) Step() {
	o.step++
	bc1 := 1 - powT(o.beta1, o.step)
	bc2 := 1 - powT(o.beta2, o.step)
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
			value[j] -= o.lr * mHat / (sqrtT(vHat) + o.eps)
		}
	}
}

// ZeroGrad clears every parameter gradient.
func (o *Adam[T]) ZeroGrad() { zeroGrads(o.params) }

func sqrtT[T tensor.Float](x T) T {
	if f, ok := any(x).(float32); ok {
		return T(math32.Sqrt(f))
	}
	return T(math.Sqrt(float64(x)))
}

func powT[T tensor.Float](x T, n int) T {
	if f, ok := any(x).(float32); ok {
		return T(math32.Pow(f, float32(n)))
	}
	return T(math.Pow(float64(x), float64(n)))
}
