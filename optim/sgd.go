// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/gradnet-ml/gradnet/nn"
	"github.com/gradnet-ml/gradnet/tensor"
)

// SGD is stochastic gradient descent with optional momentum:
//
//	v = momentum*v + grad
//	param -= lr * v
//
// With momentum 0 this is plain gradient descent.
type SGD[T tensor.Float] struct {
	params   []*nn.Parameter[T]
	lr       T
	momentum T
	velocity [][]T
}

// NewSGD creates an SGD optimizer over params.
func NewSGD[T tensor.Float](params []*nn.Parameter[T], lr, momentum T) *SGD[T] {
	velocity := make([][]T, len(params))
	for i, p := range params {
		velocity[i] = make([]T, p.Value().NumElements())
	}
	return &SGD[T]{params: params, lr: lr, momentum: momentum, velocity: velocity}
}

// Step applies one SGD update to every parameter.
func (o *SGD[T]) Step() {
	for i, p := range o.params {
		value := p.Value().Data()
		grad := p.Grad().Data()
		v := o.velocity[i]
		for j := range value {
			v[j] = o.momentum*v[j] + grad[j]
			value[j] -= o.lr * v[j]
		}
	}
}

// ZeroGrad clears every parameter gradient.
func (o *SGD[T]) ZeroGrad() { zeroGrads(o.params) }
