// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math"
	"math/rand"

	"github.com/gradnet-ml/gradnet/tensor"
)

// Xavier returns a tensor initialized with the Xavier/Glorot uniform
// distribution U(-b, b), b = sqrt(6 / (fanIn + fanOut)).
//
// This keeps the variance of activations roughly constant across layers and
// is the default for fully-connected weights.
func Xavier[T tensor.Float](fanIn, fanOut int, shape tensor.Shape) *tensor.Tensor[T] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	t := tensor.New[T](shape)
	data := t.Data()
	for i := range data {
		data[i] = T((rand.Float64()*2.0 - 1.0) * bound)
	}
	return t
}

// HeNormal returns a tensor initialized with N(0, sqrt(2/fanIn)), the
// standard initialization for layers followed by ReLU and the default for
// convolution filters.
func HeNormal[T tensor.Float](fanIn int, shape tensor.Shape) *tensor.Tensor[T] {
	sigma := math.Sqrt(2.0 / float64(fanIn))
	t := tensor.New[T](shape)
	data := t.Data()
	for i := range data {
		data[i] = T(rand.NormFloat64() * sigma)
	}
	return t
}
