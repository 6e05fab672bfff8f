// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "math/rand"

// Zeros creates a tensor filled with zeros.
func Zeros[T Float](shape Shape) *Tensor[T] {
	return New[T](shape)
}

// Ones creates a tensor filled with ones.
func Ones[T Float](shape Shape) *Tensor[T] {
	return Full[T](shape, 1)
}

// Full creates a tensor filled with a specific value.
func Full[T Float](shape Shape, value T) *Tensor[T] {
	t := New[T](shape)
	t.Fill(value)
	return t
}

// Randn creates a tensor filled with values from the standard normal
// distribution N(0, 1).
func Randn[T Float](shape Shape) *Tensor[T] {
	t := New[T](shape)
	for i := range t.data {
		t.data[i] = T(rand.NormFloat64())
	}
	return t
}

// RandnScaled creates a tensor of N(0, 1) samples multiplied by scale,
// the usual randn*0.01 style of layer-parameter initialization.
func RandnScaled[T Float](shape Shape, scale T) *Tensor[T] {
	t := New[T](shape)
	for i := range t.data {
		t.data[i] = T(rand.NormFloat64()) * scale
	}
	return t
}
