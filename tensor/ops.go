// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "fmt"

func elementwise[T Float](op string, a, b *Tensor[T], f func(x, y T) T) *Tensor[T] {
	if !a.shape.Equal(b.shape) {
		panic(fmt.Sprintf("tensor: %s: shape mismatch %v vs %v", op, a.shape, b.shape))
	}
	out := New[T](a.shape)
	for i := range out.data {
		out.data[i] = f(a.data[i], b.data[i])
	}
	return out
}

// Add returns the element-wise sum a + b. Shapes must match exactly.
func (t *Tensor[T]) Add(other *Tensor[T]) *Tensor[T] {
	return elementwise("add", t, other, func(x, y T) T { return x + y })
}

// Sub returns the element-wise difference a - b. Shapes must match exactly.
func (t *Tensor[T]) Sub(other *Tensor[T]) *Tensor[T] {
	return elementwise("sub", t, other, func(x, y T) T { return x - y })
}

// Mul returns the element-wise (Hadamard) product. Shapes must match exactly.
func (t *Tensor[T]) Mul(other *Tensor[T]) *Tensor[T] {
	return elementwise("mul", t, other, func(x, y T) T { return x * y })
}

// Scale returns the tensor multiplied by a scalar.
func (t *Tensor[T]) Scale(s T) *Tensor[T] {
	out := New[T](t.shape)
	for i, v := range t.data {
		out.data[i] = v * s
	}
	return out
}

// AddInPlace accumulates other into t element-wise.
func (t *Tensor[T]) AddInPlace(other *Tensor[T]) {
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("tensor: add: shape mismatch %v vs %v", t.shape, other.shape))
	}
	for i, v := range other.data {
		t.data[i] += v
	}
}

// Sum returns the sum of all elements.
func (t *Tensor[T]) Sum() T {
	var sum T
	for _, v := range t.data {
		sum += v
	}
	return sum
}

// Transpose returns the transpose of a 2-D tensor.
func (t *Tensor[T]) Transpose() *Tensor[T] {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("tensor: transpose: expected 2D tensor, got shape %v", t.shape))
	}
	rows, cols := t.shape[0], t.shape[1]
	out := New[T](Shape{cols, rows})
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.data[c*rows+r] = t.data[r*cols+c]
		}
	}
	return out
}

// MaxAbsDiff returns the largest absolute element-wise difference between
// two tensors of identical shape.
func MaxAbsDiff[T Float](a, b *Tensor[T]) float64 {
	if !a.shape.Equal(b.shape) {
		panic(fmt.Sprintf("tensor: maxAbsDiff: shape mismatch %v vs %v", a.shape, b.shape))
	}
	maxDiff := 0.0
	for i := range a.data {
		d := float64(a.data[i] - b.data[i])
		if d < 0 {
			d = -d
		}
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff
}

// AllClose reports whether every element of a and b differs by at most tol.
func AllClose[T Float](a, b *Tensor[T], tol float64) bool {
	return MaxAbsDiff(a, b) <= tol
}
