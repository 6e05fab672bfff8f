// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MatMul returns the matrix product of two 2-D tensors.
//
// a must be (m, k) and b must be (k, n); the result is (m, n). The
// multiplication is delegated to gonum's mat.Dense, which carries the
// optimized BLAS kernels; data is staged through float64.
func (t *Tensor[T]) MatMul(other *Tensor[T]) *Tensor[T] {
	if len(t.shape) != 2 || len(other.shape) != 2 {
		panic(fmt.Sprintf("tensor: matmul: expected 2D tensors, got %v and %v", t.shape, other.shape))
	}
	m, k := t.shape[0], t.shape[1]
	k2, n := other.shape[0], other.shape[1]
	if k != k2 {
		panic(fmt.Sprintf("tensor: matmul: inner dimensions disagree: %v x %v", t.shape, other.shape))
	}

	a := mat.NewDense(m, k, toFloat64(t.data))
	b := mat.NewDense(k2, n, toFloat64(other.data))
	c := mat.NewDense(m, n, nil)
	c.Mul(a, b)

	out := New[T](Shape{m, n})
	fromFloat64(out.data, c.RawMatrix().Data)
	return out
}

func toFloat64[T Float](src []T) []float64 {
	if f, ok := any(src).([]float64); ok {
		dst := make([]float64, len(f))
		copy(dst, f)
		return dst
	}
	dst := make([]float64, len(src))
	for i, v := range src {
		dst[i] = float64(v)
	}
	return dst
}

func fromFloat64[T Float](dst []T, src []float64) {
	for i, v := range src {
		dst[i] = T(v)
	}
}
