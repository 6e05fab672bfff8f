// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradnet-ml/gradnet/tensor"
)

// setValue overwrites a parameter's value with known data in tests.
func setValue[T tensor.Float](t *testing.T, p *Parameter[T], data []T) {
	t.Helper()
	require.Equal(t, p.Value().NumElements(), len(data))
	copy(p.Value().Data(), data)
}

// TestLinear_Creation tests parameter shapes.
func TestLinear_Creation(t *testing.T) {
	lin := NewLinear[float64](4, 3)
	assert.Equal(t, 4, lin.InFeatures())
	assert.Equal(t, 3, lin.OutFeatures())
	require.True(t, lin.Weight().Value().Shape().Equal(tensor.Shape{4, 3}))
	require.True(t, lin.Bias().Value().Shape().Equal(tensor.Shape{3}))
	assert.Len(t, lin.Parameters(), 2)

	assert.Panics(t, func() { NewLinear[float64](0, 3) })
}

// TestLinear_ForwardValues tests y = x@W + b against hand-computed values.
func TestLinear_ForwardValues(t *testing.T) {
	lin := NewLinear[float64](2, 3)
	setValue(t, lin.Weight(), []float64{1, 2, 3, 4, 5, 6})
	setValue(t, lin.Bias(), []float64{1, 1, 1})

	input, err := tensor.FromSlice([]float64{1, 2}, tensor.Shape{1, 2})
	require.NoError(t, err)

	out := lin.Forward(input)
	require.True(t, out.Shape().Equal(tensor.Shape{1, 3}))
	// [1*1+2*4+1, 1*2+2*5+1, 1*3+2*6+1]
	expected := []float64{10, 13, 16}
	for i, v := range out.Data() {
		assert.InDelta(t, expected[i], v, 1e-12)
	}
}

// TestLinear_BackwardValues tests dW = xT@g, db = sum(g), dx = g@WT.
func TestLinear_BackwardValues(t *testing.T) {
	lin := NewLinear[float64](2, 3)
	setValue(t, lin.Weight(), []float64{1, 2, 3, 4, 5, 6})
	setValue(t, lin.Bias(), []float64{0, 0, 0})

	input, err := tensor.FromSlice([]float64{1, 2}, tensor.Shape{1, 2})
	require.NoError(t, err)
	lin.Forward(input)

	grad, err := tensor.FromSlice([]float64{1, 1, 1}, tensor.Shape{1, 3})
	require.NoError(t, err)
	dx := lin.Backward(grad)

	// dW[i][j] = x[i] * g[j]
	expectedW := []float64{1, 1, 1, 2, 2, 2}
	for i, v := range lin.Weight().Grad().Data() {
		assert.InDelta(t, expectedW[i], v, 1e-12)
	}
	// db = g summed over a batch of one
	for _, v := range lin.Bias().Grad().Data() {
		assert.InDelta(t, 1.0, v, 1e-12)
	}
	// dx[i] = sum_j g[j] * W[i][j]
	assert.InDelta(t, 6.0, dx.Data()[0], 1e-12)
	assert.InDelta(t, 15.0, dx.Data()[1], 1e-12)
}

// TestLinear_BatchBiasGradient tests that bias gradients sum over the batch.
func TestLinear_BatchBiasGradient(t *testing.T) {
	lin := NewLinear[float64](2, 2)
	input := tensor.Ones[float64](tensor.Shape{3, 2})
	lin.Forward(input)

	grad := tensor.Ones[float64](tensor.Shape{3, 2})
	lin.Backward(grad)
	for _, v := range lin.Bias().Grad().Data() {
		assert.InDelta(t, 3.0, v, 1e-12)
	}
}

// TestLinear_Errors tests shape and cache contracts.
func TestLinear_Errors(t *testing.T) {
	lin := NewLinear[float64](4, 2)

	assert.Panics(t, func() { lin.Forward(tensor.Ones[float64](tensor.Shape{2, 3})) })
	assert.Panics(t, func() { lin.Forward(tensor.Ones[float64](tensor.Shape{4})) })
	assert.Panics(t, func() { lin.Backward(tensor.Ones[float64](tensor.Shape{1, 2})) })

	lin.Forward(tensor.Ones[float64](tensor.Shape{1, 4}))
	assert.Panics(t, func() { lin.Backward(tensor.Ones[float64](tensor.Shape{1, 3})) })
}
