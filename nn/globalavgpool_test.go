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

// TestGlobalAvgPool2D_Forward tests per-channel spatial averaging.
func TestGlobalAvgPool2D_Forward(t *testing.T) {
	pool := NewGlobalAvgPool2D[float64]()
	input, err := tensor.FromSlice([]float64{
		1, 2, 3, 4, // channel 0
		10, 20, 30, 40, // channel 1
	}, tensor.Shape{1, 2, 2, 2})
	require.NoError(t, err)

	out := pool.Forward(input)
	require.True(t, out.Shape().Equal(tensor.Shape{1, 2}))
	assert.InDelta(t, 2.5, out.At(0, 0), 1e-12)
	assert.InDelta(t, 25.0, out.At(0, 1), 1e-12)
}

// TestGlobalAvgPool2D_Backward tests the uniform 1/(H*W) spread.
func TestGlobalAvgPool2D_Backward(t *testing.T) {
	pool := NewGlobalAvgPool2D[float64]()
	pool.Forward(tensor.Ones[float64](tensor.Shape{1, 1, 2, 2}))

	grad, err := tensor.FromSlice([]float64{8}, tensor.Shape{1, 1})
	require.NoError(t, err)
	dx := pool.Backward(grad)
	require.True(t, dx.Shape().Equal(tensor.Shape{1, 1, 2, 2}))
	for _, v := range dx.Data() {
		assert.InDelta(t, 2.0, v, 1e-12)
	}
}

// TestGlobalAvgPool2D_Errors tests shape and cache contracts.
func TestGlobalAvgPool2D_Errors(t *testing.T) {
	pool := NewGlobalAvgPool2D[float64]()
	assert.Panics(t, func() { pool.Forward(tensor.Ones[float64](tensor.Shape{2, 3})) })
	assert.Panics(t, func() { pool.Backward(tensor.Ones[float64](tensor.Shape{1, 1})) })
	assert.Nil(t, pool.Parameters())
}
