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

// TestConv2D_Creation tests Conv2D layer creation.
func TestConv2D_Creation(t *testing.T) {
	conv := NewConv2D[float64](1, 6, 5, 5, Stride{H: 1, W: 1}, Padding{}, true)

	assert.Equal(t, 1, conv.InChannels())
	assert.Equal(t, 6, conv.OutChannels())
	require.True(t, conv.Weight().Value().Shape().Equal(tensor.Shape{6, 1, 5, 5}))
	require.True(t, conv.Bias().Value().Shape().Equal(tensor.Shape{6}))
	assert.Len(t, conv.Parameters(), 2)

	noBias := NewConv2D[float64](1, 6, 5, 5, Stride{H: 1, W: 1}, Padding{}, false)
	assert.Nil(t, noBias.Bias())
	assert.Len(t, noBias.Parameters(), 1)
}

// TestConv2D_OutputSize tests the output-size formula.
func TestConv2D_OutputSize(t *testing.T) {
	tests := []struct {
		name             string
		kernel, stride   int
		padding          int
		inH, inW         int
		wantH, wantW     int
	}{
		{"no padding stride 1", 5, 1, 0, 28, 28, 24, 24},
		{"same padding 3x3", 3, 1, 1, 8, 8, 8, 8},
		{"stride 2", 3, 2, 1, 8, 8, 4, 4},
		{"stem 7x7 stride 2 pad 3", 7, 2, 3, 224, 224, 112, 112},
		{"kernel equals input", 4, 1, 0, 4, 4, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := NewConv2D[float64](1, 1, tt.kernel, tt.kernel,
				Stride{H: tt.stride, W: tt.stride}, Padding{H: tt.padding, W: tt.padding}, true)
			h, w := conv.ComputeOutputSize(tt.inH, tt.inW)
			assert.Equal(t, tt.wantH, h)
			assert.Equal(t, tt.wantW, w)
		})
	}
}

// TestConv2D_ForwardShape tests forward pass output shape.
func TestConv2D_ForwardShape(t *testing.T) {
	conv := NewConv2D[float64](1, 6, 5, 5, Stride{H: 1, W: 1}, Padding{}, true)
	input := tensor.Zeros[float64](tensor.Shape{2, 1, 28, 28})
	output := conv.Forward(input)
	assert.True(t, output.Shape().Equal(tensor.Shape{2, 6, 24, 24}))
}

// TestConv2D_ForwardValues tests a 2x2 kernel over a 3x3 input with known
// values.
func TestConv2D_ForwardValues(t *testing.T) {
	conv := NewConv2D[float64](1, 1, 2, 2, Stride{H: 1, W: 1}, Padding{}, false)
	setValue(t, conv.Weight(), []float64{1, 2, 3, 4})

	input, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 1, 3, 3})
	require.NoError(t, err)

	out := conv.Forward(input)
	require.True(t, out.Shape().Equal(tensor.Shape{1, 1, 2, 2}))
	// Window [1 2; 4 5] . [1 2; 3 4] = 37, and so on.
	expected := []float64{37, 47, 67, 77}
	for i, v := range out.Data() {
		assert.InDelta(t, expected[i], v, 1e-12)
	}
}

// TestConv2D_ForwardWithBias tests that the bias is added per output channel.
func TestConv2D_ForwardWithBias(t *testing.T) {
	conv := NewConv2D[float64](1, 2, 2, 2, Stride{H: 1, W: 1}, Padding{}, true)
	conv.Weight().Value().Zero()
	setValue(t, conv.Bias(), []float64{10, 20})

	input := tensor.Ones[float64](tensor.Shape{1, 1, 3, 3})
	out := conv.Forward(input)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			assert.Equal(t, 10.0, out.At(0, 0, y, x))
			assert.Equal(t, 20.0, out.At(0, 1, y, x))
		}
	}
}

// TestConv2D_Padding tests that zero-padding preserves spatial size for a
// 3x3 kernel and contributes zeros at the border.
func TestConv2D_Padding(t *testing.T) {
	conv := NewConv2D[float64](1, 1, 3, 3, Stride{H: 1, W: 1}, Padding{H: 1, W: 1}, false)
	conv.Weight().Value().Fill(1)

	input := tensor.Ones[float64](tensor.Shape{1, 1, 3, 3})
	out := conv.Forward(input)
	require.True(t, out.Shape().Equal(tensor.Shape{1, 1, 3, 3}))

	// Center sees all 9 taps, corners only 4, edges 6.
	assert.Equal(t, 9.0, out.At(0, 0, 1, 1))
	assert.Equal(t, 4.0, out.At(0, 0, 0, 0))
	assert.Equal(t, 6.0, out.At(0, 0, 0, 1))
}

// TestConv2D_BackwardValues tests all three gradients on a ones input with a
// ones upstream gradient, where every expected value is a window count.
func TestConv2D_BackwardValues(t *testing.T) {
	conv := NewConv2D[float64](1, 1, 2, 2, Stride{H: 1, W: 1}, Padding{}, true)
	conv.Weight().Value().Fill(1)

	input := tensor.Ones[float64](tensor.Shape{1, 1, 3, 3})
	conv.Forward(input)

	grad := tensor.Ones[float64](tensor.Shape{1, 1, 2, 2})
	dx := conv.Backward(grad)

	// Each kernel tap saw four ones.
	for _, v := range conv.Weight().Grad().Data() {
		assert.InDelta(t, 4.0, v, 1e-12)
	}
	// Bias gradient is the sum of the upstream gradient.
	assert.InDelta(t, 4.0, conv.Bias().Grad().Data()[0], 1e-12)
	// Input gradient counts how many windows cover each position.
	expected := []float64{1, 2, 1, 2, 4, 2, 1, 2, 1}
	for i, v := range dx.Data() {
		assert.InDelta(t, expected[i], v, 1e-12)
	}
}

// TestConv2D_FilterGradientPatchSums tests a (1,3,8,8) input through a
// 3->4 channel 3x3 convolution with same padding: with an all-ones upstream
// gradient, each filter-weight gradient equals the sum of the input values
// its tap slides over.
func TestConv2D_FilterGradientPatchSums(t *testing.T) {
	conv := NewConv2D[float64](3, 4, 3, 3, Stride{H: 1, W: 1}, Padding{H: 1, W: 1}, true)
	input := tensor.Randn[float64](tensor.Shape{1, 3, 8, 8})

	out := conv.Forward(input)
	require.True(t, out.Shape().Equal(tensor.Shape{1, 4, 8, 8}))

	conv.Backward(tensor.Ones[float64](tensor.Shape{1, 4, 8, 8}))

	for o := 0; o < 4; o++ {
		for c := 0; c < 3; c++ {
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					// Tap (i,j) reads rows i-1..i+6 and columns j-1..j+6 of
					// the padded input; sum the in-bounds region.
					var want float64
					for y := 0; y < 8; y++ {
						for x := 0; x < 8; x++ {
							h, w := y+i-1, x+j-1
							if h >= 0 && h < 8 && w >= 0 && w < 8 {
								want += input.At(0, c, h, w)
							}
						}
					}
					assert.InDelta(t, want, conv.Weight().Grad().At(o, c, i, j), 1e-9)
				}
			}
		}
	}
}

// TestConv2D_StridedBackwardShape tests gradient shapes under stride 2.
func TestConv2D_StridedBackwardShape(t *testing.T) {
	conv := NewConv2D[float64](2, 3, 3, 3, Stride{H: 2, W: 2}, Padding{H: 1, W: 1}, true)
	input := tensor.Randn[float64](tensor.Shape{2, 2, 8, 8})

	out := conv.Forward(input)
	require.True(t, out.Shape().Equal(tensor.Shape{2, 3, 4, 4}))

	dx := conv.Backward(tensor.Ones[float64](out.Shape()))
	assert.True(t, dx.Shape().Equal(input.Shape()))
}

// TestConv2D_Errors tests shape and cache contracts.
func TestConv2D_Errors(t *testing.T) {
	conv := NewConv2D[float64](3, 4, 3, 3, Stride{H: 1, W: 1}, Padding{}, true)

	// Wrong rank and wrong channel count.
	assert.Panics(t, func() { conv.Forward(tensor.Ones[float64](tensor.Shape{3, 8, 8})) })
	assert.Panics(t, func() { conv.Forward(tensor.Ones[float64](tensor.Shape{1, 2, 8, 8})) })

	// Kernel larger than padded input.
	small := NewConv2D[float64](1, 1, 5, 5, Stride{H: 1, W: 1}, Padding{}, true)
	assert.Panics(t, func() { small.Forward(tensor.Ones[float64](tensor.Shape{1, 1, 3, 3})) })

	// Backward before forward.
	defer func() {
		r := recover()
		require.NotNil(t, r)
		_, ok := r.(*CacheError)
		assert.True(t, ok, "expected *CacheError, got %T", r)
	}()
	conv.Backward(tensor.Ones[float64](tensor.Shape{1, 4, 6, 6}))
}

// TestConv2D_InvalidConstruction tests constructor validation.
func TestConv2D_InvalidConstruction(t *testing.T) {
	assert.Panics(t, func() { NewConv2D[float64](0, 1, 3, 3, Stride{H: 1, W: 1}, Padding{}, true) })
	assert.Panics(t, func() { NewConv2D[float64](1, 1, 0, 3, Stride{H: 1, W: 1}, Padding{}, true) })
	assert.Panics(t, func() { NewConv2D[float64](1, 1, 3, 3, Stride{H: 0, W: 1}, Padding{}, true) })
	assert.Panics(t, func() { NewConv2D[float64](1, 1, 3, 3, Stride{H: 1, W: 1}, Padding{H: -1}, true) })
}
