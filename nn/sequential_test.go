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

// TestSequential_ForwardChains tests that layers run in order.
func TestSequential_ForwardChains(t *testing.T) {
	lin := NewLinear[float64](2, 2)
	setValue(t, lin.Weight(), []float64{1, 0, 0, 1}) // identity
	setValue(t, lin.Bias(), []float64{-1, -1})

	model := NewSequential[float64](lin, NewReLU[float64]())

	input, err := tensor.FromSlice([]float64{3, 0.5}, tensor.Shape{1, 2})
	require.NoError(t, err)
	out := model.Forward(input)

	// x - 1 then ReLU: [2, 0]
	assert.InDelta(t, 2.0, out.At(0, 0), 1e-12)
	assert.InDelta(t, 0.0, out.At(0, 1), 1e-12)
}

// TestSequential_BackwardReverses tests one backward pass through the chain.
func TestSequential_BackwardReverses(t *testing.T) {
	lin := NewLinear[float64](2, 2)
	setValue(t, lin.Weight(), []float64{1, 0, 0, 1})
	setValue(t, lin.Bias(), []float64{-1, -1})

	model := NewSequential[float64](lin, NewReLU[float64]())

	input, err := tensor.FromSlice([]float64{3, 0.5}, tensor.Shape{1, 2})
	require.NoError(t, err)
	model.Forward(input)

	grad := tensor.Ones[float64](tensor.Shape{1, 2})
	dx := model.Backward(grad)

	// The ReLU gates the second component; the identity weight passes the
	// first straight through.
	assert.InDelta(t, 1.0, dx.At(0, 0), 1e-12)
	assert.InDelta(t, 0.0, dx.At(0, 1), 1e-12)
	// The linear layer's gradients were filled on the way.
	assert.InDelta(t, 1.0, lin.Bias().Grad().Data()[0], 1e-12)
	assert.InDelta(t, 0.0, lin.Bias().Grad().Data()[1], 1e-12)
}

// TestSequential_Parameters tests aggregation in layer order.
func TestSequential_Parameters(t *testing.T) {
	model := NewSequential[float64](
		NewConv2D[float64](1, 2, 3, 3, Stride{H: 1, W: 1}, Padding{H: 1, W: 1}, true),
		NewReLU[float64](),
		NewFlatten[float64](),
		NewLinear[float64](2*4*4, 5),
	)
	params := model.Parameters()
	require.Len(t, params, 4)
	assert.Equal(t, "conv2d.weight", params[0].Name())
	assert.Equal(t, "linear.bias", params[3].Name())
}

// TestSequential_SetTraining tests training-mode propagation.
func TestSequential_SetTraining(t *testing.T) {
	bn := NewBatchNorm2D[float64](1)
	model := NewSequential[float64](NewReLU[float64](), bn)

	model.SetTraining(false)
	assert.False(t, bn.training)
	model.SetTraining(true)
	assert.True(t, bn.training)
}

// TestSequential_Add tests appending layers after construction.
func TestSequential_Add(t *testing.T) {
	model := NewSequential[float64]()
	model.Add(NewReLU[float64]())
	model.Add(NewTanh[float64]())
	assert.Len(t, model.Layers(), 2)
}
