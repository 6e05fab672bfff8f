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

// TestFlatten_RoundTrip tests that backward restores the original shape and
// element order.
func TestFlatten_RoundTrip(t *testing.T) {
	f := NewFlatten[float64]()
	input := tensor.Randn[float64](tensor.Shape{2, 3, 4, 5})

	out := f.Forward(input)
	require.True(t, out.Shape().Equal(tensor.Shape{2, 60}))
	// View semantics: same backing data, same order.
	assert.Equal(t, input.Data(), out.Data())

	grad := out.Clone()
	back := f.Backward(grad)
	require.True(t, back.Shape().Equal(input.Shape()))
	assert.Equal(t, input.Data(), back.Data())
}

// TestFlatten_2DInput tests that an already-flat input keeps its shape.
func TestFlatten_2DInput(t *testing.T) {
	f := NewFlatten[float64]()
	input := tensor.Ones[float64](tensor.Shape{4, 7})
	out := f.Forward(input)
	assert.True(t, out.Shape().Equal(tensor.Shape{4, 7}))
}

// TestFlatten_Errors tests the shape and cache contracts.
func TestFlatten_Errors(t *testing.T) {
	f := NewFlatten[float64]()
	assert.Panics(t, func() { f.Forward(tensor.Ones[float64](tensor.Shape{3})) })

	assert.Panics(t, func() { f.Backward(tensor.Ones[float64](tensor.Shape{2, 60})) })

	f.Forward(tensor.Ones[float64](tensor.Shape{2, 3, 4, 5}))
	assert.Panics(t, func() { f.Backward(tensor.Ones[float64](tensor.Shape{2, 61})) })
}
