// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew tests zero-filled tensor creation.
func TestNew(t *testing.T) {
	x := New[float64](Shape{2, 3})
	require.True(t, x.Shape().Equal(Shape{2, 3}))
	require.Equal(t, 6, x.NumElements())
	for _, v := range x.Data() {
		assert.Equal(t, 0.0, v)
	}
}

// TestNew_InvalidShape tests that invalid shapes panic.
func TestNew_InvalidShape(t *testing.T) {
	assert.Panics(t, func() { New[float64](Shape{}) })
	assert.Panics(t, func() { New[float64](Shape{2, 0}) })
}

// TestFromSlice tests tensor creation from slices.
func TestFromSlice(t *testing.T) {
	x, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, 1.0, x.At(0, 0))
	assert.Equal(t, 6.0, x.At(1, 2))

	_, err = FromSlice([]float64{1, 2, 3}, Shape{2, 3})
	assert.Error(t, err)
}

// TestFromSlice_Copies tests that the source slice is copied.
func TestFromSlice_Copies(t *testing.T) {
	src := []float64{1, 2}
	x, err := FromSlice(src, Shape{2})
	require.NoError(t, err)
	src[0] = 99
	assert.Equal(t, 1.0, x.At(0))
}

// TestAtSet tests element access.
func TestAtSet(t *testing.T) {
	x := New[float32](Shape{2, 2, 2})
	x.Set(5, 1, 0, 1)
	assert.Equal(t, float32(5), x.At(1, 0, 1))
	assert.Equal(t, float32(5), x.Data()[5])

	assert.Panics(t, func() { x.At(2, 0, 0) })
	assert.Panics(t, func() { x.At(0, 0) })
}

// TestReshape tests that Reshape returns a view over the same storage.
func TestReshape(t *testing.T) {
	x, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)

	y := x.Reshape(3, 2)
	require.True(t, y.Shape().Equal(Shape{3, 2}))
	assert.Equal(t, 4.0, y.At(1, 1))

	// View shares storage.
	y.Set(99, 0, 0)
	assert.Equal(t, 99.0, x.At(0, 0))

	assert.Panics(t, func() { x.Reshape(4, 2) })
}

// TestClone tests deep copying.
func TestClone(t *testing.T) {
	x, err := FromSlice([]float64{1, 2, 3, 4}, Shape{2, 2})
	require.NoError(t, err)
	y := x.Clone()
	y.Set(99, 0, 0)
	assert.Equal(t, 1.0, x.At(0, 0))
	assert.Equal(t, 99.0, y.At(0, 0))
}

// TestFillZero tests Fill and Zero.
func TestFillZero(t *testing.T) {
	x := New[float64](Shape{3})
	x.Fill(7)
	for _, v := range x.Data() {
		assert.Equal(t, 7.0, v)
	}
	x.Zero()
	for _, v := range x.Data() {
		assert.Equal(t, 0.0, v)
	}
}
