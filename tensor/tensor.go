// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense numeric substrate for the gradnet layer
// library: a generic N-dimensional array over float32 or float64 with the
// element-wise, matrix and padding operations the layers require.
//
// Storage is row-major and contiguous. A tensor's shape is fixed for the
// lifetime of the value; operations allocate new tensors, except Reshape,
// which returns a view sharing the underlying storage.
//
// Example:
//
//	x := tensor.Randn[float64](tensor.Shape{2, 3})
//	y := tensor.Ones[float64](tensor.Shape{2, 3})
//	z := x.Add(y)
package tensor

import "fmt"

// Float is the constraint for supported tensor element types.
type Float interface {
	~float32 | ~float64
}

// Tensor is a dense N-dimensional array of T in row-major order.
type Tensor[T Float] struct {
	data    []T
	shape   Shape
	strides []int
}

// New creates a zero-filled tensor with the given shape.
// Panics if the shape is invalid.
func New[T Float](shape Shape) *Tensor[T] {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	return &Tensor[T]{
		data:    make([]T, shape.NumElements()),
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
	}
}

// FromSlice creates a tensor from a Go slice. The slice is copied.
func FromSlice[T Float](data []T, shape Shape) (*Tensor[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	t := New[T](shape)
	copy(t.data, data)
	return t, nil
}

// Shape returns the tensor's shape. The caller must not modify it.
func (t *Tensor[T]) Shape() Shape {
	return t.shape
}

// NumElements returns the total number of elements.
func (t *Tensor[T]) NumElements() int {
	return len(t.data)
}

// Data returns the underlying slice (zero-copy).
//
// WARNING: modifications to the returned slice modify the tensor.
func (t *Tensor[T]) Data() []T {
	return t.data
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor[T]) At(indices ...int) T {
	return t.data[t.offset(indices)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor[T]) Set(value T, indices ...int) {
	t.data[t.offset(indices)] = value
}

func (t *Tensor[T]) offset(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("tensor: expected %d indices, got %d", len(t.shape), len(indices)))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index %d out of bounds for dimension %d (size %d)", idx, i, t.shape[i]))
		}
		offset += idx * t.strides[i]
	}
	return offset
}

// Reshape returns a view with a new shape sharing the same storage.
// The element count must be preserved.
func (t *Tensor[T]) Reshape(shape ...int) *Tensor[T] {
	s := Shape(shape)
	if err := s.Validate(); err != nil {
		panic(fmt.Sprintf("tensor: reshape: %v", err))
	}
	if s.NumElements() != len(t.data) {
		panic(fmt.Sprintf("tensor: cannot reshape %v (%d elements) to %v (%d elements)",
			t.shape, len(t.data), s, s.NumElements()))
	}
	return &Tensor[T]{
		data:    t.data,
		shape:   s.Clone(),
		strides: s.ComputeStrides(),
	}
}

// Clone creates a deep copy of the tensor.
func (t *Tensor[T]) Clone() *Tensor[T] {
	c := New[T](t.shape)
	copy(c.data, t.data)
	return c
}

// Fill sets every element to value.
func (t *Tensor[T]) Fill(value T) {
	for i := range t.data {
		t.data[i] = value
	}
}

// Zero sets every element to 0.
func (t *Tensor[T]) Zero() {
	var zero T
	for i := range t.data {
		t.data[i] = zero
	}
}

// String returns a human-readable representation of the tensor.
func (t *Tensor[T]) String() string {
	return fmt.Sprintf("Tensor%v", t.shape)
}
