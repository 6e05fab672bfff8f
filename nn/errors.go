// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"

	"github.com/gradnet-ml/gradnet/tensor"
)

// ShapeError reports operand shapes incompatible with a layer's contract,
// for example convolving an input whose channel count disagrees with the
// filter bank. Layers panic with *ShapeError at the violating call.
type ShapeError struct {
	Layer string
	Msg   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Layer, e.Msg)
}

// CacheError reports a Backward call with no cached forward state: either
// Forward was never called on the instance, or the cache was already
// consumed by a previous Backward.
type CacheError struct {
	Layer string
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("%s: backward called before forward", e.Layer)
}

// panicShape panics with a *ShapeError for the named layer.
func panicShape(layer, format string, args ...any) {
	panic(&ShapeError{Layer: layer, Msg: fmt.Sprintf(format, args...)})
}

// mustMatch panics with a *ShapeError unless got equals want.
func mustMatch(layer, operand string, got, want tensor.Shape) {
	if !got.Equal(want) {
		panicShape(layer, "%s shape %v does not match expected %v", operand, got, want)
	}
}
