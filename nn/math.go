// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/gradnet-ml/gradnet/tensor"
)

// Scalar math with per-dtype dispatch: float32 goes through math32 to stay
// in single precision, float64 through the stdlib.

func expT[T tensor.Float](x T) T {
	if v, ok := any(x).(float32); ok {
		return T(math32.Exp(v))
	}
	return T(math.Exp(float64(x)))
}

func logT[T tensor.Float](x T) T {
	if v, ok := any(x).(float32); ok {
		return T(math32.Log(v))
	}
	return T(math.Log(float64(x)))
}

func tanhT[T tensor.Float](x T) T {
	if v, ok := any(x).(float32); ok {
		return T(math32.Tanh(v))
	}
	return T(math.Tanh(float64(x)))
}

func sqrtT[T tensor.Float](x T) T {
	if v, ok := any(x).(float32); ok {
		return T(math32.Sqrt(v))
	}
	return T(math.Sqrt(float64(x)))
}
