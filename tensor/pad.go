// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "fmt"

// Pad2D zero-pads the two trailing spatial dimensions of an NCHW tensor
// with padH rows on the top and bottom borders and padW columns on the left
// and right borders.
//
// Input: (batch, channels, H, W) -> output: (batch, channels, H+2*padH, W+2*padW).
func (t *Tensor[T]) Pad2D(padH, padW int) *Tensor[T] {
	if len(t.shape) != 4 {
		panic(fmt.Sprintf("tensor: pad2d: expected 4D tensor (N,C,H,W), got shape %v", t.shape))
	}
	if padH < 0 || padW < 0 {
		panic(fmt.Sprintf("tensor: pad2d: negative padding (%d, %d)", padH, padW))
	}
	if padH == 0 && padW == 0 {
		return t.Clone()
	}

	n, c, h, w := t.shape[0], t.shape[1], t.shape[2], t.shape[3]
	ph, pw := h+2*padH, w+2*padW
	out := New[T](Shape{n, c, ph, pw})

	for i := 0; i < n*c; i++ {
		src := t.data[i*h*w : (i+1)*h*w]
		dst := out.data[i*ph*pw : (i+1)*ph*pw]
		for row := 0; row < h; row++ {
			copy(dst[(row+padH)*pw+padW:(row+padH)*pw+padW+w], src[row*w:(row+1)*w])
		}
	}
	return out
}

// Unpad2D strips a symmetric zero-padding border added by Pad2D, returning
// the (batch, channels, H-2*padH, W-2*padW) center region.
func (t *Tensor[T]) Unpad2D(padH, padW int) *Tensor[T] {
	if len(t.shape) != 4 {
		panic(fmt.Sprintf("tensor: unpad2d: expected 4D tensor (N,C,H,W), got shape %v", t.shape))
	}
	if padH == 0 && padW == 0 {
		return t.Clone()
	}

	n, c, ph, pw := t.shape[0], t.shape[1], t.shape[2], t.shape[3]
	h, w := ph-2*padH, pw-2*padW
	if h <= 0 || w <= 0 {
		panic(fmt.Sprintf("tensor: unpad2d: padding (%d, %d) larger than spatial size %v", padH, padW, t.shape))
	}
	out := New[T](Shape{n, c, h, w})

	for i := 0; i < n*c; i++ {
		src := t.data[i*ph*pw : (i+1)*ph*pw]
		dst := out.data[i*h*w : (i+1)*h*w]
		for row := 0; row < h; row++ {
			copy(dst[row*w:(row+1)*w], src[(row+padH)*pw+padW:(row+padH)*pw+padW+w])
		}
	}
	return out
}
