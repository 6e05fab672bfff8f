// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"

	"github.com/gradnet-ml/gradnet/tensor"
)

// Conv2D is a 2-D convolutional layer.
//
// Input shape:  (batch, inChannels, H, W)
// Weight shape: (outChannels, inChannels, kernelH, kernelW)
// Bias shape:   (outChannels)
// Output shape: (batch, outChannels, HOut, WOut)
//
// where
//
//	HOut = (H + 2*padH - kernelH) / strideH + 1
//	WOut = (W + 2*padW - kernelW) / strideW + 1
//
// Padding is symmetric zero-padding on each spatial border. The forward
// pass uses the im2col transformation so the convolution reduces to a
// single matrix multiplication; the backward pass computes the three
// gradients directly from the definition, so gradient flow mirrors the
// forward data dependency exactly:
//
//	dL/dbias[o]         = Σ over batch and output positions of g[.,o,.,.]
//	dL/dweight[o,c,i,j] = Σ g[.,o,y,x] * input[.,c, strideH*y+i-padH, strideW*x+j-padW]
//	dL/dinput           = accumulation of g[.,o,y,x] * weight[o,c,i,j] over
//	                      every (o,y,x,i,j) whose forward read touched the location
type Conv2D[T tensor.Float] struct {
	inChannels  int
	outChannels int
	kernelH     int
	kernelW     int
	stride      Stride
	padding     Padding
	useBias     bool

	weight *Parameter[T] // (outChannels, inChannels, kernelH, kernelW)
	bias   *Parameter[T] // (outChannels), nil when useBias is false

	input *tensor.Tensor[T] // forward cache (unpadded)
}

// NewConv2D creates a 2-D convolutional layer with He-normal weight
// initialization and zero biases.
func NewConv2D[T tensor.Float](inChannels, outChannels, kernelH, kernelW int, stride Stride, padding Padding, useBias bool) *Conv2D[T] {
	if inChannels <= 0 || outChannels <= 0 {
		panicShape("Conv2D", "invalid channels in=%d, out=%d", inChannels, outChannels)
	}
	if kernelH <= 0 || kernelW <= 0 {
		panicShape("Conv2D", "invalid kernel size %dx%d", kernelH, kernelW)
	}
	if stride.H <= 0 || stride.W <= 0 {
		panicShape("Conv2D", "invalid stride (%d, %d)", stride.H, stride.W)
	}
	if padding.H < 0 || padding.W < 0 {
		panicShape("Conv2D", "invalid padding (%d, %d)", padding.H, padding.W)
	}

	fanIn := inChannels * kernelH * kernelW
	weight := NewParameter("conv2d.weight",
		HeNormal[T](fanIn, tensor.Shape{outChannels, inChannels, kernelH, kernelW}))

	var bias *Parameter[T]
	if useBias {
		bias = NewParameter("conv2d.bias", tensor.Zeros[T](tensor.Shape{outChannels}))
	}

	return &Conv2D[T]{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelH:     kernelH,
		kernelW:     kernelW,
		stride:      stride,
		padding:     padding,
		useBias:     useBias,
		weight:      weight,
		bias:        bias,
	}
}

// Forward performs the convolution and caches the input.
//
// Input: (batch, inChannels, H, W) -> output: (batch, outChannels, HOut, WOut).
func (c *Conv2D[T]) Forward(input *tensor.Tensor[T]) *tensor.Tensor[T] {
	shape := input.Shape()
	if len(shape) != 4 {
		panicShape("Conv2D", "expected 4D input (N,C,H,W), got shape %v", shape)
	}
	if shape[1] != c.inChannels {
		panicShape("Conv2D", "input channels %d do not match filter channels %d", shape[1], c.inChannels)
	}

	n, h, w := shape[0], shape[2], shape[3]
	hOut, wOut := c.outputSize(h, w)
	if hOut <= 0 || wOut <= 0 {
		panicShape("Conv2D", "kernel %dx%d with stride (%d, %d), padding (%d, %d) does not fit input %dx%d",
			c.kernelH, c.kernelW, c.stride.H, c.stride.W, c.padding.H, c.padding.W, h, w)
	}
	c.input = input

	// im2col: one row per output position, one column per filter tap.
	// (N*HOut*WOut, inChannels*kernelH*kernelW)
	colBuf := c.im2col(input, n, h, w, hOut, wOut)

	// The weight bank is already laid out row-major as
	// (outChannels, inChannels*kernelH*kernelW).
	kernelMat := c.weight.Value().Reshape(c.outChannels, c.inChannels*c.kernelH*c.kernelW)

	// (N*HOut*WOut, K) @ (K, outChannels) -> (N*HOut*WOut, outChannels)
	prod := colBuf.MatMul(kernelMat.Transpose())

	// Rearrange rows into the (N, outChannels, HOut, WOut) layout and add bias.
	out := tensor.New[T](tensor.Shape{n, c.outChannels, hOut, wOut})
	outData := out.Data()
	prodData := prod.Data()
	var biasData []T
	if c.useBias {
		biasData = c.bias.Value().Data()
	}
	spatial := hOut * wOut
	for b := 0; b < n; b++ {
		for o := 0; o < c.outChannels; o++ {
			var bv T
			if biasData != nil {
				bv = biasData[o]
			}
			dst := outData[(b*c.outChannels+o)*spatial : (b*c.outChannels+o+1)*spatial]
			for p := 0; p < spatial; p++ {
				dst[p] = prodData[(b*spatial+p)*c.outChannels+o] + bv
			}
		}
	}
	return out
}

// im2col flattens each input patch read by an output position into a row.
// Out-of-bounds taps (inside the zero-padding border) stay zero.
func (c *Conv2D[T]) im2col(input *tensor.Tensor[T], n, h, w, hOut, wOut int) *tensor.Tensor[T] {
	colWidth := c.inChannels * c.kernelH * c.kernelW
	colBuf := tensor.New[T](tensor.Shape{n * hOut * wOut, colWidth})

	inData := input.Data()
	colData := colBuf.Data()
	colIdx := 0
	for b := 0; b < n; b++ {
		for outH := 0; outH < hOut; outH++ {
			for outW := 0; outW < wOut; outW++ {
				hStart := outH*c.stride.H - c.padding.H
				wStart := outW*c.stride.W - c.padding.W
				bufIdx := colIdx * colWidth
				for ch := 0; ch < c.inChannels; ch++ {
					for kh := 0; kh < c.kernelH; kh++ {
						for kw := 0; kw < c.kernelW; kw++ {
							hPos := hStart + kh
							wPos := wStart + kw
							if hPos >= 0 && hPos < h && wPos >= 0 && wPos < w {
								colData[bufIdx] = inData[((b*c.inChannels+ch)*h+hPos)*w+wPos]
							}
							bufIdx++
						}
					}
				}
				colIdx++
			}
		}
	}
	return colBuf
}

// Backward computes the bias, weight and input gradients from the cached
// input, overwrites the parameter gradients and returns dL/dinput.
func (c *Conv2D[T]) Backward(grad *tensor.Tensor[T]) *tensor.Tensor[T] {
	if c.input == nil {
		panic(&CacheError{Layer: "Conv2D"})
	}
	shape := c.input.Shape()
	n, h, w := shape[0], shape[2], shape[3]
	hOut, wOut := c.outputSize(h, w)
	mustMatch("Conv2D", "upstream gradient", grad.Shape(), tensor.Shape{n, c.outChannels, hOut, wOut})

	gradData := grad.Data()
	inData := c.input.Data()
	weightData := c.weight.Value().Data()

	if c.useBias {
		// dL/dbias[o] = sum over batch and output spatial positions.
		biasGrad := tensor.Zeros[T](tensor.Shape{c.outChannels})
		bg := biasGrad.Data()
		for b := 0; b < n; b++ {
			for o := 0; o < c.outChannels; o++ {
				plane := gradData[(b*c.outChannels+o)*hOut*wOut : (b*c.outChannels+o+1)*hOut*wOut]
				var sum T
				for _, v := range plane {
					sum += v
				}
				bg[o] += sum
			}
		}
		c.bias.setGrad(biasGrad)
	}

	// dL/dweight[o,ch,kh,kw]: cross-correlation of the input with the
	// upstream gradient. Out-of-bounds taps read the zero padding and
	// contribute nothing.
	weightGrad := tensor.Zeros[T](c.weight.Value().Shape())
	wg := weightGrad.Data()
	for o := 0; o < c.outChannels; o++ {
		for ch := 0; ch < c.inChannels; ch++ {
			for kh := 0; kh < c.kernelH; kh++ {
				for kw := 0; kw < c.kernelW; kw++ {
					var sum T
					for b := 0; b < n; b++ {
						for outH := 0; outH < hOut; outH++ {
							hPos := outH*c.stride.H - c.padding.H + kh
							if hPos < 0 || hPos >= h {
								continue
							}
							for outW := 0; outW < wOut; outW++ {
								wPos := outW*c.stride.W - c.padding.W + kw
								if wPos < 0 || wPos >= w {
									continue
								}
								sum += inData[((b*c.inChannels+ch)*h+hPos)*w+wPos] *
									gradData[((b*c.outChannels+o)*hOut+outH)*wOut+outW]
							}
						}
					}
					wg[((o*c.inChannels+ch)*c.kernelH+kh)*c.kernelW+kw] = sum
				}
			}
		}
	}
	c.weight.setGrad(weightGrad)

	// dL/dinput: distribute every output gradient across the filter taps
	// its forward computation read, accumulating where windows overlap.
	inputGrad := tensor.Zeros[T](shape)
	ig := inputGrad.Data()
	for b := 0; b < n; b++ {
		for outH := 0; outH < hOut; outH++ {
			for outW := 0; outW < wOut; outW++ {
				for o := 0; o < c.outChannels; o++ {
					gv := gradData[((b*c.outChannels+o)*hOut+outH)*wOut+outW]
					if gv == 0 {
						continue
					}
					for ch := 0; ch < c.inChannels; ch++ {
						for kh := 0; kh < c.kernelH; kh++ {
							hPos := outH*c.stride.H - c.padding.H + kh
							if hPos < 0 || hPos >= h {
								continue
							}
							for kw := 0; kw < c.kernelW; kw++ {
								wPos := outW*c.stride.W - c.padding.W + kw
								if wPos < 0 || wPos >= w {
									continue
								}
								ig[((b*c.inChannels+ch)*h+hPos)*w+wPos] +=
									gv * weightData[((o*c.inChannels+ch)*c.kernelH+kh)*c.kernelW+kw]
							}
						}
					}
				}
			}
		}
	}

	c.input = nil
	return inputGrad
}

func (c *Conv2D[T]) outputSize(h, w int) (int, int) {
	hOut := (h+2*c.padding.H-c.kernelH)/c.stride.H + 1
	wOut := (w+2*c.padding.W-c.kernelW)/c.stride.W + 1
	return hOut, wOut
}

// ComputeOutputSize returns the output spatial dimensions (HOut, WOut) for
// the given input spatial dimensions.
func (c *Conv2D[T]) ComputeOutputSize(inputH, inputW int) (int, int) {
	return c.outputSize(inputH, inputW)
}

// Parameters returns the weight and, when present, the bias parameter.
func (c *Conv2D[T]) Parameters() []*Parameter[T] {
	if c.useBias {
		return []*Parameter[T]{c.weight, c.bias}
	}
	return []*Parameter[T]{c.weight}
}

// Weight returns the filter-bank parameter.
func (c *Conv2D[T]) Weight() *Parameter[T] { return c.weight }

// Bias returns the bias parameter, or nil when the layer has no bias.
func (c *Conv2D[T]) Bias() *Parameter[T] { return c.bias }

// InChannels returns the number of input channels.
func (c *Conv2D[T]) InChannels() int { return c.inChannels }

// OutChannels returns the number of output channels.
func (c *Conv2D[T]) OutChannels() int { return c.outChannels }

// String returns a string representation of the layer.
func (c *Conv2D[T]) String() string {
	return fmt.Sprintf("Conv2D(in_channels=%d, out_channels=%d, kernel_size=(%d, %d), stride=(%d, %d), padding=(%d, %d), bias=%v)",
		c.inChannels, c.outChannels, c.kernelH, c.kernelW, c.stride.H, c.stride.W, c.padding.H, c.padding.W, c.useBias)
}
