// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package check

import (
	"gonum.org/v1/gonum/mat"

	"github.com/gradnet-ml/gradnet/nn"
	"github.com/gradnet-ml/gradnet/tensor"
)

// The reference kernels in this file compute each layer directly from its
// mathematical definition with plain nested loops and no shared code with
// the nn package, so agreement between the two is meaningful.

// ConvForward computes a 2-D convolution by looping over every output
// element and summing its window. input (N,C,H,W), weight (O,C,kh,kw),
// bias (O) or nil.
func ConvForward[T tensor.Float](input, weight, bias *tensor.Tensor[T], stride nn.Stride, padding nn.Padding) *tensor.Tensor[T] {
	is, ws := input.Shape(), weight.Shape()
	n, ch, h, w := is[0], is[1], is[2], is[3]
	outCh, kh, kw := ws[0], ws[2], ws[3]
	hOut := (h+2*padding.H-kh)/stride.H + 1
	wOut := (w+2*padding.W-kw)/stride.W + 1

	out := tensor.New[T](tensor.Shape{n, outCh, hOut, wOut})
	for b := 0; b < n; b++ {
		for o := 0; o < outCh; o++ {
			for y := 0; y < hOut; y++ {
				for x := 0; x < wOut; x++ {
					var sum T
					for c := 0; c < ch; c++ {
						for i := 0; i < kh; i++ {
							for j := 0; j < kw; j++ {
								hPos := y*stride.H - padding.H + i
								wPos := x*stride.W - padding.W + j
								if hPos < 0 || hPos >= h || wPos < 0 || wPos >= w {
									continue
								}
								sum += input.At(b, c, hPos, wPos) * weight.At(o, c, i, j)
							}
						}
					}
					if bias != nil {
						sum += bias.At(o)
					}
					out.Set(sum, b, o, y, x)
				}
			}
		}
	}
	return out
}

// ConvBackward computes the convolution gradients directly from the
// definition. It returns dInput, dWeight and dBias (nil when bias is nil).
func ConvBackward[T tensor.Float](input, weight, bias, grad *tensor.Tensor[T], stride nn.Stride, padding nn.Padding) (dInput, dWeight, dBias *tensor.Tensor[T]) {
	is, ws, gs := input.Shape(), weight.Shape(), grad.Shape()
	n, ch, h, w := is[0], is[1], is[2], is[3]
	outCh, kh, kw := ws[0], ws[2], ws[3]
	hOut, wOut := gs[2], gs[3]

	dInput = tensor.Zeros[T](is)
	dWeight = tensor.Zeros[T](ws)
	if bias != nil {
		dBias = tensor.Zeros[T](bias.Shape())
	}

	for b := 0; b < n; b++ {
		for o := 0; o < outCh; o++ {
			for y := 0; y < hOut; y++ {
				for x := 0; x < wOut; x++ {
					g := grad.At(b, o, y, x)
					if dBias != nil {
						dBias.Set(dBias.At(o)+g, o)
					}
					for c := 0; c < ch; c++ {
						for i := 0; i < kh; i++ {
							for j := 0; j < kw; j++ {
								hPos := y*stride.H - padding.H + i
								wPos := x*stride.W - padding.W + j
								if hPos < 0 || hPos >= h || wPos < 0 || wPos >= w {
									continue
								}
								dWeight.Set(dWeight.At(o, c, i, j)+g*input.At(b, c, hPos, wPos), o, c, i, j)
								dInput.Set(dInput.At(b, c, hPos, wPos)+g*weight.At(o, c, i, j), b, c, hPos, wPos)
							}
						}
					}
				}
			}
		}
	}
	return dInput, dWeight, dBias
}

// MaxPoolForward computes max pooling by scanning every window. Ties pick
// the first maximum in row-major window order.
func MaxPoolForward[T tensor.Float](input *tensor.Tensor[T], kernelH, kernelW int, stride nn.Stride) *tensor.Tensor[T] {
	is := input.Shape()
	n, ch, h, w := is[0], is[1], is[2], is[3]
	hOut := (h-kernelH)/stride.H + 1
	wOut := (w-kernelW)/stride.W + 1

	out := tensor.New[T](tensor.Shape{n, ch, hOut, wOut})
	for b := 0; b < n; b++ {
		for c := 0; c < ch; c++ {
			for y := 0; y < hOut; y++ {
				for x := 0; x < wOut; x++ {
					maxVal := input.At(b, c, y*stride.H, x*stride.W)
					for i := 0; i < kernelH; i++ {
						for j := 0; j < kernelW; j++ {
							v := input.At(b, c, y*stride.H+i, x*stride.W+j)
							if v > maxVal {
								maxVal = v
							}
						}
					}
					out.Set(maxVal, b, c, y, x)
				}
			}
		}
	}
	return out
}

// MaxPoolBackward routes each upstream gradient to the first maximum of its
// window, accumulating across overlapping windows.
func MaxPoolBackward[T tensor.Float](input, grad *tensor.Tensor[T], kernelH, kernelW int, stride nn.Stride) *tensor.Tensor[T] {
	is, gs := input.Shape(), grad.Shape()
	n, ch := is[0], is[1]
	hOut, wOut := gs[2], gs[3]

	dInput := tensor.Zeros[T](is)
	for b := 0; b < n; b++ {
		for c := 0; c < ch; c++ {
			for y := 0; y < hOut; y++ {
				for x := 0; x < wOut; x++ {
					maxI, maxJ := 0, 0
					maxVal := input.At(b, c, y*stride.H, x*stride.W)
					for i := 0; i < kernelH; i++ {
						for j := 0; j < kernelW; j++ {
							v := input.At(b, c, y*stride.H+i, x*stride.W+j)
							if v > maxVal {
								maxVal = v
								maxI, maxJ = i, j
							}
						}
					}
					hPos, wPos := y*stride.H+maxI, x*stride.W+maxJ
					dInput.Set(dInput.At(b, c, hPos, wPos)+grad.At(b, c, y, x), b, c, hPos, wPos)
				}
			}
		}
	}
	return dInput
}

// LinearForward computes y = x@W + b with gonum dense matrices as an
// independent matrix engine. x (N,in), weight (in,out), bias (out) or nil.
func LinearForward[T tensor.Float](input, weight, bias *tensor.Tensor[T]) *tensor.Tensor[T] {
	is, ws := input.Shape(), weight.Shape()
	n, in, out := is[0], ws[0], ws[1]

	x := denseOf(input, n, in)
	wMat := denseOf(weight, in, out)
	y := mat.NewDense(n, out, nil)
	y.Mul(x, wMat)

	result := tensor.New[T](tensor.Shape{n, out})
	data := result.Data()
	for r := 0; r < n; r++ {
		for c := 0; c < out; c++ {
			v := y.At(r, c)
			if bias != nil {
				v += float64(bias.At(c))
			}
			data[r*out+c] = T(v)
		}
	}
	return result
}

// LinearBackward computes the dense-layer gradients with gonum:
// dW = xT@g, db = column sums of g, dx = g@WT.
func LinearBackward[T tensor.Float](input, weight, grad *tensor.Tensor[T], withBias bool) (dInput, dWeight, dBias *tensor.Tensor[T]) {
	is, ws := input.Shape(), weight.Shape()
	n, in, out := is[0], ws[0], ws[1]

	x := denseOf(input, n, in)
	wMat := denseOf(weight, in, out)
	g := denseOf(grad, n, out)

	dw := mat.NewDense(in, out, nil)
	dw.Mul(x.T(), g)
	dx := mat.NewDense(n, in, nil)
	dx.Mul(g, wMat.T())

	dWeight = fromDense[T](dw, tensor.Shape{in, out})
	dInput = fromDense[T](dx, tensor.Shape{n, in})
	if withBias {
		dBias = tensor.Zeros[T](tensor.Shape{out})
		db := dBias.Data()
		for r := 0; r < n; r++ {
			for c := 0; c < out; c++ {
				db[c] += grad.Data()[r*out+c]
			}
		}
	}
	return dInput, dWeight, dBias
}

func denseOf[T tensor.Float](t *tensor.Tensor[T], rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i, v := range t.Data() {
		data[i] = float64(v)
	}
	return mat.NewDense(rows, cols, data)
}

func fromDense[T tensor.Float](d *mat.Dense, shape tensor.Shape) *tensor.Tensor[T] {
	out := tensor.New[T](shape)
	data := out.Data()
	rows, cols := d.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			data[r*cols+c] = T(d.At(r, c))
		}
	}
	return out
}
