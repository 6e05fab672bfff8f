// Copyright 2026 GradNet ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/gradnet-ml/gradnet/check"
	"github.com/gradnet-ml/gradnet/nn"
	"github.com/gradnet-ml/gradnet/optim"
	"github.com/gradnet-ml/gradnet/resnet"
	"github.com/gradnet-ml/gradnet/tensor"
)

func main() {
	batch := flag.Int("batch", 2, "Batch size for the synthetic input")
	size := flag.Int("size", 32, "Spatial size of the synthetic input")
	classes := flag.Int("classes", 10, "Number of output classes")
	steps := flag.Int("steps", 5, "Number of optimization steps")
	lr := flag.Float64("lr", 0.001, "Learning rate for the Adam optimizer")
	arch := flag.String("arch", "50", "ResNet depth: 50 or 101")
	verify := flag.Bool("verify", true, "Run gradient verification on a small block first")
	flag.Parse()

	fmt.Println("🧠 GradNet - hand-derived backpropagation demo")

	if *verify {
		fmt.Println("\n🔍 Verifying Conv2D gradients against finite differences...")
		conv := nn.NewConv2D[float64](2, 3, 3, 3, nn.Stride{H: 1, W: 1}, nn.Padding{H: 1, W: 1}, true)
		input := tensor.Randn[float64](tensor.Shape{1, 2, 5, 5})
		upstream := tensor.Randn[float64](tensor.Shape{1, 3, 5, 5})
		err := check.GradCheck("Conv2D", conv.Forward, conv.Backward, conv.Parameters(), input, upstream)
		if err != nil {
			log.Fatalf("gradient check failed: %v", err)
		}
		fmt.Println("   Conv2D analytic gradients match numerical gradients ✅")
	}

	var model *resnet.ResNet[float64]
	switch *arch {
	case "50":
		model = resnet.NewResNet50[float64](3, *classes)
	case "101":
		model = resnet.NewResNet101[float64](3, *classes)
	default:
		log.Fatalf("unknown architecture %q (want 50 or 101)", *arch)
	}
	fmt.Printf("\n🏗️  Built %v with %d bottleneck blocks, %d parameter tensors\n",
		model, model.NumBlocks(), len(model.Parameters()))

	input := tensor.Randn[float64](tensor.Shape{*batch, 3, *size, *size})
	target := tensor.Zeros[float64](tensor.Shape{*batch, *classes})
	for b := 0; b < *batch; b++ {
		target.Set(1, b, rand.Intn(*classes))
	}

	loss := nn.NewCrossEntropyWithSoftmax[float64]()
	opt := optim.NewAdam(model.Parameters(), *lr)

	fmt.Printf("\n📉 Training on a random batch (%d steps, lr=%g)\n", *steps, *lr)
	for step := 1; step <= *steps; step++ {
		logits := model.Forward(input)
		l := loss.Forward(logits, target)
		model.Backward(loss.Backward())
		opt.Step()
		opt.ZeroGrad()
		fmt.Printf("   step %d: loss=%.6f\n", step, l)
	}

	logits := model.Forward(input)
	fmt.Printf("\n✅ Final logits shape: %v\n", logits.Shape())
}
