package main

import (
	"fmt"

	"github.com/gradtx/gradtx"
)

func main() {
	// Toy problem: fit complex coefficients to a target by minimizing
	// Σ|z - c|², driving a real-valued Adam pipeline through the
	// complex-to-real adapter.
	target := []complex128{complex(1, -2), complex(-0.5, 0.25), complex(3, 1)}
	params := gradtx.ComplexBlocks{{complex(0, 0), complex(0, 0), complex(0, 0)}}

	loss := func(p gradtx.ComplexBlocks) float64 {
		sum := 0.0
		for i, z := range p[0] {
			d := z - target[i]
			sum += real(d)*real(d) + imag(d)*imag(d)
		}
		return sum
	}

	optimizer := gradtx.SplitRealAndImaginary(gradtx.Chain(
		gradtx.ScaleByAdam(gradtx.AdamOptions{}),
		gradtx.Scale(-0.1),
	))
	state, err := optimizer.Init(params)
	if err != nil {
		panic(err)
	}

	valueAndGrad := gradtx.ValueAndGradComplex(loss)
	for step := 0; step < 200; step++ {
		l, grads, err := valueAndGrad(params)
		if err != nil {
			panic(err)
		}
		// Gradients arrive in the conjugate convention.
		grads = gradtx.ConjugateBlocks(grads)

		updates, next, err := optimizer.Update(grads, state, params)
		if err != nil {
			panic(err)
		}
		state = next
		if params, err = gradtx.ApplyComplexUpdates(params, updates); err != nil {
			panic(err)
		}
		if step%50 == 0 {
			fmt.Printf("step %3d loss %.6f\n", step, l)
		}
	}
	fmt.Printf("fitted: %v\n", params[0])
}
