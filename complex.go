package gradtx

import (
	"errors"
	"math/cmplx"
)

// ComplexBlocks is the complex-valued counterpart of Blocks.
type ComplexBlocks [][]complex128

// ComplexTransformation mirrors Transformation over complex-valued blocks.
type ComplexTransformation struct {
	Init   func(params ComplexBlocks) (State, error)
	Update func(grads ComplexBlocks, state State, params ComplexBlocks) (ComplexBlocks, State, error)
}

func checkComplexBlocks(a, b ComplexBlocks) error {
	if len(a) != len(b) {
		return errors.New("block counts differ")
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return errors.New("block lengths differ")
		}
	}
	return nil
}

func cloneComplexBlocks(src ComplexBlocks) ComplexBlocks {
	dst := make(ComplexBlocks, len(src))
	for i, block := range src {
		dst[i] = make([]complex128, len(block))
		copy(dst[i], block)
	}
	return dst
}

// ConjugateBlocks returns the elementwise complex conjugate. Gradients of a
// real-valued loss with respect to complex parameters arrive as
// ∂L/∂x − i·∂L/∂y (see ValueAndGradComplex) and must be conjugated before
// they are turned into updates.
func ConjugateBlocks(src ComplexBlocks) ComplexBlocks {
	dst := make(ComplexBlocks, len(src))
	for i, block := range src {
		dst[i] = make([]complex128, len(block))
		for j, v := range block {
			dst[i][j] = cmplx.Conj(v)
		}
	}
	return dst
}

// splitBlocks encodes each complex block as two adjacent real blocks: the
// real part at index 2k, the imaginary part at 2k+1. The parts become
// independent blocks, so block-wise transformations treat them as separate
// leaves.
func splitBlocks(z ComplexBlocks) Blocks {
	out := make(Blocks, 0, 2*len(z))
	for _, block := range z {
		re := make([]float64, len(block))
		im := make([]float64, len(block))
		for i, v := range block {
			re[i] = real(v)
			im[i] = imag(v)
		}
		out = append(out, re, im)
	}
	return out
}

// combineBlocks inverts splitBlocks: adjacent (real, imaginary) block pairs
// become one complex block.
func combineBlocks(pairs Blocks) (ComplexBlocks, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("odd number of split blocks")
	}
	out := make(ComplexBlocks, 0, len(pairs)/2)
	for k := 0; k < len(pairs); k += 2 {
		re, im := pairs[k], pairs[k+1]
		if len(re) != len(im) {
			return nil, errors.New("real and imaginary blocks differ in length")
		}
		block := make([]complex128, len(re))
		for i := range re {
			block[i] = complex(re[i], im[i])
		}
		out = append(out, block)
	}
	return out, nil
}

// SplitRealAndImaginary adapts a real-valued transformation to
// complex-valued parameters. Every complex block is split into a real-part
// block and an imaginary-part block, the wrapped transformation runs on the
// split representation, and the resulting update pairs are recombined into
// complex updates Δz = Δx + iΔy.
//
// The wrapped state is kept verbatim, so moment accumulators compound
// across steps exactly as they would on the hand-split representation.
// Gradient conjugation is the caller's responsibility; the adapter only
// splits and recombines.
func SplitRealAndImaginary(inner Transformation) ComplexTransformation {
	return ComplexTransformation{
		Init: func(params ComplexBlocks) (State, error) {
			return inner.Init(splitBlocks(params))
		},
		Update: func(grads ComplexBlocks, state State, params ComplexBlocks) (ComplexBlocks, State, error) {
			var splitParams Blocks
			if params != nil {
				if err := checkComplexBlocks(grads, params); err != nil {
					return nil, nil, errors.New("gradient shape does not match params")
				}
				splitParams = splitBlocks(params)
			}
			updates, next, err := inner.Update(splitBlocks(grads), state, splitParams)
			if err != nil {
				return nil, nil, err
			}
			combined, err := combineBlocks(updates)
			if err != nil {
				return nil, nil, err
			}
			return combined, next, nil
		},
	}
}
