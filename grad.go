package gradtx

import (
	"errors"
	"math"
)

// Central-difference step: cube root of machine epsilon gives the usual
// truncation/rounding balance for second-order schemes.
var fdRelStep = math.Cbrt(2.220446049250313e-16)

func fdStep(x float64) float64 {
	scale := math.Abs(x)
	if scale < 1 {
		scale = 1
	}
	h := fdRelStep * scale
	// Snap h to a representable difference so (x+h)-(x-h) is exactly 2h.
	t := x + h
	return t - x
}

// ValueAndGrad turns a scalar loss over real-valued blocks into a function
// returning the loss and its gradient, computed by central finite
// differences.
func ValueAndGrad(f func(Blocks) float64) func(params Blocks) (float64, Blocks, error) {
	return func(params Blocks) (float64, Blocks, error) {
		loss := f(params)
		if !isFinite(loss) {
			return 0, nil, errors.New("loss is not finite")
		}
		work := cloneBlocks(params)
		grads := zerosLike(params)
		for i := range work {
			for j := range work[i] {
				x := work[i][j]
				h := fdStep(x)
				work[i][j] = x + h
				fp := f(work)
				work[i][j] = x - h
				fm := f(work)
				work[i][j] = x
				g := (fp - fm) / (2 * h)
				if !isFinite(g) {
					return 0, nil, errors.New("gradient is not finite")
				}
				grads[i][j] = g
			}
		}
		return loss, grads, nil
	}
}

// ValueAndGradComplex differentiates a real-valued loss over complex
// blocks. The gradient is reported in the conjugate convention of
// automatic-differentiation systems for C→R functions:
//
//	g = ∂L/∂x − i·∂L/∂y
//
// Conjugate the result (ConjugateBlocks) before turning it into parameter
// updates.
func ValueAndGradComplex(f func(ComplexBlocks) float64) func(params ComplexBlocks) (float64, ComplexBlocks, error) {
	return func(params ComplexBlocks) (float64, ComplexBlocks, error) {
		loss := f(params)
		if !isFinite(loss) {
			return 0, nil, errors.New("loss is not finite")
		}
		work := cloneComplexBlocks(params)
		grads := make(ComplexBlocks, len(params))
		for i := range work {
			grads[i] = make([]complex128, len(work[i]))
			for j := range work[i] {
				z := work[i][j]
				x, y := real(z), imag(z)

				hx := fdStep(x)
				work[i][j] = complex(x+hx, y)
				fp := f(work)
				work[i][j] = complex(x-hx, y)
				fm := f(work)
				dx := (fp - fm) / (2 * hx)

				hy := fdStep(y)
				work[i][j] = complex(x, y+hy)
				fp = f(work)
				work[i][j] = complex(x, y-hy)
				fm = f(work)
				dy := (fp - fm) / (2 * hy)

				work[i][j] = z
				if !isFinite(dx) || !isFinite(dy) {
					return 0, nil, errors.New("gradient is not finite")
				}
				grads[i][j] = complex(dx, -dy)
			}
		}
		return loss, grads, nil
	}
}
