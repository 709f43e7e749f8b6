package gradtx

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
)

// The kernels below come in two flavors selected by Strategy: fused scalar
// loops (eager) and BLAS-routed vector calls. Both perform the same
// elementwise arithmetic in the same order, so their results coincide.

// momentUpdate advances first and second moment estimates in place:
//
//	m[i] = beta1*m[i] + (1-beta1)*g[i]
//	v[i] = beta2*v[i] + (1-beta2)*g[i]^2
func momentUpdate(m, v, g []float64, beta1, beta2 float64, strategy Strategy) {
	if strategy == StrategyBLAS {
		gsq := make([]float64, len(g))
		floats.MulTo(gsq, g, g)
		blas64.Scal(beta1, toVector(m))
		blas64.Axpy(1.0-beta1, toVector(g), toVector(m))
		blas64.Scal(beta2, toVector(v))
		blas64.Axpy(1.0-beta2, toVector(gsq), toVector(v))
		return
	}
	oneMinusBeta1 := 1.0 - beta1
	oneMinusBeta2 := 1.0 - beta2
	for i := range m {
		gi := g[i]
		m[i] = beta1*m[i] + oneMinusBeta1*gi
		v[i] = beta2*v[i] + oneMinusBeta2*gi*gi
	}
}

// adamDirection computes the bias-corrected adaptive direction
//
//	out[i] = (m[i]/bc1) / (sqrt(max(v[i]/bc2, 0) + epsRoot) + eps)
//
// The max clamp guards sqrt against tiny negative values from cancellation.
func adamDirection(out, m, v []float64, bc1, bc2, eps, epsRoot float64, strategy Strategy) error {
	invBC1 := 1.0 / bc1
	invBC2 := 1.0 / bc2

	if strategy == StrategyBLAS {
		den := make([]float64, len(v))
		blas64.Copy(toVector(v), toVector(den))
		blas64.Scal(invBC2, toVector(den))
		if err := clampSqrtAddEps(den, eps, epsRoot); err != nil {
			return err
		}
		blas64.Copy(toVector(m), toVector(out))
		blas64.Scal(invBC1, toVector(out))
		floats.Div(out, den)
		return nil
	}

	for i := range out {
		val := v[i] * invBC2
		if val < 0 {
			val = 0
		}
		den := math.Sqrt(val+epsRoot) + eps
		if !(den > 0 && isFinite(den)) {
			return errors.New("invalid adaptive denominator (sqrt(vhat)+eps)")
		}
		out[i] = m[i] * invBC1 / den
	}
	return nil
}

// clampSqrtAddEps computes x[i] = sqrt(max(x[i], 0) + epsRoot) + eps in place.
func clampSqrtAddEps(x []float64, eps, epsRoot float64) error {
	for i := range x {
		if x[i] < 0 {
			x[i] = 0
		}
		x[i] = math.Sqrt(x[i]+epsRoot) + eps
		if !(x[i] > 0 && isFinite(x[i])) {
			return errors.New("invalid adaptive denominator (sqrt(vhat)+eps)")
		}
	}
	return nil
}

// scaleTo writes dst[i] = factor*src[i].
func scaleTo(dst, src []float64, factor float64, strategy Strategy) {
	if strategy == StrategyBLAS {
		blas64.Copy(toVector(src), toVector(dst))
		blas64.Scal(factor, toVector(dst))
		return
	}
	for i := range src {
		dst[i] = factor * src[i]
	}
}

// axpyTo writes dst[i] = dst[i] + alpha*x[i].
func axpyTo(dst, x []float64, alpha float64, strategy Strategy) {
	if strategy == StrategyBLAS {
		blas64.Axpy(alpha, toVector(x), toVector(dst))
		return
	}
	for i := range dst {
		dst[i] += alpha * x[i]
	}
}
