package gradtx

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/blas/blas64"
)

// Blocks is an ordered list of parameter blocks. Each block is an
// independent leaf: transformations that look at whole-block quantities
// (norms, decay masks) operate per block, never across blocks.
type Blocks [][]float64

// checkBlocks validates that a and b have identical block structure.
func checkBlocks(a, b Blocks) error {
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

// checkFinite rejects NaN/Inf values anywhere in the blocks.
func checkFinite(blocks Blocks, what string) error {
	for _, block := range blocks {
		for _, v := range block {
			if !isFinite(v) {
				return errors.New("non-finite " + what + " encountered")
			}
		}
	}
	return nil
}

func isFinite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// zerosLike allocates blocks with the same structure as src, all zero.
func zerosLike(src Blocks) Blocks {
	dst := make(Blocks, len(src))
	for i, block := range src {
		dst[i] = make([]float64, len(block))
	}
	return dst
}

// cloneBlocks deep-copies src.
func cloneBlocks(src Blocks) Blocks {
	dst := make(Blocks, len(src))
	for i, block := range src {
		dst[i] = make([]float64, len(block))
		copy(dst[i], block)
	}
	return dst
}

// totalLen returns the number of elements across all blocks.
func totalLen(blocks Blocks) int {
	n := 0
	for _, block := range blocks {
		n += len(block)
	}
	return n
}

// toVector wraps a block as a blas64.Vector for BLAS operations.
func toVector(data []float64) blas64.Vector {
	return blas64.Vector{N: len(data), Data: data, Inc: 1}
}

// blockNorm computes the Euclidean norm of one block under the given
// strategy.
func blockNorm(block []float64, strategy Strategy) float64 {
	if len(block) == 0 {
		return 0
	}
	if strategy == StrategyBLAS {
		return blas64.Nrm2(toVector(block))
	}
	sum := 0.0
	for _, v := range block {
		sum += v * v
	}
	return math.Sqrt(sum)
}
