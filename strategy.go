package gradtx

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// Strategy selects how update kernels are executed.
type Strategy int

const (
	// StrategyAuto picks a strategy from block sizes and CPU features.
	StrategyAuto Strategy = iota
	// StrategyEager runs fused scalar loops, one pass per block.
	StrategyEager
	// StrategyBLAS routes vector operations through gonum's BLAS layer.
	StrategyBLAS
)

func (s Strategy) String() string {
	switch s {
	case StrategyEager:
		return "eager"
	case StrategyBLAS:
		return "blas"
	default:
		return "auto"
	}
}

// Features describes the SIMD capabilities of the current process.
type Features struct {
	HasAVX2      bool
	HasAVX512    bool
	HasSSE2      bool
	HasNEON      bool
	Architecture string
}

// DetectFeatures reports the available CPU features for the current process.
func DetectFeatures() Features {
	return Features{
		HasAVX2:      cpu.X86.HasAVX2,
		HasAVX512:    cpu.X86.HasAVX512,
		HasSSE2:      cpu.X86.HasSSE2,
		HasNEON:      cpu.ARM64.HasASIMD,
		Architecture: runtime.GOARCH,
	}
}

// blasVectorThreshold is the block size above which BLAS routines beat the
// scalar loops on vector-capable hardware. Below it, call overhead dominates.
const blasVectorThreshold = 512

// SelectStrategy resolves StrategyAuto for a parameter set of n total
// elements. Explicit strategies are returned unchanged.
func SelectStrategy(s Strategy, n int, feats Features) Strategy {
	if s != StrategyAuto {
		return s
	}
	if n >= blasVectorThreshold && (feats.HasAVX2 || feats.HasAVX512 || feats.HasNEON) {
		return StrategyBLAS
	}
	return StrategyEager
}
