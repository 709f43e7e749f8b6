package gradtx

import (
	"errors"

	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/floats"
)

// ApplyUpdates returns params + updates, elementwise across matching
// blocks. Inputs are not mutated.
func ApplyUpdates(params, updates Blocks) (Blocks, error) {
	if err := checkBlocks(params, updates); err != nil {
		return nil, errors.New("updates shape does not match params")
	}
	out := cloneBlocks(params)
	for i := range out {
		floats.Add(out[i], updates[i])
	}
	return out, nil
}

// ApplyComplexUpdates is ApplyUpdates for complex-valued blocks.
func ApplyComplexUpdates(params, updates ComplexBlocks) (ComplexBlocks, error) {
	if err := checkComplexBlocks(params, updates); err != nil {
		return nil, errors.New("updates shape does not match params")
	}
	out := cloneComplexBlocks(params)
	for i := range out {
		cmplxs.Add(out[i], updates[i])
	}
	return out, nil
}
