// Package gradtx provides composable gradient transformations over
// block-structured parameters, real- or complex-valued.
//
// A Transformation rewrites raw gradients into parameter updates. It never
// touches parameters itself; callers apply the returned updates with
// ApplyUpdates. Transformations compose with Chain, so a classic descent
// step is Chain(ScaleByAdam(...), Scale(-learningRate)). Complex-valued
// parameters run through SplitRealAndImaginary, which drives any real
// transformation on the split real/imaginary representation.
//
// Concurrency: transformations are pure (state in, state out) but a given
// state value must not be shared between concurrent update loops without
// external synchronization.
package gradtx

import (
	"errors"
	"math"
)

// State is opaque, transformation-specific state threaded through
// successive Update calls. Each optimization loop owns its own instance.
type State interface{}

// EmptyState is the state of transformations that accumulate nothing.
type EmptyState struct{}

// Transformation turns gradients into updates.
//
// Init builds the initial state for a parameter set. Update consumes one
// gradient, the current state, and the current parameters (some
// transformations ignore them), and produces fresh update blocks plus the
// successor state. Inputs are never mutated.
type Transformation struct {
	Init   func(params Blocks) (State, error)
	Update func(grads Blocks, state State, params Blocks) (Blocks, State, error)
}

// ---------- ScaleByAdam ----------

// AdamOptions configures ScaleByAdam. Zero values select the conventional
// defaults: Beta1=0.9, Beta2=0.999, Eps=1e-8, EpsRoot=0.
type AdamOptions struct {
	Beta1   float64 // β1 in [0,1)
	Beta2   float64 // β2 in [0,1)
	Eps     float64 // added to the denominator after the square root
	EpsRoot float64 // added under the square root

	Strategy Strategy
}

func (o AdamOptions) withDefaults() AdamOptions {
	if o.Beta1 <= 0 {
		o.Beta1 = 0.9
	}
	if o.Beta2 <= 0 {
		o.Beta2 = 0.999
	}
	o.Eps = ifPositiveOr(o.Eps, 1e-8)
	if o.EpsRoot < 0 {
		o.EpsRoot = 0
	}
	return o
}

func (o AdamOptions) validate() error {
	if !(o.Beta1 >= 0.0 && o.Beta1 < 1.0) {
		return errors.New("beta1 must be in [0,1)")
	}
	if !(o.Beta2 >= 0.0 && o.Beta2 < 1.0) {
		return errors.New("beta2 must be in [0,1)")
	}
	if !(o.Eps > 0.0) {
		return errors.New("eps must be > 0")
	}
	if o.EpsRoot < 0 {
		return errors.New("epsRoot must be >= 0")
	}
	return nil
}

func ifPositiveOr(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

// ScaleByAdamState holds exponential moment estimates and the step count.
type ScaleByAdamState struct {
	Count  int64
	Mu, Nu Blocks
}

// ScaleByAdam rescales updates by the Adam rule: exponential moving
// estimates of the first and second gradient moments, bias-corrected, then
//
//	update = mu_hat / (sqrt(nu_hat + epsRoot) + eps)
//
// Note the result keeps the gradient's sign; compose with Scale(-lr) for
// descent.
func ScaleByAdam(opts AdamOptions) Transformation {
	opts = opts.withDefaults()
	return Transformation{
		Init: func(params Blocks) (State, error) {
			if err := opts.validate(); err != nil {
				return nil, err
			}
			if totalLen(params) == 0 {
				return nil, errors.New("params must be non-empty")
			}
			return &ScaleByAdamState{Mu: zerosLike(params), Nu: zerosLike(params)}, nil
		},
		Update: func(grads Blocks, state State, params Blocks) (Blocks, State, error) {
			st, ok := state.(*ScaleByAdamState)
			if !ok || st == nil {
				return nil, nil, errors.New("state does not belong to ScaleByAdam")
			}
			if err := checkBlocks(grads, st.Mu); err != nil {
				return nil, nil, errors.New("gradient shape does not match optimizer state")
			}
			if err := checkFinite(grads, "gradient"); err != nil {
				return nil, nil, err
			}

			strategy := SelectStrategy(opts.Strategy, totalLen(grads), DetectFeatures())

			next := &ScaleByAdamState{
				Count: st.Count + 1,
				Mu:    cloneBlocks(st.Mu),
				Nu:    cloneBlocks(st.Nu),
			}
			bc1 := 1.0 - math.Pow(opts.Beta1, float64(next.Count))
			bc2 := 1.0 - math.Pow(opts.Beta2, float64(next.Count))
			if !(bc1 > 0.0 && bc2 > 0.0 && isFinite(bc1) && isFinite(bc2)) {
				return nil, nil, errors.New("invalid bias-correction denominators")
			}

			updates := zerosLike(grads)
			for i := range grads {
				momentUpdate(next.Mu[i], next.Nu[i], grads[i], opts.Beta1, opts.Beta2, strategy)
				if err := adamDirection(updates[i], next.Mu[i], next.Nu[i], bc1, bc2, opts.Eps, opts.EpsRoot, strategy); err != nil {
					return nil, nil, err
				}
			}
			return updates, next, nil
		},
	}
}

// ---------- ScaleByParamBlockNorm ----------

// BlockNormOptions configures ScaleByParamBlockNorm. A MinScale <= 0
// selects the default 1e-3.
type BlockNormOptions struct {
	MinScale float64
	Strategy Strategy
}

// ScaleByParamBlockNorm multiplies each update block by the Euclidean norm
// of the matching parameter block, floored at MinScale so freshly zeroed
// parameters still move. Stateless.
func ScaleByParamBlockNorm(opts BlockNormOptions) Transformation {
	minScale := ifPositiveOr(opts.MinScale, 1e-3)
	return Transformation{
		Init: func(params Blocks) (State, error) {
			return EmptyState{}, nil
		},
		Update: func(grads Blocks, state State, params Blocks) (Blocks, State, error) {
			if params == nil {
				return nil, nil, errors.New("params are required to scale by block norm")
			}
			if err := checkBlocks(grads, params); err != nil {
				return nil, nil, errors.New("gradient shape does not match params")
			}
			strategy := SelectStrategy(opts.Strategy, totalLen(grads), DetectFeatures())
			updates := zerosLike(grads)
			for i := range grads {
				scale := blockNorm(params[i], strategy)
				if scale < minScale {
					scale = minScale
				}
				scaleTo(updates[i], grads[i], scale, strategy)
			}
			return updates, state, nil
		},
	}
}

// ---------- Scale ----------

// Scale multiplies every update by a constant factor, typically a negated
// learning rate.
func Scale(factor float64) Transformation {
	return Transformation{
		Init: func(params Blocks) (State, error) {
			return EmptyState{}, nil
		},
		Update: func(grads Blocks, state State, params Blocks) (Blocks, State, error) {
			updates := zerosLike(grads)
			for i := range grads {
				scaleTo(updates[i], grads[i], factor, StrategyEager)
			}
			return updates, state, nil
		},
	}
}

// ---------- AddDecayedWeights ----------

// AddDecayedWeights adds weightDecay*param to each update block, the
// decoupled weight decay of AdamW. A non-nil mask selects which blocks
// decay (true = decay); common use is excluding bias blocks.
func AddDecayedWeights(weightDecay float64, mask []bool) Transformation {
	return Transformation{
		Init: func(params Blocks) (State, error) {
			if mask != nil && len(mask) != len(params) {
				return nil, errors.New("decay mask length must match block count")
			}
			return EmptyState{}, nil
		},
		Update: func(grads Blocks, state State, params Blocks) (Blocks, State, error) {
			if params == nil {
				return nil, nil, errors.New("params are required to decay weights")
			}
			if err := checkBlocks(grads, params); err != nil {
				return nil, nil, errors.New("gradient shape does not match params")
			}
			if mask != nil && len(mask) != len(grads) {
				return nil, nil, errors.New("decay mask length must match block count")
			}
			updates := cloneBlocks(grads)
			for i := range updates {
				if mask != nil && !mask[i] {
					continue
				}
				axpyTo(updates[i], params[i], weightDecay, StrategyEager)
			}
			return updates, state, nil
		},
	}
}

// ---------- Chain / Identity ----------

// ChainState holds one state per chained transformation, in order.
type ChainState []State

// Chain applies transformations left to right, feeding each one's updates
// into the next.
func Chain(ts ...Transformation) Transformation {
	return Transformation{
		Init: func(params Blocks) (State, error) {
			states := make(ChainState, len(ts))
			for i, tr := range ts {
				st, err := tr.Init(params)
				if err != nil {
					return nil, err
				}
				states[i] = st
			}
			return states, nil
		},
		Update: func(grads Blocks, state State, params Blocks) (Blocks, State, error) {
			states, ok := state.(ChainState)
			if !ok || len(states) != len(ts) {
				return nil, nil, errors.New("state does not belong to this Chain")
			}
			next := make(ChainState, len(ts))
			updates := grads
			for i, tr := range ts {
				var err error
				updates, next[i], err = tr.Update(updates, states[i], params)
				if err != nil {
					return nil, nil, err
				}
			}
			return updates, next, nil
		},
	}
}

// Identity passes gradients through untouched.
func Identity() Transformation {
	return Transformation{
		Init: func(params Blocks) (State, error) {
			return EmptyState{}, nil
		},
		Update: func(grads Blocks, state State, params Blocks) (Blocks, State, error) {
			return cloneBlocks(grads), state, nil
		},
	}
}
