package gradtx

import (
	"errors"
	"math"
)

// Schedule maps a zero-based step index to a multiplier η_t. Schedules are
// pure functions of the step so that transformation state stays the single
// source of progress.
type Schedule interface {
	Eta(step int64) float64
}

// FixedSchedule is a constant η.
type FixedSchedule struct {
	eta float64
}

// NewFixedSchedule returns a constant schedule; eta <= 0 defaults to 1.
func NewFixedSchedule(eta float64) *FixedSchedule {
	if eta <= 0 {
		eta = 1.0
	}
	return &FixedSchedule{eta: eta}
}

func (s *FixedSchedule) Eta(step int64) float64 { return s.eta }

// CosineAnnealingWarmRestarts anneals η from 1 to 0 over a period and
// restarts, with each period tMult times longer than the last
// (Loshchilov & Hutter, Eq. 15).
type CosineAnnealingWarmRestarts struct {
	initialPeriodSteps int64
	tMult              float64
}

func NewCosineAnnealingWarmRestarts(initialPeriodSteps int, tMult float64) (*CosineAnnealingWarmRestarts, error) {
	if initialPeriodSteps <= 0 {
		return nil, errors.New("initialPeriodSteps must be > 0")
	}
	if tMult < 1.0 {
		return nil, errors.New("tMult must be >= 1.0")
	}
	return &CosineAnnealingWarmRestarts{
		initialPeriodSteps: int64(initialPeriodSteps),
		tMult:              tMult,
	}, nil
}

// locate returns the offset within the current period and the period length
// for the given step.
func (s *CosineAnnealingWarmRestarts) locate(step int64) (tcur, period int64) {
	period = s.initialPeriodSteps
	for step >= period {
		step -= period
		period = int64(math.Round(float64(period) * s.tMult))
		if period <= 0 {
			period = 1
		}
	}
	return step, period
}

func (s *CosineAnnealingWarmRestarts) Eta(step int64) float64 {
	tcur, period := s.locate(step)
	r := float64(tcur) / float64(period)
	return 0.5 + 0.5*math.Cos(math.Pi*r)
}

// PeriodAt reports the length in steps of the period containing step.
func (s *CosineAnnealingWarmRestarts) PeriodAt(step int64) int {
	_, period := s.locate(step)
	return int(period)
}

// ScaleByScheduleState counts update steps.
type ScaleByScheduleState struct {
	Count int64
}

// ScaleBySchedule multiplies updates by η at the current step, then
// advances the step count. Negative η is clamped to zero, so a schedule
// minimum suppresses the whole update.
func ScaleBySchedule(schedule Schedule) Transformation {
	return Transformation{
		Init: func(params Blocks) (State, error) {
			if schedule == nil {
				return nil, errors.New("schedule must not be nil")
			}
			return &ScaleByScheduleState{}, nil
		},
		Update: func(grads Blocks, state State, params Blocks) (Blocks, State, error) {
			st, ok := state.(*ScaleByScheduleState)
			if !ok || st == nil {
				return nil, nil, errors.New("state does not belong to ScaleBySchedule")
			}
			eta := schedule.Eta(st.Count)
			if eta < 0 {
				eta = 0
			}
			updates := zerosLike(grads)
			for i := range grads {
				scaleTo(updates[i], grads[i], eta, StrategyEager)
			}
			return updates, &ScaleByScheduleState{Count: st.Count + 1}, nil
		},
	}
}
