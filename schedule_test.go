package gradtx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedSchedule(t *testing.T) {
	t.Parallel()

	s := NewFixedSchedule(0.5)
	assert.Equal(t, 0.5, s.Eta(0))
	assert.Equal(t, 0.5, s.Eta(1000))

	// Non-positive eta defaults to 1.
	assert.Equal(t, 1.0, NewFixedSchedule(0).Eta(3))
	assert.Equal(t, 1.0, NewFixedSchedule(-2).Eta(3))
}

func TestCosineAnnealingWarmRestarts_EtaAndPeriods(t *testing.T) {
	t.Parallel()

	s, err := NewCosineAnnealingWarmRestarts(10, 2.0)
	require.NoError(t, err)

	// Period start: η = 1.
	assert.InDelta(t, 1.0, s.Eta(0), 0)
	// Half-period: η = 0.5.
	assert.InDelta(t, 0.5, s.Eta(5), 1e-12)
	// Step 10 begins the second period, doubled to 20 steps, η back at 1.
	assert.Equal(t, 20, s.PeriodAt(10))
	assert.InDelta(t, 1.0, s.Eta(10), 0)
	// Half of the second period.
	assert.InDelta(t, 0.5, s.Eta(20), 1e-12)
	// Third period: 40 steps, starting at step 30.
	assert.Equal(t, 40, s.PeriodAt(30))
}

func TestCosineAnnealingWarmRestarts_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewCosineAnnealingWarmRestarts(0, 2.0); err == nil {
		t.Fatalf("expected error on initialPeriodSteps <= 0")
	}
	if _, err := NewCosineAnnealingWarmRestarts(10, 0.5); err == nil {
		t.Fatalf("expected error on tMult < 1")
	}
}

func TestScaleBySchedule_AppliesEtaAtCount(t *testing.T) {
	t.Parallel()

	s, err := NewCosineAnnealingWarmRestarts(4, 1.0)
	require.NoError(t, err)

	tr := ScaleBySchedule(s)
	params := Blocks{{1.0}}
	state, err := tr.Init(params)
	require.NoError(t, err)

	grads := Blocks{{2.0}}
	for step := int64(0); step < 8; step++ {
		var updates Blocks
		updates, state, err = tr.Update(grads, state, params)
		require.NoError(t, err)
		assert.InDelta(t, 2.0*s.Eta(step), updates[0][0], 1e-12, "step %d", step)
	}
	assert.Equal(t, int64(8), state.(*ScaleByScheduleState).Count)
}

func TestScaleBySchedule_NilSchedule(t *testing.T) {
	t.Parallel()

	if _, err := ScaleBySchedule(nil).Init(Blocks{{1}}); err == nil {
		t.Fatalf("expected error on nil schedule")
	}
}
