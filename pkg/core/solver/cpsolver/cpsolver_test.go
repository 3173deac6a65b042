package cpsolver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thewbear/doembang-roster/pkg/core/model"
	"github.com/thewbear/doembang-roster/pkg/core/slot"
	"github.com/thewbear/doembang-roster/pkg/core/solver"
	"github.com/thewbear/doembang-roster/pkg/holidayset"
)

func TestSolve_EmptySlotsReturnsEmptySchedule(t *testing.T) {
	s := New()
	sched, err := s.Solve(context.Background(), solver.Input{})
	require.NoError(t, err)
	assert.Equal(t, 0, sched.Len())
}

func TestSolve_NoEligibleDoctorIsUnsatisfiable(t *testing.T) {
	d := model.NewDate(2024, time.February, 1) // Thursday
	slots, _ := slot.Enumerate(2024, time.February, holidayset.Empty())

	// The only doctor has an autopsy booking on Feb 1 EVENING, which forbids
	// every band that day, so Feb 1's slots have no eligible doctor.
	in := solver.Input{
		Slots: slots,
		EffectiveQuota: map[model.Doctor]model.EffectiveQuota{
			"dr-a": {},
		},
		Autopsy: map[model.Doctor][]model.AutopsyEntry{
			"dr-a": {{Date: d, Time: model.EVENING}},
		},
		Periods: map[model.Date]model.PeriodKind{d: model.Weekday},
	}

	s := New()
	_, err := s.Solve(context.Background(), in)
	require.Error(t, err)
}
