package annealsolver

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

func buildInput(t *testing.T, year int, month time.Month) solver.Input {
	t.Helper()

	slots, slotCounts := slot.Enumerate(year, month, holidayset.Empty())
	require.NotEmpty(t, slots)

	monthStart := model.NewDate(year, month, 1)
	monthEnd := slots[len(slots)-1].Date

	periods := make(map[model.Date]model.PeriodKind)
	for d := monthStart.Add(-1); !d.After(monthEnd.Add(1)); d = d.Add(1) {
		kind := model.Weekday
		if d.Weekday() == 0 || d.Weekday() == 6 {
			kind = model.Weekend
		}
		periods[d] = kind
	}

	// Three doctors evenly splitting every (period, post) bucket found in
	// the enumerated slots.
	doctors := []model.Doctor{"dr-a", "dr-b", "dr-c"}
	quotas := make(map[model.Doctor]model.EffectiveQuota, len(doctors))
	for _, doc := range doctors {
		quotas[doc] = make(model.EffectiveQuota)
	}
	for pp, n := range slotCounts {
		base := n / len(doctors)
		remainder := n % len(doctors)
		for i, doc := range doctors {
			share := base
			if i < remainder {
				share++
			}
			quotas[doc][pp] = share
		}
	}

	return solver.Input{
		Slots:          slots,
		EffectiveQuota: quotas,
		Periods:        periods,
		MonthStart:     monthStart,
		MonthEnd:       monthEnd,
		Seed:           42,
		Deadline:       5 * time.Second,
	}
}

func TestSolve_EmptySlotsReturnsEmptySchedule(t *testing.T) {
	s := New()
	sched, err := s.Solve(context.Background(), solver.Input{})
	require.NoError(t, err)
	assert.Equal(t, 0, sched.Len())
}

func TestSolve_EveryQuotaExactlyMet(t *testing.T) {
	in := buildInput(t, 2024, time.February)

	s := New()
	sched, err := s.Solve(context.Background(), in)
	require.NoError(t, err)

	byDoctor := sched.CountByDoctorPeriodPost(in.Periods)
	for doc, eq := range in.EffectiveQuota {
		for pp, want := range eq {
			assert.Equal(t, want, byDoctor[doc][pp], "doctor %s bucket %s", doc, pp)
		}
	}
}

func TestSolve_EverySlotIsAssigned(t *testing.T) {
	in := buildInput(t, 2024, time.February)

	s := New()
	sched, err := s.Solve(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, len(in.Slots), sched.Len())
}

func TestSolve_DeterministicForSameSeed(t *testing.T) {
	in := buildInput(t, 2024, time.February)

	s := New()
	sched1, err := s.Solve(context.Background(), in)
	require.NoError(t, err)
	sched2, err := s.Solve(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, sched1.Entries(), sched2.Entries())
}
