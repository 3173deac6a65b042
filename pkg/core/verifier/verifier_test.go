package verifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thewbear/doembang-roster/pkg/core/model"
	"github.com/thewbear/doembang-roster/pkg/core/schedule"
	"github.com/thewbear/doembang-roster/pkg/core/slot"
	"github.com/thewbear/doembang-roster/pkg/holidayset"
)

func baseInput(t *testing.T) (Input, model.Date) {
	t.Helper()
	slots, counts := slot.Enumerate(2024, time.February, holidayset.Empty())
	require.NotEmpty(t, slots)

	monthStart := model.NewDate(2024, time.February, 1)
	monthEnd := slots[len(slots)-1].Date

	periods := make(map[model.Date]model.PeriodKind)
	for d := monthStart.Add(-1); !d.After(monthEnd.Add(1)); d = d.Add(1) {
		kind := model.Weekday
		if d.Weekday() == 0 || d.Weekday() == 6 {
			kind = model.Weekend
		}
		periods[d] = kind
	}

	sched := schedule.New()
	quota := make(model.EffectiveQuota)
	for pp, n := range counts {
		quota[pp] = n
	}
	for _, sl := range slots {
		sched.Place(sl.Date, sl.Post, sl.Time, "dr-solo")
	}

	return Input{
		Schedule:       sched,
		Slots:          slots,
		EffectiveQuota: map[model.Doctor]model.EffectiveQuota{"dr-solo": quota},
		Periods:        periods,
		MonthStart:     monthStart,
		MonthEnd:       monthEnd,
	}, monthStart
}

func TestVerify_FullyConsistentScheduleIsNil(t *testing.T) {
	in, _ := baseInput(t)
	// A single doctor holding every slot breaks the chain-length rule, so
	// build a minimal two-slot instance instead for a clean pass.
	sched := schedule.New()
	d := model.NewDate(2024, time.February, 1) // Thursday, weekday
	sched.Place(d, model.ER, model.EVENING, "dr-a")
	sched.Place(d, model.Ward, model.EVENING, "dr-b")

	in.Schedule = sched
	in.Slots = []slot.Slot{
		{Date: d, Post: model.ER, Time: model.EVENING, Period: model.Weekday},
		{Date: d, Post: model.Ward, Time: model.EVENING, Period: model.Weekday},
	}
	in.EffectiveQuota = map[model.Doctor]model.EffectiveQuota{
		"dr-a": {{Period: model.Weekday, Post: model.ER}: 1},
		"dr-b": {{Period: model.Weekday, Post: model.Ward}: 1},
	}
	in.Periods = map[model.Date]model.PeriodKind{d: model.Weekday}

	assert.NoError(t, Verify(in))
}

func TestVerify_MissingSlotFailsCoverage(t *testing.T) {
	in, _ := baseInput(t)
	first := in.Slots[0]
	in.Schedule.Unplace(first.Date, first.Post, first.Time)

	err := Verify(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "was not placed")
}

func TestVerify_QuotaMismatchFails(t *testing.T) {
	d := model.NewDate(2024, time.February, 1)
	sched := schedule.New()
	sched.Place(d, model.ER, model.EVENING, "dr-a")

	in := Input{
		Schedule: sched,
		Slots:    []slot.Slot{{Date: d, Post: model.ER, Time: model.EVENING, Period: model.Weekday}},
		EffectiveQuota: map[model.Doctor]model.EffectiveQuota{
			"dr-a": {{Period: model.Weekday, Post: model.ER}: 5},
		},
		Periods:    map[model.Date]model.PeriodKind{d: model.Weekday},
		MonthStart: d,
		MonthEnd:   d,
	}

	err := Verify(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 5 slots")
}

func TestVerify_NYQuotaMismatchFails(t *testing.T) {
	d := model.NewDate(2024, time.December, 31)
	sched := schedule.New()
	sched.Place(d, model.ER, model.EVENING, "dr-a")

	in := Input{
		Schedule: sched,
		Slots:    []slot.Slot{{Date: d, Post: model.ER, Time: model.EVENING, Period: model.Weekday}},
		EffectiveQuota: map[model.Doctor]model.EffectiveQuota{
			"dr-a": {{Period: model.Weekday, Post: model.ER}: 1},
		},
		NYQuota: map[model.Doctor]model.NYQuota{
			"dr-a": {NYE: 2, NY: 0},
		},
		Periods:    map[model.Date]model.PeriodKind{d: model.Weekday},
		MonthStart: d,
		MonthEnd:   d,
	}

	err := Verify(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NYE window: expected 2 slots, schedule has 1")
}

func TestVerify_ChainViolationFails(t *testing.T) {
	d := model.NewDate(2024, time.February, 1)
	sched := schedule.New()
	sched.Place(d, model.ER, model.EVENING, "dr-a")
	sched.Place(d, model.ER, model.NIGHT, "dr-a")

	in := Input{
		Schedule: sched,
		Slots: []slot.Slot{
			{Date: d, Post: model.ER, Time: model.EVENING, Period: model.Weekday},
			{Date: d, Post: model.ER, Time: model.NIGHT, Period: model.Weekday},
		},
		EffectiveQuota: map[model.Doctor]model.EffectiveQuota{
			"dr-a": {{Period: model.Weekday, Post: model.ER}: 2},
		},
		Periods:    map[model.Date]model.PeriodKind{d: model.Weekday},
		MonthStart: d,
		MonthEnd:   d,
	}

	err := Verify(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "breaks a hard rule")
}
