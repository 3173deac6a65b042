package slot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thewbear/doembang-roster/pkg/core/model"
	"github.com/thewbear/doembang-roster/pkg/holidayset"
)

func TestEnumerate_WeekdayHasThreeSlots(t *testing.T) {
	// February 2024 has no holidays configured here; Feb 1 2024 is a Thursday.
	slots, counts := Enumerate(2024, time.February, holidayset.Empty())

	weekdaySlots := 0
	for _, s := range slots {
		if s.Date == model.NewDate(2024, time.February, 1) {
			weekdaySlots++
		}
	}
	assert.Equal(t, 3, weekdaySlots)
	assert.True(t, counts[model.PeriodPost{Period: model.Weekday, Post: model.ER}] > 0)
}

func TestEnumerate_WeekendHasSixSlots(t *testing.T) {
	slots, _ := Enumerate(2024, time.February, holidayset.Empty())

	saturday := model.NewDate(2024, time.February, 3)
	weekendSlots := 0
	for _, s := range slots {
		if s.Date == saturday {
			weekendSlots++
		}
	}
	assert.Equal(t, 6, weekendSlots)
}

func TestEnumerate_HolidayPromotesWeekdayToWeekend(t *testing.T) {
	holiday := model.NewDate(2024, time.February, 1)
	set, err := holidayset.Build(holidayset.Sources{Explicit: []model.Date{holiday}})
	require.NoError(t, err)

	slots, _ := Enumerate(2024, time.February, set)

	count := 0
	for _, s := range slots {
		if s.Date == holiday {
			count++
			assert.Equal(t, model.Weekend, s.Period)
		}
	}
	assert.Equal(t, 6, count)
}

func TestEnumerate_EveryEnumeratedSlotAppearsExactlyOnce(t *testing.T) {
	slots, _ := Enumerate(2024, time.February, holidayset.Empty())

	seen := make(map[Slot]int)
	for _, s := range slots {
		seen[s]++
	}
	for s, n := range seen {
		assert.Equal(t, 1, n, "slot %+v appears %d times", s, n)
	}
}

func TestCheckFeasibility_MatchReturnsNil(t *testing.T) {
	pp := model.PeriodPost{Period: model.Weekday, Post: model.ER}
	err := CheckFeasibility(
		map[model.PeriodPost]int{pp: 10},
		map[model.PeriodPost]int{pp: 10},
	)
	assert.NoError(t, err)
}

func TestCheckFeasibility_MismatchReturnsInfeasible(t *testing.T) {
	pp := model.PeriodPost{Period: model.Weekday, Post: model.ER}
	err := CheckFeasibility(
		map[model.PeriodPost]int{pp: 10},
		map[model.PeriodPost]int{pp: 4},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "infeasible")
}

func TestCheckFeasibility_EmptyQuotasAgainstNonEmptySlotsIsInfeasible(t *testing.T) {
	pp := model.PeriodPost{Period: model.Weekday, Post: model.ER}
	err := CheckFeasibility(
		map[model.PeriodPost]int{pp: 3},
		map[model.PeriodPost]int{},
	)
	require.Error(t, err)
}
