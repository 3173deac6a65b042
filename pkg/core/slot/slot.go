// Package slot enumerates the ordered list of shift slots a month must
// cover and checks that the aggregate slot count matches the aggregate
// effective quota before any solving is attempted.
package slot

import (
	"time"

	"github.com/thewbear/doembang-roster/pkg/core/calendar"
	"github.com/thewbear/doembang-roster/pkg/core/model"
	"github.com/thewbear/doembang-roster/pkg/holidayset"
	"github.com/thewbear/doembang-roster/pkg/rostererr"
)

// Slot is an atomic scheduling unit: (date, post, shift-time).
type Slot struct {
	Date   model.Date
	Post   model.Post
	Time   model.ShiftTime
	Period model.PeriodKind
}

// weekdaySlotTimes is the implicit-DAY-excluded slot set scheduled on
// weekdays: (ER,EVENING), (ER,NIGHT), (ward,EVENING). The weekday DAY post
// is covered by a separate regular-hours rotation this core never schedules
// (spec.md §3, §9).
var weekdaySlotTimes = map[model.Post][]model.ShiftTime{
	model.ER:   {model.EVENING, model.NIGHT},
	model.Ward: {model.EVENING},
}

// Enumerate builds the ordered Slot list for the given year/month and
// returns the aggregate slot count per (period, post) bucket.
func Enumerate(year int, month time.Month, holidays *holidayset.Set) ([]Slot, map[model.PeriodPost]int) {
	var slots []Slot
	counts := make(map[model.PeriodPost]int)

	first := model.NewDate(year, month, 1)
	for d := first; d.Month() == month; d = d.Add(1) {
		period := calendar.Period(d, holidays)

		if period == model.Weekday {
			for _, post := range model.AllPosts {
				for _, st := range weekdaySlotTimes[post] {
					slots = append(slots, Slot{Date: d, Post: post, Time: st, Period: period})
					counts[model.PeriodPost{Period: period, Post: post}]++
				}
			}
			continue
		}

		// Weekend-equivalent: full cross-product of Post x ShiftTime.
		for _, post := range model.AllPosts {
			for _, st := range model.AllShiftTimes {
				slots = append(slots, Slot{Date: d, Post: post, Time: st, Period: period})
				counts[model.PeriodPost{Period: period, Post: post}]++
			}
		}
	}

	return slots, counts
}

// CheckFeasibility compares the aggregate enumerated slot count against the
// aggregate effective quota for every (period, post) bucket referenced by
// either side. Returns the first mismatch found, in a deterministic
// (period, then post) order, wrapped as rostererr.Infeasible.
func CheckFeasibility(slotCounts, quotaCounts map[model.PeriodPost]int) error {
	for _, period := range []model.PeriodKind{model.Weekday, model.Weekend} {
		for _, post := range model.AllPosts {
			pp := model.PeriodPost{Period: period, Post: post}
			expected := quotaCounts[pp]
			got := slotCounts[pp]
			if expected != got {
				return rostererr.Infeasible{
					Period:   period.String(),
					Post:     post.String(),
					Expected: expected,
					Got:      got,
				}
			}
		}
	}
	return nil
}
