// Package verifier independently re-checks a finished schedule against the
// same hard rules the solver was bound by, so a bug in either solving
// strategy surfaces as a VerifierFailed error instead of a silently wrong
// roster.
package verifier

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/thewbear/doembang-roster/pkg/core/constraint"
	"github.com/thewbear/doembang-roster/pkg/core/model"
	"github.com/thewbear/doembang-roster/pkg/core/schedule"
	"github.com/thewbear/doembang-roster/pkg/core/slot"
	"github.com/thewbear/doembang-roster/pkg/rostererr"
)

// Input bundles everything Verify needs to recompute expectations
// independently of whatever produced the Schedule under test.
type Input struct {
	Schedule       *schedule.Schedule
	Slots          []slot.Slot
	EffectiveQuota map[model.Doctor]model.EffectiveQuota
	Autopsy        map[model.Doctor][]model.AutopsyEntry
	NYQuota        map[model.Doctor]model.NYQuota
	Periods        map[model.Date]model.PeriodKind
	MonthStart     model.Date
	MonthEnd       model.Date

	ChainCountsWeekendImplicitDay bool
	NYESupersedesWeekendQuota     bool
	AutopsyAppliesOutsideMonth    bool
}

// Verify re-derives every hard-rule check from scratch and returns a single
// aggregated rostererr.VerifierFailed if any fails, or nil if the schedule
// is fully consistent.
func Verify(in Input) error {
	var errs error

	errs = multierr.Append(errs, verifyCoverage(in))
	errs = multierr.Append(errs, verifyQuotas(in))
	errs = multierr.Append(errs, verifyNYQuotas(in))
	errs = multierr.Append(errs, verifyHardRules(in))

	if errs == nil {
		return nil
	}

	var violations []string
	for _, e := range multierr.Errors(errs) {
		violations = append(violations, e.Error())
	}
	return rostererr.VerifierFailed{Violations: violations}
}

// verifyCoverage checks that every enumerated slot was placed exactly once
// and that the schedule contains no cell outside the enumerated set.
func verifyCoverage(in Input) error {
	want := make(map[string]struct{}, len(in.Slots))
	for _, sl := range in.Slots {
		want[coverageKey(sl.Date, sl.Post, sl.Time)] = struct{}{}
	}

	var errs error
	for _, sl := range in.Slots {
		if _, ok := in.Schedule.DoctorAt(sl.Date, sl.Post, sl.Time); !ok {
			errs = multierr.Append(errs, fmt.Errorf("slot %s %s %s was not placed", sl.Date, sl.Post, sl.Time))
		}
	}
	for _, e := range in.Schedule.Entries() {
		if _, ok := want[coverageKey(e.Date, e.Post, e.Time)]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("schedule placed an unenumerated slot %s %s %s", e.Date, e.Post, e.Time))
		}
	}
	return errs
}

func coverageKey(date model.Date, post model.Post, time model.ShiftTime) string {
	return fmt.Sprintf("%s|%s|%s", date, post, time)
}

// verifyQuotas recomputes each doctor's occupied-slot count per
// (period, post) bucket and compares it against their effective quota, less
// any slots NYESupersedesWeekendQuota hands off to the NYE/NY window quota
// instead (checked separately by verifyNYQuotas).
func verifyQuotas(in Input) error {
	var errs error

	opts := constraint.Options{NYESupersedesWeekendQuota: in.NYESupersedesWeekendQuota}
	byDoctor := make(map[model.Doctor]map[model.PeriodPost]int)
	for _, e := range in.Schedule.Entries() {
		_, hasNYQuota := in.NYQuota[e.Doctor]
		if constraint.GeneralQuotaExcluded(opts, hasNYQuota, e.Date, e.Time) {
			continue
		}
		pp := model.PeriodPost{Period: in.Periods[e.Date], Post: e.Post}
		if byDoctor[e.Doctor] == nil {
			byDoctor[e.Doctor] = make(map[model.PeriodPost]int)
		}
		byDoctor[e.Doctor][pp]++
	}

	for doc, quota := range in.EffectiveQuota {
		_, hasNYQuota := in.NYQuota[doc]
		for pp, want := range quota {
			if hasNYQuota && in.NYESupersedesWeekendQuota {
				want -= excludedSlotCount(in, doc, pp)
			}
			got := byDoctor[doc][pp]
			if got != want {
				errs = multierr.Append(errs, fmt.Errorf("doctor %s bucket %s: expected %d slots, schedule has %d", doc, pp, want, got))
			}
		}
	}
	return errs
}

// excludedSlotCount counts how many enumerated slots in bucket pp fall in
// doc's NYE/NY window, for reducing the general quota target by the same
// amount the window quota takes over.
func excludedSlotCount(in Input, doc model.Doctor, pp model.PeriodPost) int {
	opts := constraint.Options{NYESupersedesWeekendQuota: in.NYESupersedesWeekendQuota}
	_, hasNYQuota := in.NYQuota[doc]

	count := 0
	for _, sl := range in.Slots {
		if (model.PeriodPost{Period: sl.Period, Post: sl.Post}) != pp {
			continue
		}
		if constraint.GeneralQuotaExcluded(opts, hasNYQuota, sl.Date, sl.Time) {
			count++
		}
	}
	return count
}

// verifyNYQuotas recomputes each doctor's count of (Dec-30-NIGHT + all Dec-31
// slots) and Jan-1-4 slots and compares them against their configured
// NYQuota, for doctors who have one.
func verifyNYQuotas(in Input) error {
	var errs error

	nye := make(map[model.Doctor]int)
	ny := make(map[model.Doctor]int)
	for _, e := range in.Schedule.Entries() {
		if constraint.InNYEWindow(e.Date, e.Time) {
			nye[e.Doctor]++
		}
		if constraint.InNYWindow(e.Date) {
			ny[e.Doctor]++
		}
	}

	for doc, q := range in.NYQuota {
		if got := nye[doc]; got != q.NYE {
			errs = multierr.Append(errs, fmt.Errorf("doctor %s NYE window: expected %d slots, schedule has %d", doc, q.NYE, got))
		}
		if got := ny[doc]; got != q.NY {
			errs = multierr.Append(errs, fmt.Errorf("doctor %s New Year window: expected %d slots, schedule has %d", doc, q.NY, got))
		}
	}
	return errs
}

// verifyHardRules replays every placed slot through a fresh Checker, as if
// each were the last one added, confirming none conflicts with the rest of
// the schedule.
func verifyHardRules(in Input) error {
	checker := constraint.New(in.Autopsy, in.Periods, in.MonthStart, in.MonthEnd, constraint.Options{
		ChainCountsWeekendImplicitDay: in.ChainCountsWeekendImplicitDay,
		AutopsyAppliesOutsideMonth:    in.AutopsyAppliesOutsideMonth,
		NYESupersedesWeekendQuota:     in.NYESupersedesWeekendQuota,
	})

	var errs error
	for _, e := range in.Schedule.Entries() {
		in.Schedule.Unplace(e.Date, e.Post, e.Time)
		cand := constraint.Candidate{Doctor: e.Doctor, Date: e.Date, Post: e.Post, Time: e.Time, Period: in.Periods[e.Date]}
		if checker.Violates(in.Schedule, cand) {
			errs = multierr.Append(errs, fmt.Errorf("%s %s %s assigned to %s breaks a hard rule against the rest of the schedule", e.Date, e.Post, e.Time, e.Doctor))
		}
		in.Schedule.Place(e.Date, e.Post, e.Time, e.Doctor)
	}
	return errs
}
