// Package cpsolver is the declarative solving strategy: it encodes every
// hard rule as a constraint over one Boolean decision variable per
// (slot, doctor) pair and hands the model to the CP-SAT backend.
package cpsolver

import (
	"context"
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/thewbear/doembang-roster/pkg/core/constraint"
	"github.com/thewbear/doembang-roster/pkg/core/model"
	"github.com/thewbear/doembang-roster/pkg/core/schedule"
	"github.com/thewbear/doembang-roster/pkg/core/slot"
	"github.com/thewbear/doembang-roster/pkg/core/solver"
	"github.com/thewbear/doembang-roster/pkg/rostererr"
)

// Solver implements solver.Solver with a CP-SAT model.
type Solver struct{}

// New returns a CP-SAT-backed Solver.
func New() *Solver {
	return &Solver{}
}

// key identifies one (slot, doctor) decision variable.
type key struct {
	date   model.Date
	post   model.Post
	time   model.ShiftTime
	doctor model.Doctor
}

// Solve builds and solves the CP-SAT model for in. ctx is checked once,
// before the model is built, so cancellation can only prevent a solve from
// starting. in.Deadline is not read: SolveCpModel runs with the backend's
// default parameters and this package sets no wall-clock limit on it.
func (s *Solver) Solve(ctx context.Context, in solver.Input) (*schedule.Schedule, error) {
	if len(in.Slots) == 0 {
		return schedule.New(), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doctors := in.Doctors()
	builder := cpmodel.NewCpModelBuilder()

	vars := make(map[key]cpmodel.BoolVar)
	slotsByBand := make(map[constraint.Band][]slot.Slot) // (date,time) -> slots sharing that band, any post

	opts := constraint.Options{
		ChainCountsWeekendImplicitDay: in.ChainCountsWeekendImplicitDay,
		AutopsyAppliesOutsideMonth:    in.AutopsyAppliesOutsideMonth,
		NYESupersedesWeekendQuota:     in.NYESupersedesWeekendQuota,
	}
	checker := constraint.New(in.Autopsy, in.Periods, in.MonthStart, in.MonthEnd, opts)

	for _, sl := range in.Slots {
		b := constraint.Band{Date: sl.Date, Time: sl.Time}
		slotsByBand[b] = append(slotsByBand[b], sl)

		for _, doc := range doctors {
			if autopsyForbids(checker, in, doc, sl) {
				continue // no variable at all: structurally excludes the assignment
			}
			k := key{date: sl.Date, post: sl.Post, time: sl.Time, doctor: doc}
			vars[k] = builder.NewBoolVar().WithName(fmt.Sprintf("x_%s_%s_%s_%s", sl.Date, sl.Post, sl.Time, doc))
		}
	}

	// Rule: every slot is covered by exactly one doctor.
	for _, sl := range in.Slots {
		var options []cpmodel.BoolVar
		for _, doc := range doctors {
			if v, ok := vars[key{date: sl.Date, post: sl.Post, time: sl.Time, doctor: doc}]; ok {
				options = append(options, v)
			}
		}
		if len(options) == 0 {
			return nil, rostererr.Unsatisfiable{Reason: fmt.Sprintf("no eligible doctor for %s %s %s after autopsy exclusions", sl.Date, sl.Post, sl.Time)}
		}
		builder.AddExactlyOne(options...)
	}

	// Rule: a doctor cannot hold two posts in the same (date, time) band.
	for b, sls := range slotsByBand {
		if len(sls) < 2 {
			continue
		}
		for _, doc := range doctors {
			var options []cpmodel.BoolVar
			for _, sl := range sls {
				if v, ok := vars[key{date: b.Date, post: sl.Post, time: b.Time, doctor: doc}]; ok {
					options = append(options, v)
				}
			}
			if len(options) > 1 {
				builder.AddAtMostOne(options...)
			}
		}
	}

	// Rule: each doctor's slot count per (period, post) bucket exactly
	// matches their effective quota, less any slots NYESupersedesWeekendQuota
	// hands off to the NYE/NY window quota instead.
	for _, doc := range doctors {
		_, hasNYQuota := in.NYQuota[doc]
		for pp, want := range in.EffectiveQuota[doc] {
			sum := cpmodel.NewLinearExpr()
			excluded := 0
			for _, sl := range in.Slots {
				if (model.PeriodPost{Period: sl.Period, Post: sl.Post}) != pp {
					continue
				}
				if constraint.GeneralQuotaExcluded(opts, hasNYQuota, sl.Date, sl.Time) {
					excluded++
					continue
				}
				if v, ok := vars[key{date: sl.Date, post: sl.Post, time: sl.Time, doctor: doc}]; ok {
					sum.Add(v)
				}
			}
			builder.AddEquality(sum, cpmodel.NewConstant(int64(want-excluded)))
		}
	}

	// Rule: New Year's Eve/Day window quotas, where configured.
	addNYQuotaConstraints(builder, in, vars)

	// Rule: bounded consecutive-shift chain. For every window of three
	// chronologically-adjacent bands, a doctor cannot be present (assigned,
	// or implicitly present via a weekday DAY band) across all three.
	addChainConstraints(builder, in, doctors, vars, slotsByBand)

	// Objective: minimise same-shift-time-band repeats across consecutive
	// days, the one soft penalty this domain optimises.
	addSoftObjective(builder, doctors, vars, slotsByBand)

	cpModel, err := builder.Model()
	if err != nil {
		return nil, fmt.Errorf("building CP-SAT model: %w", err)
	}
	response, err := cpmodel.SolveCpModel(cpModel)
	if err != nil {
		return nil, fmt.Errorf("solving CP-SAT model: %w", err)
	}

	status := response.GetStatus()
	if status != cpmodel.CpSolverStatus_OPTIMAL && status != cpmodel.CpSolverStatus_FEASIBLE {
		return nil, rostererr.Unsatisfiable{Reason: fmt.Sprintf("CP-SAT returned status %v", status)}
	}

	sched := schedule.New()
	for k, v := range vars {
		if cpmodel.SolutionBooleanValue(response, v) {
			sched.Place(k.date, k.post, k.time, k.doctor)
		}
	}
	return sched, nil
}

// addNYQuotaConstraints fixes each doctor's slot count within the New
// Year's Eve window (Dec-30-NIGHT through all of Dec 31) and the New Year
// window (Jan 1-4) to exactly their configured NYQuota.
func addNYQuotaConstraints(builder *cpmodel.CpModelBuilder, in solver.Input, vars map[key]cpmodel.BoolVar) {
	for doc, q := range in.NYQuota {
		nye := cpmodel.NewLinearExpr()
		ny := cpmodel.NewLinearExpr()

		for _, sl := range in.Slots {
			v, ok := vars[key{date: sl.Date, post: sl.Post, time: sl.Time, doctor: doc}]
			if !ok {
				continue
			}
			if constraint.InNYEWindow(sl.Date, sl.Time) {
				nye.Add(v)
			}
			if constraint.InNYWindow(sl.Date) {
				ny.Add(v)
			}
		}

		builder.AddEquality(nye, cpmodel.NewConstant(int64(q.NYE)))
		builder.AddEquality(ny, cpmodel.NewConstant(int64(q.NY)))
	}
}

// addSoftObjective builds, for every (doctor, consecutive date pair,
// shift-time band) triple with slots on both days, an indicator variable
// that is forced to 1 whenever the doctor works that band on both days, and
// minimises the sum of those indicators. The indicator has no upper bound:
// minimisation alone drives it to 0 whenever it isn't forced up by the
// lower-bound constraint, so a single inequality per triple suffices.
func addSoftObjective(builder *cpmodel.CpModelBuilder, doctors []model.Doctor, vars map[key]cpmodel.BoolVar, slotsByBand map[constraint.Band][]slot.Slot) {
	dateSet := make(map[model.Date]bool)
	for b := range slotsByBand {
		dateSet[b.Date] = true
	}

	objective := cpmodel.NewLinearExpr()
	times := []model.ShiftTime{model.DAY, model.EVENING, model.NIGHT}

	for d := range dateSet {
		next := d.Add(1)
		if !dateSet[next] {
			continue
		}
		for _, t := range times {
			for _, doc := range doctors {
				workToday := bandWorkTerms(vars, slotsByBand, d, t, doc)
				workNext := bandWorkTerms(vars, slotsByBand, next, t, doc)
				if len(workToday) == 0 || len(workNext) == 0 {
					continue
				}

				z := builder.NewBoolVar()
				sum := cpmodel.NewLinearExpr()
				for _, v := range workToday {
					sum.Add(v)
				}
				for _, v := range workNext {
					sum.Add(v)
				}
				sum.AddTerm(z, -1)
				builder.AddLessOrEqual(sum, cpmodel.NewConstant(1))

				objective.Add(z)
			}
		}
	}

	builder.Minimize(objective)
}

// bandWorkTerms returns doc's decision variables across every post sharing
// (date, time) — at most one can ever be true, so their sum is doc's
// presence indicator for that band.
func bandWorkTerms(vars map[key]cpmodel.BoolVar, slotsByBand map[constraint.Band][]slot.Slot, date model.Date, t model.ShiftTime, doc model.Doctor) []cpmodel.BoolVar {
	var out []cpmodel.BoolVar
	for _, sl := range slotsByBand[constraint.Band{Date: date, Time: t}] {
		if v, ok := vars[key{date: date, post: sl.Post, time: t, doctor: doc}]; ok {
			out = append(out, v)
		}
	}
	return out
}

func autopsyForbids(checker *constraint.Checker, in solver.Input, doc model.Doctor, sl slot.Slot) bool {
	cand := constraint.Candidate{Doctor: doc, Date: sl.Date, Post: sl.Post, Time: sl.Time, Period: sl.Period}
	return checker.ViolatesAutopsyOnly(cand)
}

// addChainConstraints adds, for every distinct 3-band window touched by the
// enumerated slots, a linear constraint bounding the sum of "present"
// indicators to at most 2 (a DAY band on a weekday, or on any
// weekend-equivalent date when in.ChainCountsWeekendImplicitDay is set,
// contributes a constant 1 instead of its variables, since it is implicitly
// always occupied — the same reading constraint.Checker applies).
func addChainConstraints(builder *cpmodel.CpModelBuilder, in solver.Input, doctors []model.Doctor, vars map[key]cpmodel.BoolVar, slotsByBand map[constraint.Band][]slot.Slot) {
	seen := make(map[[3]constraint.Band]bool)

	for b := range slotsByBand {
		for _, window := range constraint.ChainWindows(b.Date, b.Time) {
			if seen[window] {
				continue
			}
			seen[window] = true

			for _, doc := range doctors {
				sum := cpmodel.NewLinearExpr()
				constant := int64(0)

				for _, wb := range window {
					if wb.Time == model.DAY && (in.Periods[wb.Date] == model.Weekday || in.ChainCountsWeekendImplicitDay) {
						constant++
						continue
					}
					for _, sl := range slotsByBand[constraint.Band{Date: wb.Date, Time: wb.Time}] {
						if v, ok := vars[key{date: wb.Date, post: sl.Post, time: wb.Time, doctor: doc}]; ok {
							sum.Add(v)
						}
					}
				}

				if constant >= 3 {
					continue // impossible in practice; guards against a malformed window
				}
				builder.AddLessOrEqual(sum, cpmodel.NewConstant(2-constant))
			}
		}
	}
}
