// Package solver defines the shared contract two interchangeable solving
// strategies implement: a declarative CP-SAT path (solver/cpsolver) and a
// stochastic simulated-annealing fallback (solver/annealsolver).
package solver

import (
	"context"
	"time"

	"github.com/thewbear/doembang-roster/pkg/core/model"
	"github.com/thewbear/doembang-roster/pkg/core/schedule"
	"github.com/thewbear/doembang-roster/pkg/core/slot"
)

// Input is everything a Solver needs to produce a schedule for one month.
// Both solving strategies consume the same Input so callers can switch
// between them without touching the rest of the pipeline.
type Input struct {
	Slots []slot.Slot

	// EffectiveQuota is the exact per-(period, post) slot count each doctor
	// must occupy.
	EffectiveQuota map[model.Doctor]model.EffectiveQuota

	// Autopsy lists the (date, shift-time) bands each doctor is already
	// committed elsewhere for.
	Autopsy map[model.Doctor][]model.AutopsyEntry

	// Periods maps every date in scope (including one day of slack on
	// either side of the target month) to its PeriodKind.
	Periods map[model.Date]model.PeriodKind

	// NYQuota optionally fixes how many of a doctor's slots must fall in
	// the New Year's Eve/Day windows. Missing entries are unconstrained.
	NYQuota map[model.Doctor]model.NYQuota

	// MonthStart and MonthEnd bound the target month.
	MonthStart model.Date
	MonthEnd   model.Date

	// ChainCountsWeekendImplicitDay, NYESupersedesWeekendQuota, and
	// AutopsyAppliesOutsideMonth resolve the open questions in the
	// constraint layer; see constraint.Options.
	ChainCountsWeekendImplicitDay bool
	NYESupersedesWeekendQuota     bool
	AutopsyAppliesOutsideMonth    bool

	// Seed seeds annealsolver's random number generator, so that strategy
	// reproduces the same schedule for a given (Input, Seed) pair. cpsolver
	// does not read it.
	Seed int64

	// Deadline bounds how long annealsolver may search before giving up
	// with rostererr.Unsatisfiable. A zero value means no deadline.
	// cpsolver does not read it.
	Deadline time.Duration
}

// Doctors returns the deterministic, sorted list of doctors referenced by
// the input's effective quotas.
func (in Input) Doctors() []model.Doctor {
	doctors := make([]model.Doctor, 0, len(in.EffectiveQuota))
	for d := range in.EffectiveQuota {
		doctors = append(doctors, d)
	}
	sortDoctors(doctors)
	return doctors
}

func sortDoctors(doctors []model.Doctor) {
	for i := 1; i < len(doctors); i++ {
		for j := i; j > 0 && doctors[j] < doctors[j-1]; j-- {
			doctors[j], doctors[j-1] = doctors[j-1], doctors[j]
		}
	}
}

// Solver produces a fully-placed, hard-rule-satisfying Schedule for Input,
// or a rostererr.Unsatisfiable/InvalidInput error.
type Solver interface {
	Solve(ctx context.Context, in Input) (*schedule.Schedule, error)
}
