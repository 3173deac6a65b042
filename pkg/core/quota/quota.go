// Package quota expands per-doctor nominal shift counts into exact
// per-(period, post) slot-count requirements.
package quota

import (
	"fmt"
	"sort"

	"github.com/thewbear/doembang-roster/pkg/core/model"
	"github.com/thewbear/doembang-roster/pkg/rostererr"
)

// Fixed multipliers from nominal to effective quota (spec.md §3/§4.2).
// One nominal weekend shift corresponds to three 8-hour slot occupancies
// (DAY+EVENING+NIGHT); weekday ER covers EVENING+NIGHT, weekday ward covers
// EVENING only.
const (
	weekdayERMultiplier   = 2
	weekdayWardMultiplier = 1
	weekendERMultiplier   = 3
	weekendWardMultiplier = 3
)

// Adjuster expands nominal quotas into effective quotas and remembers the
// nominal input so callers (e.g. the verifier) can report it in mismatch
// messages.
type Adjuster struct {
	nominal   map[model.Doctor]model.NominalQuota
	effective map[model.Doctor]model.EffectiveQuota
}

// Adjust computes effective quotas from nominal quotas for every doctor.
// Doctors with no nominal entry are omitted from the output. Returns
// InvalidInput if any entry is negative.
func Adjust(nominal map[model.Doctor]model.NominalQuota) (*Adjuster, error) {
	effective := make(map[model.Doctor]model.EffectiveQuota, len(nominal))

	doctors := make([]model.Doctor, 0, len(nominal))
	for d := range nominal {
		doctors = append(doctors, d)
	}
	sort.Slice(doctors, func(i, j int) bool { return doctors[i] < doctors[j] })

	for _, doctor := range doctors {
		nom := nominal[doctor]
		if nom.WeekdayER < 0 || nom.WeekdayWard < 0 || nom.WeekendER < 0 || nom.WeekendWard < 0 {
			return nil, rostererr.InvalidInput{
				Reason: fmt.Sprintf("doctor %q has a negative nominal quota field", doctor),
			}
		}

		effective[doctor] = model.EffectiveQuota{
			{Period: model.Weekday, Post: model.ER}:   nom.WeekdayER * weekdayERMultiplier,
			{Period: model.Weekday, Post: model.Ward}: nom.WeekdayWard * weekdayWardMultiplier,
			{Period: model.Weekend, Post: model.ER}:   nom.WeekendER * weekendERMultiplier,
			{Period: model.Weekend, Post: model.Ward}: nom.WeekendWard * weekendWardMultiplier,
		}
	}

	return &Adjuster{nominal: nominal, effective: effective}, nil
}

// Effective returns the computed effective quotas, keyed by doctor.
func (a *Adjuster) Effective() map[model.Doctor]model.EffectiveQuota {
	return a.effective
}

// Nominal returns the raw nominal quota a doctor's effective quota was
// derived from, for diagnostic reporting.
func (a *Adjuster) Nominal(doctor model.Doctor) (model.NominalQuota, bool) {
	nom, ok := a.nominal[doctor]
	return nom, ok
}

// AggregateByPeriodPost sums effective quotas across all doctors, producing
// the expected slot count per (period, post) bucket used by the feasibility
// precheck.
func (a *Adjuster) AggregateByPeriodPost() map[model.PeriodPost]int {
	totals := make(map[model.PeriodPost]int)
	for _, eq := range a.effective {
		for pp, count := range eq {
			totals[pp] += count
		}
	}
	return totals
}
