// Package constraint evaluates the hard rules a tentative (doctor, date,
// post, time) assignment must satisfy given the shifts already placed.
package constraint

import (
	"github.com/thewbear/doembang-roster/pkg/core/model"
)

// Placements is the read-only view of already-placed slots the checker
// needs. The solver's working schedule and the verifier's finished schedule
// both implement it.
type Placements interface {
	// DoctorAt returns the doctor assigned to (date, post, time), if any.
	DoctorAt(date model.Date, post model.Post, time model.ShiftTime) (model.Doctor, bool)
}

// Candidate is a tentative assignment being checked for hard-rule violations.
type Candidate struct {
	Doctor model.Doctor
	Date   model.Date
	Post   model.Post
	Time   model.ShiftTime
	Period model.PeriodKind
}

// Options resolves the open questions spec.md §9 flags rather than
// hard-codes, as surfaced configuration.
type Options struct {
	// ChainCountsWeekendImplicitDay, when true, treats every
	// weekend-equivalent date as if it still carried the implicit
	// weekday-DAY occupancy for chain counting; the neighbouring dates are
	// not consulted, so Saturdays and Sundays are covered as well as
	// holidays between weekdays. Default false: only explicitly scheduled
	// bands count on weekend-equivalent dates, per spec.md §4.4's plain
	// reading.
	ChainCountsWeekendImplicitDay bool

	// AutopsyAppliesOutsideMonth, when true (default), lets autopsy entries
	// dated outside the target month still block adjacent-day assignments
	// inside it. When false, such entries are dropped before construction.
	AutopsyAppliesOutsideMonth bool

	// NYESupersedesWeekendQuota, when true (default), excludes a doctor's
	// NYE/NY-window slots from their general per-(period, post) quota bucket
	// once that doctor has a configured NYQuota: the window quota governs
	// those slots exclusively instead of coexisting with the general one.
	NYESupersedesWeekendQuota bool
}

// InNYEWindow reports whether (date, time) falls in the New Year's Eve
// window: Dec-30-NIGHT through all of Dec 31.
func InNYEWindow(date model.Date, time model.ShiftTime) bool {
	if date.Month() == 12 && date.Day() == 31 {
		return true
	}
	return date.Month() == 12 && date.Day() == 30 && time == model.NIGHT
}

// InNYWindow reports whether date falls in the New Year window: Jan 1-4.
func InNYWindow(date model.Date) bool {
	return date.Month() == 1 && date.Day() >= 1 && date.Day() <= 4
}

// GeneralQuotaExcluded reports whether a (date, time) slot should be left
// out of a doctor's general per-(period, post) quota bucket because it
// falls in their NYE/NY window and opts says the window quota supersedes
// the general one there. hasNYQuota is whether the doctor has a configured
// NYQuota at all; doctors without one are never excluded.
func GeneralQuotaExcluded(opts Options, hasNYQuota bool, date model.Date, time model.ShiftTime) bool {
	if !hasNYQuota || !opts.NYESupersedesWeekendQuota {
		return false
	}
	return InNYEWindow(date, time) || InNYWindow(date)
}

// Checker evaluates the four hard rules of spec.md §4.4 (the fourth, quota
// saturation, is tracked by the solver directly and not duplicated here).
type Checker struct {
	autopsy map[model.Doctor][]model.AutopsyEntry
	periods map[model.Date]model.PeriodKind
	opts    Options
}

// New builds a Checker. periods maps every date in scope (including the one
// day of slack on either side of the target month, so neighbour lookups
// resolve) to its PeriodKind; monthStart/monthEnd bound the target month for
// the AutopsyAppliesOutsideMonth filter.
func New(autopsy map[model.Doctor][]model.AutopsyEntry, periods map[model.Date]model.PeriodKind, monthStart, monthEnd model.Date, opts Options) *Checker {
	if !opts.AutopsyAppliesOutsideMonth {
		filtered := make(map[model.Doctor][]model.AutopsyEntry, len(autopsy))
		for doctor, entries := range autopsy {
			var kept []model.AutopsyEntry
			for _, e := range entries {
				if !e.Date.Before(monthStart) && !e.Date.After(monthEnd) {
					kept = append(kept, e)
				}
			}
			if len(kept) > 0 {
				filtered[doctor] = kept
			}
		}
		autopsy = filtered
	}

	return &Checker{autopsy: autopsy, periods: periods, opts: opts}
}

// Violates returns true iff placing cand on top of p would break any hard
// rule.
func (c *Checker) Violates(p Placements, cand Candidate) bool {
	return c.violatesDoubleBooking(p, cand) ||
		c.violatesAutopsy(cand) ||
		c.violatesChain(p, cand)
}

// violatesDoubleBooking implements rule 1: the doctor is not already
// assigned a different post at the same (date, time).
func (c *Checker) violatesDoubleBooking(p Placements, cand Candidate) bool {
	for _, post := range model.AllPosts {
		if post == cand.Post {
			continue
		}
		if doc, ok := p.DoctorAt(cand.Date, post, cand.Time); ok && doc == cand.Doctor {
			return true
		}
	}
	return false
}

// ViolatesAutopsyOnly reports whether cand conflicts with a committed
// autopsy booking, independent of chain length or double-booking. The
// CP-SAT builder uses this to decide which (slot, doctor) variables are
// worth creating at all: an autopsy-forbidden pair gets no variable, which
// excludes it from the model entirely rather than constraining it to zero.
func (c *Checker) ViolatesAutopsyOnly(cand Candidate) bool {
	return c.violatesAutopsy(cand)
}

// violatesAutopsy implements rule 3.
func (c *Checker) violatesAutopsy(cand Candidate) bool {
	for _, e := range c.autopsy[cand.Doctor] {
		if autopsyForbids(e, cand.Date, cand.Time) {
			return true
		}
	}
	return false
}

func autopsyForbids(e model.AutopsyEntry, date model.Date, time model.ShiftTime) bool {
	if date == e.Date && time == e.Time {
		return true
	}
	switch e.Time {
	case model.DAY:
		if date == e.Date && time == model.EVENING {
			return true
		}
		if date == e.Date.Add(-1) && time == model.NIGHT {
			return true
		}
	case model.EVENING:
		if date == e.Date && (time == model.DAY || time == model.NIGHT) {
			return true
		}
		if date == e.Date.Add(1) && time == model.NIGHT {
			return true
		}
	case model.NIGHT:
		if date == e.Date && (time == model.DAY || time == model.EVENING) {
			return true
		}
		if date == e.Date.Add(1) && time == model.DAY {
			return true
		}
	}
	return false
}

// band identifies one (date, shift-time) occupancy band.
type band struct {
	date model.Date
	time model.ShiftTime
}

// Band is the exported form of band, for callers outside this package (the
// CP-SAT solver) that need to build the same chronological windows as a
// set of linear constraints rather than a boolean predicate.
type Band struct {
	Date model.Date
	Time model.ShiftTime
}

// ChainWindows is the exported form of windowsContaining: every 3-band
// chronological window that includes (date, time). See windowsContaining
// for the chronological ordering this is built from.
func ChainWindows(date model.Date, time model.ShiftTime) [][3]Band {
	var out [][3]Band
	for _, w := range (&Checker{}).windowsContaining(date, time) {
		out = append(out, [3]Band{
			{Date: w[0].date, Time: w[0].time},
			{Date: w[1].date, Time: w[1].time},
			{Date: w[2].date, Time: w[2].time},
		})
	}
	return out
}

// violatesChain implements rule 2: bounded consecutive shift chain (<=2).
// It builds every chronologically-adjacent 3-band window that contains
// cand's band and rejects cand if adding it would leave the doctor present
// across all three bands of any such window.
func (c *Checker) violatesChain(p Placements, cand Candidate) bool {
	for _, window := range c.windowsContaining(cand.Date, cand.Time) {
		allPresent := true
		for _, b := range window {
			if b.date == cand.Date && b.time == cand.Time {
				continue // cand itself is being added; always counts present
			}
			if !c.present(p, cand.Doctor, b.date, b.time) {
				allPresent = false
				break
			}
		}
		if allPresent {
			return true
		}
	}
	return false
}

// windowsContaining returns every 3-band chronological window that includes
// (date, time). The chronological order of bands around a date d is:
// (d-1,DAY), (d-1,EVENING), (d,NIGHT), (d,DAY), (d,EVENING), (d+1,NIGHT),
// (d+1,DAY) — EVENING crosses midnight so it is adjacent to both the
// same-day DAY band and the next day's NIGHT/DAY bands.
func (c *Checker) windowsContaining(date model.Date, time model.ShiftTime) [][3]band {
	prev := date.Add(-1)
	next := date.Add(1)

	chrono := [][3]band{
		{{prev, model.DAY}, {prev, model.EVENING}, {date, model.NIGHT}},
		{{prev, model.EVENING}, {date, model.NIGHT}, {date, model.DAY}},
		{{date, model.NIGHT}, {date, model.DAY}, {date, model.EVENING}},
		{{date, model.DAY}, {date, model.EVENING}, {next, model.NIGHT}},
		{{date, model.EVENING}, {next, model.NIGHT}, {next, model.DAY}},
	}

	var out [][3]band
	for _, w := range chrono {
		for _, b := range w {
			if b.date == date && b.time == time {
				out = append(out, w)
				break
			}
		}
	}
	return out
}

// present reports whether doctor already occupies band (date, time),
// including the implicit weekday-DAY occupancy (spec.md §9): every doctor
// is implicitly present during DAY on every weekday, because the daytime
// hours are covered by a separate regular-hours rotation this core doesn't
// schedule. Options.ChainCountsWeekendImplicitDay extends that implicit
// occupancy to every weekend-equivalent date.
func (c *Checker) present(p Placements, doctor model.Doctor, date model.Date, time model.ShiftTime) bool {
	if time == model.DAY {
		period, known := c.periods[date]
		if !known {
			// Outside the scheduled range: treated as absent, no constraint.
			return false
		}
		if period == model.Weekday {
			return true
		}
		if period == model.Weekend && c.opts.ChainCountsWeekendImplicitDay {
			return true
		}
	}

	for _, post := range model.AllPosts {
		if doc, ok := p.DoctorAt(date, post, time); ok && doc == doctor {
			return true
		}
	}
	return false
}
