// Package model holds the small, closed data types shared by every core
// scheduling package: dates, posts, shift-time bands, and per-doctor quotas.
package model

import (
	"fmt"
	"time"
)

// MarshalJSON renders a Date as its "YYYY-MM-DD" string form.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// Date is a calendar day, normalized to midnight UTC so it can be used as a
// map key and compared with ==.
type Date struct {
	t time.Time
}

// NewDate builds a Date from a year/month/day triple.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateFromTime normalizes an arbitrary time.Time down to its calendar date.
func DateFromTime(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) Weekday() time.Weekday {
	return d.t.Weekday()
}

// Add returns the date offset by the given number of days (may be negative).
func (d Date) Add(days int) Date {
	return Date{t: d.t.AddDate(0, 0, days)}
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// String renders the date as YYYY-MM-DD.
func (d Date) String() string { return d.t.Format("2006-01-02") }

// Time returns the underlying normalized time.Time.
func (d Date) Time() time.Time { return d.t }

// Post is one of {ER, ward} — the functional role a doctor occupies during a slot.
type Post int

const (
	ER Post = iota
	Ward
)

func (p Post) String() string {
	switch p {
	case ER:
		return "ER"
	case Ward:
		return "ward"
	default:
		return fmt.Sprintf("Post(%d)", int(p))
	}
}

// AllPosts is the deterministic iteration order for posts used by the
// enumerator and the schedule printer.
var AllPosts = []Post{ER, Ward}

// MarshalJSON renders a Post by name rather than its underlying int.
func (p Post) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// ShiftTime is one of three disjoint 8-hour clock bands.
type ShiftTime int

const (
	DAY ShiftTime = iota
	EVENING
	NIGHT
)

func (s ShiftTime) String() string {
	switch s {
	case DAY:
		return "DAY"
	case EVENING:
		return "EVENING"
	case NIGHT:
		return "NIGHT"
	default:
		return fmt.Sprintf("ShiftTime(%d)", int(s))
	}
}

// AllShiftTimes is the deterministic iteration order used by the enumerator.
var AllShiftTimes = []ShiftTime{DAY, EVENING, NIGHT}

// MarshalJSON renders a ShiftTime by name rather than its underlying int.
func (s ShiftTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// PeriodKind is weekday vs weekend-equivalent (Sat/Sun or a configured holiday).
type PeriodKind int

const (
	Weekday PeriodKind = iota
	Weekend
)

func (p PeriodKind) String() string {
	switch p {
	case Weekday:
		return "weekday"
	case Weekend:
		return "weekend"
	default:
		return fmt.Sprintf("PeriodKind(%d)", int(p))
	}
}

// Doctor is an opaque per-doctor identifier.
type Doctor string

// NominalQuota is the human-readable per-doctor shift budget, in the units
// the operator thinks in ("shifts"), broken down by period and post.
type NominalQuota struct {
	WeekdayER   int
	WeekdayWard int
	WeekendER   int
	WeekendWard int
}

// PeriodPost identifies one (period, post) bucket for quota/slot bookkeeping.
type PeriodPost struct {
	Period PeriodKind
	Post   Post
}

func (pp PeriodPost) String() string {
	return fmt.Sprintf("%s/%s", pp.Period, pp.Post)
}

// EffectiveQuota is the exact per-(period, post) slot count a doctor must
// occupy, derived from NominalQuota by the fixed multipliers in quota.Adjust.
type EffectiveQuota map[PeriodPost]int

// AutopsyEntry marks that a doctor is committed elsewhere during a given
// (date, shift-time) band and must not be assigned a conflicting shift.
type AutopsyEntry struct {
	Date Date
	Time ShiftTime
}

// NYQuota constrains how many of a doctor's total slots fall in the NYE
// window (Dec-30-NIGHT through all of Dec 31) and the NY window (Jan 1-4).
type NYQuota struct {
	NYE int
	NY  int
}
