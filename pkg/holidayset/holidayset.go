// Package holidayset builds one holiday-date set from whatever mix of
// sources an operator's config supplies: explicit dates, recurring RRULE
// patterns, and an imported ICS calendar.
package holidayset

import (
	"fmt"
	"os"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/thewbear/doembang-roster/pkg/core/model"
)

// Set is an immutable collection of holiday dates.
type Set struct {
	dates map[model.Date]struct{}
}

// Contains reports whether date is a configured holiday.
func (s *Set) Contains(date model.Date) bool {
	if s == nil {
		return false
	}
	_, ok := s.dates[date]
	return ok
}

// Len returns the number of distinct holiday dates in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.dates)
}

// Sources bundles every way a holiday set can be supplied. All non-empty
// fields are merged together; a date present from any source counts.
type Sources struct {
	// Explicit is a plain list of holiday dates.
	Explicit []model.Date

	// RRules are recurrence rule strings (e.g. "FREQ=YEARLY;BYMONTH=5;BYDAY=-1MO")
	// expanded across [RangeStart, RangeEnd].
	RRules []string

	// ICSPath, if non-empty, points to an .ics calendar file whose VEVENT
	// entries are all treated as holidays.
	ICSPath string

	// RangeStart/RangeEnd bound RRULE expansion. Both must be set if RRules
	// is non-empty.
	RangeStart model.Date
	RangeEnd   model.Date
}

// Build merges every configured source into one Set.
func Build(src Sources) (*Set, error) {
	dates := make(map[model.Date]struct{})

	for _, d := range src.Explicit {
		dates[d] = struct{}{}
	}

	if len(src.RRules) > 0 {
		if err := expandRRules(src, dates); err != nil {
			return nil, err
		}
	}

	if src.ICSPath != "" {
		if err := expandICS(src.ICSPath, dates); err != nil {
			return nil, err
		}
	}

	return &Set{dates: dates}, nil
}

func expandRRules(src Sources, dates map[model.Date]struct{}) error {
	rangeStart := src.RangeStart.Time()
	rangeEnd := src.RangeEnd.Time()

	for i, raw := range src.RRules {
		rule, err := rrule.StrToRRule(raw)
		if err != nil {
			return fmt.Errorf("invalid holiday rrule[%d] %q: %w", i, raw, err)
		}

		// DTSTART anchors the recurrence; a window starting well before the
		// target range lets yearly/monthly rules that predate it still match.
		rule.DTStart(rangeStart.AddDate(-2, 0, 0))

		for _, occurrence := range rule.Between(rangeStart, rangeEnd, true) {
			dates[model.DateFromTime(occurrence)] = struct{}{}
		}
	}
	return nil
}

func expandICS(path string, dates map[model.Date]struct{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open holiday calendar %s: %w", path, err)
	}
	defer f.Close()

	cal, err := ics.ParseCalendar(f)
	if err != nil {
		return fmt.Errorf("failed to parse holiday calendar %s: %w", path, err)
	}

	for _, event := range cal.Events() {
		start, err := event.GetStartAt()
		if err != nil {
			continue
		}
		dates[model.DateFromTime(start)] = struct{}{}
	}
	return nil
}

// empty returns a Set with no holidays, useful as a safe zero-value default.
func empty() *Set {
	return &Set{dates: map[model.Date]struct{}{}}
}

// Empty exposes empty() for callers (e.g. tests, blank-template generation)
// that need a holiday-free calendar.
func Empty() *Set { return empty() }
