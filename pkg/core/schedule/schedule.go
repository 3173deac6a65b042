// Package schedule holds the finished (or in-progress) assignment of doctors
// to slots, in the canonical ordering used for both solver bookkeeping and
// final CLI/export output.
package schedule

import (
	"encoding/json"
	"sort"

	"github.com/thewbear/doembang-roster/pkg/core/model"
)

// Entry is one resolved (slot, doctor) pairing.
type Entry struct {
	Date   model.Date      `json:"date"`
	Post   model.Post      `json:"post"`
	Time   model.ShiftTime `json:"time"`
	Doctor model.Doctor    `json:"doctor"`
}

// band identifies one (date, post, time) occupancy cell.
type band struct {
	date model.Date
	post model.Post
	time model.ShiftTime
}

// Schedule is a mutable grid of slot assignments, keyed for O(1) lookup by
// both the solver's incremental placement and the constraint checker's
// Placements interface.
type Schedule struct {
	cells map[band]model.Doctor
}

// New returns an empty Schedule.
func New() *Schedule {
	return &Schedule{cells: make(map[band]model.Doctor)}
}

// Place assigns doctor to (date, post, time), overwriting any prior
// assignment in that cell.
func (s *Schedule) Place(date model.Date, post model.Post, time model.ShiftTime, doctor model.Doctor) {
	s.cells[band{date, post, time}] = doctor
}

// Unplace removes whatever assignment occupies (date, post, time), if any.
// Used by the annealing solver to undo a rejected move.
func (s *Schedule) Unplace(date model.Date, post model.Post, time model.ShiftTime) {
	delete(s.cells, band{date, post, time})
}

// DoctorAt implements constraint.Placements.
func (s *Schedule) DoctorAt(date model.Date, post model.Post, time model.ShiftTime) (model.Doctor, bool) {
	doc, ok := s.cells[band{date, post, time}]
	return doc, ok
}

// Len returns the number of occupied cells.
func (s *Schedule) Len() int {
	return len(s.cells)
}

// Entries returns every assignment in canonical order: chronological by
// date, then Post (ER before ward), then ShiftTime (DAY, EVENING, NIGHT).
// This ordering is what makes two solver runs over the same input produce
// byte-identical output.
func (s *Schedule) Entries() []Entry {
	entries := make([]Entry, 0, len(s.cells))
	for b, doc := range s.cells {
		entries = append(entries, Entry{Date: b.date, Post: b.post, Time: b.time, Doctor: doc})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		if a.Post != b.Post {
			return a.Post < b.Post
		}
		return a.Time < b.Time
	})
	return entries
}

// CountByPeriodPost tallies how many occupied cells fall into each
// (period, post) bucket, for quota verification. periods must map every
// date referenced by a placed cell to its PeriodKind.
func (s *Schedule) CountByPeriodPost(periods map[model.Date]model.PeriodKind) map[model.PeriodPost]int {
	counts := make(map[model.PeriodPost]int)
	for b := range s.cells {
		counts[model.PeriodPost{Period: periods[b.date], Post: b.post}]++
	}
	return counts
}

// CountByDoctorPeriodPost tallies how many slots each doctor occupies within
// each (period, post) bucket, for per-doctor effective-quota verification.
func (s *Schedule) CountByDoctorPeriodPost(periods map[model.Date]model.PeriodKind) map[model.Doctor]map[model.PeriodPost]int {
	counts := make(map[model.Doctor]map[model.PeriodPost]int)
	for b, doc := range s.cells {
		pp := model.PeriodPost{Period: periods[b.date], Post: b.post}
		if counts[doc] == nil {
			counts[doc] = make(map[model.PeriodPost]int)
		}
		counts[doc][pp]++
	}
	return counts
}

// MarshalJSON renders the schedule as its canonically ordered entry list, so
// the CLI can emit deterministic output for a given input and seed.
func (s *Schedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Entries())
}
