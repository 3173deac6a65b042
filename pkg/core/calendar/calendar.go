// Package calendar classifies calendar dates as weekday or weekend-equivalent.
package calendar

import (
	"time"

	"github.com/thewbear/doembang-roster/pkg/core/model"
	"github.com/thewbear/doembang-roster/pkg/holidayset"
)

// Period returns whether date is a weekday or a weekend-equivalent date.
// A date is weekend iff it falls on Saturday/Sunday OR is present in the
// supplied holiday set. The classifier does not interpret holidays beyond
// membership.
func Period(date model.Date, holidays *holidayset.Set) model.PeriodKind {
	wd := date.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return model.Weekend
	}
	if holidays != nil && holidays.Contains(date) {
		return model.Weekend
	}
	return model.Weekday
}
