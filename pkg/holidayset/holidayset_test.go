package holidayset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thewbear/doembang-roster/pkg/core/model"
)

func TestBuild_ExplicitDatesOnly(t *testing.T) {
	d := model.NewDate(2024, time.February, 19)
	set, err := Build(Sources{Explicit: []model.Date{d}})
	require.NoError(t, err)

	assert.True(t, set.Contains(d))
	assert.False(t, set.Contains(d.Add(1)))
	assert.Equal(t, 1, set.Len())
}

func TestBuild_RRuleExpandsAcrossRange(t *testing.T) {
	set, err := Build(Sources{
		RRules:     []string{"FREQ=YEARLY;BYMONTH=1;BYMONTHDAY=1"},
		RangeStart: model.NewDate(2024, time.January, 1),
		RangeEnd:   model.NewDate(2024, time.December, 31),
	})
	require.NoError(t, err)

	assert.True(t, set.Contains(model.NewDate(2024, time.January, 1)))
	assert.False(t, set.Contains(model.NewDate(2024, time.January, 2)))
}

func TestBuild_InvalidRRuleReturnsError(t *testing.T) {
	_, err := Build(Sources{
		RRules:     []string{"not-a-valid-rrule"},
		RangeStart: model.NewDate(2024, time.January, 1),
		RangeEnd:   model.NewDate(2024, time.December, 31),
	})
	assert.Error(t, err)
}

func TestBuild_MissingICSFileReturnsError(t *testing.T) {
	_, err := Build(Sources{ICSPath: "/no/such/file.ics"})
	assert.Error(t, err)
}

func TestEmpty_ContainsNothing(t *testing.T) {
	set := Empty()
	assert.False(t, set.Contains(model.NewDate(2024, time.January, 1)))
	assert.Equal(t, 0, set.Len())
}

func TestNilSet_ContainsNothing(t *testing.T) {
	var set *Set
	assert.False(t, set.Contains(model.NewDate(2024, time.January, 1)))
	assert.Equal(t, 0, set.Len())
}
