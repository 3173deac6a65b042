package quota

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thewbear/doembang-roster/pkg/core/model"
)

func TestAdjust_Idempotence_EmptyInput(t *testing.T) {
	adj, err := Adjust(map[model.Doctor]model.NominalQuota{})
	require.NoError(t, err)
	assert.Empty(t, adj.Effective())
	assert.Empty(t, adj.AggregateByPeriodPost())
}

func TestAdjust_AppliesFixedMultipliers(t *testing.T) {
	nominal := map[model.Doctor]model.NominalQuota{
		"dr-a": {WeekdayER: 2, WeekdayWard: 1, WeekendER: 3, WeekendWard: 3},
	}

	adj, err := Adjust(nominal)
	require.NoError(t, err)

	got := adj.Effective()["dr-a"]
	assert.Equal(t, 4, got[model.PeriodPost{Period: model.Weekday, Post: model.ER}])
	assert.Equal(t, 1, got[model.PeriodPost{Period: model.Weekday, Post: model.Ward}])
	assert.Equal(t, 9, got[model.PeriodPost{Period: model.Weekend, Post: model.ER}])
	assert.Equal(t, 9, got[model.PeriodPost{Period: model.Weekend, Post: model.Ward}])
}

func TestAdjust_NegativeFieldIsInvalidInput(t *testing.T) {
	nominal := map[model.Doctor]model.NominalQuota{
		"dr-a": {WeekdayER: -1},
	}

	_, err := Adjust(nominal)
	require.Error(t, err)
}

func TestAdjust_DoctorsWithoutQuotaAreOmitted(t *testing.T) {
	nominal := map[model.Doctor]model.NominalQuota{
		"dr-a": {WeekdayER: 1},
	}

	adj, err := Adjust(nominal)
	require.NoError(t, err)

	_, exists := adj.Effective()["dr-b"]
	assert.False(t, exists)
}

func TestAdjust_AggregateSumsAcrossDoctors(t *testing.T) {
	nominal := map[model.Doctor]model.NominalQuota{
		"dr-a": {WeekdayER: 1},
		"dr-b": {WeekdayER: 2},
	}

	adj, err := Adjust(nominal)
	require.NoError(t, err)

	totals := adj.AggregateByPeriodPost()
	assert.Equal(t, 6, totals[model.PeriodPost{Period: model.Weekday, Post: model.ER}])
}

func TestAdjuster_Nominal_ReturnsRawInput(t *testing.T) {
	nominal := map[model.Doctor]model.NominalQuota{
		"dr-a": {WeekdayER: 2, WeekdayWard: 1},
	}

	adj, err := Adjust(nominal)
	require.NoError(t, err)

	nom, ok := adj.Nominal("dr-a")
	require.True(t, ok)
	assert.Equal(t, 2, nom.WeekdayER)

	_, ok = adj.Nominal("dr-z")
	assert.False(t, ok)
}
