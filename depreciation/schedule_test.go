package depreciation_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdrealty/asset-engine/depreciation"
)

func TestProjectSchedule_RunsToSalvageFloor(t *testing.T) {
	// GIVEN: 3600 at 100/month with no salvage
	// THEN: 36 projected periods, the last one reaching zero

	a := baseAsset()

	schedule, err := depreciation.ProjectSchedule(a, depreciation.Monthly, 0)
	require.NoError(t, err)

	require.Len(t, schedule, 36)
	first, last := schedule[0], schedule[len(schedule)-1]
	assert.True(t, first.Amount.Equal(decimal.NewFromInt(100)))
	assert.True(t, last.BookValueAfter.IsZero())
	assert.True(t, last.FullyDepreciated)
	for _, entry := range schedule[:len(schedule)-1] {
		assert.False(t, entry.FullyDepreciated)
	}
}

func TestProjectSchedule_HorizonCap(t *testing.T) {
	a := baseAsset()

	schedule, err := depreciation.ProjectSchedule(a, depreciation.Monthly, 12)
	require.NoError(t, err)

	require.Len(t, schedule, 12)
	assert.True(t, schedule[11].BookValueAfter.Equal(decimal.NewFromInt(2400)))
	assert.False(t, schedule[11].FullyDepreciated)
}

func TestProjectSchedule_StartsFromNextDueDate(t *testing.T) {
	a := baseAsset()
	a.CurrentBookValue = decimal.NewFromInt(3000)
	a.AccumulatedDepreciation = decimal.NewFromInt(600)
	a.LastDepreciationDate = datePtr(2025, time.June, 30)
	a.NextDepreciationDate = datePtr(2025, time.July, 1)

	schedule, err := depreciation.ProjectSchedule(a, depreciation.Monthly, 3)
	require.NoError(t, err)

	require.Len(t, schedule, 3)
	assert.Equal(t, depreciation.NewDate(2025, time.July, 1), schedule[0].Date)
	assert.Equal(t, depreciation.NewDate(2025, time.August, 1), schedule[1].Date)
}

func TestProjectSchedule_MonthEndStartDateAdvancesOneMonthPerPeriod(t *testing.T) {
	// GIVEN: An asset whose depreciation starts on January 31
	// THEN: Projected dates land in consecutive months, clamped to month
	//       length, instead of skipping February via day-of-month overflow

	a := baseAsset()
	a.DepreciationStartDate = depreciation.NewDate(2026, time.January, 31)

	schedule, err := depreciation.ProjectSchedule(a, depreciation.Monthly, 3)
	require.NoError(t, err)

	require.Len(t, schedule, 3)
	assert.Equal(t, depreciation.NewDate(2026, time.January, 31), schedule[0].Date)
	assert.Equal(t, depreciation.NewDate(2026, time.February, 28), schedule[1].Date)
	assert.Equal(t, depreciation.NewDate(2026, time.March, 28), schedule[2].Date)
}

func TestProjectSchedule_QuarterlyCadence(t *testing.T) {
	a := baseAsset()

	schedule, err := depreciation.ProjectSchedule(a, depreciation.Quarterly, 0)
	require.NoError(t, err)

	require.Len(t, schedule, 12)
	assert.True(t, schedule[0].Amount.Equal(decimal.NewFromInt(300)))
	assert.True(t, schedule[11].FullyDepreciated)
}

func TestProjectSchedule_FullyDepreciatedAssetIsEmpty(t *testing.T) {
	a := baseAsset()
	a.CurrentBookValue = decimal.Zero
	a.AccumulatedDepreciation = decimal.NewFromInt(3600)
	a.FullyDepreciated = true

	schedule, err := depreciation.ProjectSchedule(a, depreciation.Monthly, 0)
	require.NoError(t, err)

	assert.Empty(t, schedule)
}

func TestProjectSchedule_InvalidCadence(t *testing.T) {
	_, err := depreciation.ProjectSchedule(baseAsset(), depreciation.Cadence("DAILY"), 0)
	assert.ErrorIs(t, err, depreciation.ErrInvalidCadence)
}
