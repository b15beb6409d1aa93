package depreciation_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdrealty/asset-engine/depreciation"
)

// =============================================================================
// APPLY - Book value state transitions
// =============================================================================

func TestApply_UpdatesBookValueState(t *testing.T) {
	// GIVEN: A calculated result for one month of straight-line
	// WHEN: Applying it
	// THEN: Book value, accumulated, last/next dates all move together

	a := baseAsset()
	calc := &depreciation.Calculator{}
	calcDate := depreciation.NewDate(2025, time.September, 1)

	res, err := calc.Calculate(a, calcDate, depreciation.Monthly)
	require.NoError(t, err)

	updated, err := depreciation.Apply(a, res, calcDate)
	require.NoError(t, err)

	assert.True(t, updated.CurrentBookValue.Equal(decimal.NewFromInt(3500)))
	assert.True(t, updated.AccumulatedDepreciation.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, updated.LastDepreciationDate)
	assert.Equal(t, calcDate, *updated.LastDepreciationDate)
	require.NotNil(t, updated.NextDepreciationDate)
	assert.Equal(t, depreciation.NewDate(2025, time.October, 1), *updated.NextDepreciationDate)
	assert.False(t, updated.FullyDepreciated)

	// The input asset is untouched.
	assert.True(t, a.CurrentBookValue.Equal(decimal.NewFromInt(3600)))
	assert.Nil(t, a.LastDepreciationDate)
}

func TestApply_FullyDepreciatedClearsNextDueDate(t *testing.T) {
	a := baseAsset()
	a.CurrentBookValue = decimal.NewFromInt(100)
	a.AccumulatedDepreciation = decimal.NewFromInt(3500)
	calc := &depreciation.Calculator{}
	calcDate := depreciation.NewDate(2025, time.September, 1)

	res, err := calc.Calculate(a, calcDate, depreciation.Monthly)
	require.NoError(t, err)
	require.True(t, res.FullyDepreciated)

	updated, err := depreciation.Apply(a, res, calcDate)
	require.NoError(t, err)

	assert.True(t, updated.FullyDepreciated)
	assert.Nil(t, updated.NextDepreciationDate)
	assert.True(t, updated.CurrentBookValue.Equal(decimal.Zero))
}

func TestApply_RejectsBookValueBelowSalvage(t *testing.T) {
	// A result that undershoots the salvage floor means the calculator and
	// updater disagree; that is corruption, not a posting.

	a := baseAsset()
	a.SalvageValue = decimal.NewFromInt(200)
	a.CurrentBookValue = decimal.NewFromInt(300)
	a.AccumulatedDepreciation = decimal.NewFromInt(3300)

	res := &depreciation.CalcResult{
		BookValueStart: a.CurrentBookValue,
		Amount:         decimal.NewFromInt(150),
		BookValueEnd:   decimal.NewFromInt(150),
		NewAccumulated: decimal.NewFromInt(3450),
	}

	_, err := depreciation.Apply(a, res, depreciation.NewDate(2025, time.September, 1))

	require.Error(t, err)
	assert.True(t, depreciation.IsInvariantViolation(err))
}

func TestApply_RejectsDecreasingAccumulated(t *testing.T) {
	a := baseAsset()
	a.CurrentBookValue = decimal.NewFromInt(3000)
	a.AccumulatedDepreciation = decimal.NewFromInt(600)

	res := &depreciation.CalcResult{
		BookValueStart: a.CurrentBookValue,
		Amount:         decimal.Zero,
		BookValueEnd:   decimal.NewFromInt(3100),
		NewAccumulated: decimal.NewFromInt(500),
	}

	_, err := depreciation.Apply(a, res, depreciation.NewDate(2025, time.September, 1))

	require.Error(t, err)
	assert.True(t, depreciation.IsInvariantViolation(err))
}

// =============================================================================
// INVARIANT CHECKS
// =============================================================================

func TestCheckInvariants_AccumulatedIdentity(t *testing.T) {
	a := baseAsset()
	a.CurrentBookValue = decimal.NewFromInt(3000)
	a.AccumulatedDepreciation = decimal.NewFromInt(500) // should be 600

	err := a.CheckInvariants()

	require.Error(t, err)
	assert.True(t, depreciation.IsInvariantViolation(err))
}

func TestCheckInvariants_FullyDepreciatedWithNextDate(t *testing.T) {
	a := baseAsset()
	a.CurrentBookValue = decimal.Zero
	a.AccumulatedDepreciation = decimal.NewFromInt(3600)
	a.FullyDepreciated = true
	a.NextDepreciationDate = datePtr(2025, time.October, 1)

	err := a.CheckInvariants()

	require.Error(t, err)
	assert.True(t, depreciation.IsInvariantViolation(err))
}

func TestCheckInvariants_ValidAsset(t *testing.T) {
	assert.NoError(t, baseAsset().CheckInvariants())
}
