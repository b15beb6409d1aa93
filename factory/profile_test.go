/*
profile_test.go - Tests for JSON profile parsing and application

Tests for:
- Parsing profile JSON
- Deriving the straight-line monthly figure from life and salvage
- Per-method setup validation
- Rejection of malformed figures
*/
package factory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdrealty/asset-engine/depreciation"
)

func newAsset(price string) depreciation.Asset {
	return depreciation.Asset{
		ID:                    "asset-1",
		ItemCode:              "LAP-0001",
		BusinessUnitID:        "bu-hq",
		Active:                true,
		PurchasePrice:         decimal.RequireFromString(price),
		DepreciationStartDate: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// =============================================================================
// PARSING
// =============================================================================

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile(`{"method":"STRAIGHT_LINE","useful_life_years":5,"salvage_value":"500"}`)

	require.NoError(t, err)
	assert.Equal(t, "STRAIGHT_LINE", p.Method)
	assert.Equal(t, 5, p.UsefulLifeYears)
	assert.Equal(t, "500", p.SalvageValue)
}

func TestParseProfile_MalformedJSON(t *testing.T) {
	_, err := ParseProfile(`{"method":`)

	assert.Error(t, err)
}

// =============================================================================
// STRAIGHT LINE
// =============================================================================

func TestApplyProfile_DerivesMonthlyFigure(t *testing.T) {
	// GIVEN: 3600 price, 3-year life, no salvage
	// THEN: Monthly figure is 100 and book value starts at cost

	asset := newAsset("3600")

	err := ApplyProfile(&asset, ProfileJSON{Method: "STRAIGHT_LINE", UsefulLifeYears: 3})

	require.NoError(t, err)
	assert.True(t, asset.MonthlyDepreciation.Equal(decimal.RequireFromString("100")))
	assert.Equal(t, 36, asset.UsefulLifeMonths)
	assert.True(t, asset.CurrentBookValue.Equal(asset.PurchasePrice))
}

func TestApplyProfile_SalvageReducesDepreciableBase(t *testing.T) {
	asset := newAsset("3600")

	err := ApplyProfile(&asset, ProfileJSON{
		Method:          "STRAIGHT_LINE",
		UsefulLifeYears: 3,
		SalvageValue:    "600",
	})

	require.NoError(t, err)
	// (3600 - 600) / 36
	assert.True(t, asset.MonthlyDepreciation.Equal(decimal.RequireFromString("83.3333333333333333")),
		"got %s", asset.MonthlyDepreciation)
}

func TestApplyProfile_ExplicitMonthlyOverridesDerived(t *testing.T) {
	asset := newAsset("3600")

	err := ApplyProfile(&asset, ProfileJSON{
		Method:              "STRAIGHT_LINE",
		UsefulLifeYears:     3,
		MonthlyDepreciation: "150",
	})

	require.NoError(t, err)
	assert.True(t, asset.MonthlyDepreciation.Equal(decimal.RequireFromString("150")))
}

func TestApplyProfile_MonthsTakePrecedenceOverYears(t *testing.T) {
	asset := newAsset("2400")

	err := ApplyProfile(&asset, ProfileJSON{
		Method:           "STRAIGHT_LINE",
		UsefulLifeYears:  5,
		UsefulLifeMonths: 24,
	})

	require.NoError(t, err)
	assert.Equal(t, 24, asset.UsefulLifeMonths)
	assert.True(t, asset.MonthlyDepreciation.Equal(decimal.RequireFromString("100")))
}

func TestApplyProfile_PreservesExistingBookValue(t *testing.T) {
	// GIVEN: A mid-life asset being reconfigured
	// THEN: Its book value is not reset to the purchase price

	asset := newAsset("3600")
	asset.CurrentBookValue = decimal.RequireFromString("2000")
	asset.AccumulatedDepreciation = decimal.RequireFromString("1600")

	err := ApplyProfile(&asset, ProfileJSON{Method: "STRAIGHT_LINE", UsefulLifeYears: 3})

	require.NoError(t, err)
	assert.True(t, asset.CurrentBookValue.Equal(decimal.RequireFromString("2000")))
}

// =============================================================================
// OTHER METHODS
// =============================================================================

func TestApplyProfile_DecliningBalance(t *testing.T) {
	asset := newAsset("48000")

	err := ApplyProfile(&asset, ProfileJSON{
		Method:            "DECLINING_BALANCE",
		AnnualRatePercent: "30",
	})

	require.NoError(t, err)
	assert.True(t, asset.AnnualRatePercent.Equal(decimal.RequireFromString("30")))
	assert.True(t, asset.HasDepreciationSetup())
}

func TestApplyProfile_UnitsOfProduction(t *testing.T) {
	asset := newAsset("120000")

	err := ApplyProfile(&asset, ProfileJSON{
		Method:              "UNITS_OF_PRODUCTION",
		DepreciationPerUnit: "0.50",
		TotalExpectedUnits:  "240000",
	})

	require.NoError(t, err)
	assert.True(t, asset.DepreciationPerUnit.Equal(decimal.RequireFromString("0.50")))
	assert.True(t, asset.HasDepreciationSetup())
}

// =============================================================================
// REJECTION
// =============================================================================

func TestApplyProfile_UnknownMethod(t *testing.T) {
	asset := newAsset("3600")

	err := ApplyProfile(&asset, ProfileJSON{Method: "MAGIC"})

	assert.Error(t, err)
}

func TestApplyProfile_SalvageExceedsPrice(t *testing.T) {
	asset := newAsset("3600")

	err := ApplyProfile(&asset, ProfileJSON{
		Method:          "STRAIGHT_LINE",
		UsefulLifeYears: 3,
		SalvageValue:    "4000",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds purchase price")
}

func TestApplyProfile_NegativeFigureRejected(t *testing.T) {
	asset := newAsset("3600")

	err := ApplyProfile(&asset, ProfileJSON{
		Method:              "STRAIGHT_LINE",
		UsefulLifeYears:     3,
		MonthlyDepreciation: "-100",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")
}

func TestApplyProfile_MissingSetupIsNoSetupError(t *testing.T) {
	// Declining balance with no rate leaves the asset without usable figures.
	asset := newAsset("48000")

	err := ApplyProfile(&asset, ProfileJSON{Method: "DECLINING_BALANCE"})

	require.Error(t, err)
	assert.True(t, depreciation.IsNoSetup(err))
}
