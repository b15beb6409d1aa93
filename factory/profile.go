/*
Package factory provides JSON to asset depreciation setup conversion.

PURPOSE:
  Converts JSON depreciation profiles into populated asset financial
  fields. This enables depreciation configuration without code changes -
  accounting can define profiles in JSON, and the factory derives the
  figures the engine needs (including the straight-line monthly amount
  from useful life and salvage value).

JSON SCHEMA:
  {
    "method": "STRAIGHT_LINE",
    "useful_life_years": 5,
    "salvage_value": "5000",
    "annual_rate_percent": "20",
    "depreciation_per_unit": "0.05",
    "total_expected_units": "200000",
    "monthly_depreciation": "1000"
  }

All monetary fields are decimal strings; "monthly_depreciation" overrides
the derived straight-line figure when present.

USAGE:
  profile, err := factory.ParseProfile(jsonStr)
  err = factory.ApplyProfile(&asset, profile)
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rdrealty/asset-engine/depreciation"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ProfileJSON is the JSON representation of a depreciation profile.
type ProfileJSON struct {
	Method              string `json:"method"`
	UsefulLifeYears     int    `json:"useful_life_years,omitempty"`
	UsefulLifeMonths    int    `json:"useful_life_months,omitempty"`
	SalvageValue        string `json:"salvage_value,omitempty"`
	AnnualRatePercent   string `json:"annual_rate_percent,omitempty"`
	DepreciationPerUnit string `json:"depreciation_per_unit,omitempty"`
	TotalExpectedUnits  string `json:"total_expected_units,omitempty"`
	MonthlyDepreciation string `json:"monthly_depreciation,omitempty"` // overrides the derived figure
}

// ParseProfile parses a JSON string into a ProfileJSON.
func ParseProfile(jsonStr string) (ProfileJSON, error) {
	var p ProfileJSON
	if err := json.Unmarshal([]byte(jsonStr), &p); err != nil {
		return p, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	return p, nil
}

// =============================================================================
// PROFILE APPLICATION
// =============================================================================

// ApplyProfile populates the asset's depreciation setup from a profile.
// The asset must already carry its purchase price; the straight-line
// monthly figure is derived as (price - salvage) / life months unless the
// profile overrides it.
func ApplyProfile(a *depreciation.Asset, p ProfileJSON) error {
	method, err := depreciation.ParseMethod(p.Method)
	if err != nil {
		return err
	}
	a.Method = method

	salvage, err := parseOptionalDecimal(p.SalvageValue, "salvage_value")
	if err != nil {
		return err
	}
	a.SalvageValue = salvage

	if salvage.GreaterThan(a.PurchasePrice) {
		return fmt.Errorf("salvage value %s exceeds purchase price %s", salvage, a.PurchasePrice)
	}

	lifeMonths := p.UsefulLifeMonths
	if lifeMonths == 0 {
		lifeMonths = p.UsefulLifeYears * 12
	}
	a.UsefulLifeMonths = lifeMonths

	if a.AnnualRatePercent, err = parseOptionalDecimal(p.AnnualRatePercent, "annual_rate_percent"); err != nil {
		return err
	}
	if a.DepreciationPerUnit, err = parseOptionalDecimal(p.DepreciationPerUnit, "depreciation_per_unit"); err != nil {
		return err
	}
	if a.TotalExpectedUnits, err = parseOptionalDecimal(p.TotalExpectedUnits, "total_expected_units"); err != nil {
		return err
	}

	monthly, err := parseOptionalDecimal(p.MonthlyDepreciation, "monthly_depreciation")
	if err != nil {
		return err
	}
	if monthly.IsZero() && lifeMonths > 0 {
		depreciable := a.PurchasePrice.Sub(salvage)
		monthly = depreciable.Div(decimal.NewFromInt(int64(lifeMonths)))
	}
	a.MonthlyDepreciation = monthly

	// Fresh setup: book value starts at purchase price.
	if a.CurrentBookValue.IsZero() && a.AccumulatedDepreciation.IsZero() {
		a.CurrentBookValue = a.PurchasePrice
	}

	if !a.HasDepreciationSetup() {
		return &depreciation.NoSetupError{AssetID: a.ID, Method: method}
	}
	return nil
}

func parseOptionalDecimal(v, field string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, v, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", field)
	}
	return d, nil
}
