/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	asset registers for testing and demos. Each scenario demonstrates a
	specific slice of engine behavior.

AVAILABLE SCENARIOS:

	fresh-register:  Brand-new assets across all four methods, no history
	mid-life:        Assets part-way through their useful life
	mixed-outcomes:  A register that exercises every per-asset status

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Save the scenario's asset register
 3. Trigger runs manually via POST /api/depreciation/run

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "mid-life"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: LoadScenario, ListScenarios handlers
  - factory/profile.go: Depreciation profile definitions
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rdrealty/asset-engine/depreciation"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "fresh-register",
		Name:        "Fresh Register",
		Description: "Brand-new assets across all four depreciation methods",
	},
	{
		ID:          "mid-life",
		Name:        "Mid-Life Assets",
		Description: "Assets part-way through their useful life with posting history",
	},
	{
		ID:          "mixed-outcomes",
		Name:        "Mixed Outcomes",
		Description: "Register exercising success, fully-depreciated and missing-setup outcomes",
	},
}

func scenarioList() []ScenarioDTO {
	return scenarios
}

func scenarioAssets(id string) ([]depreciation.Asset, bool) {
	switch id {
	case "fresh-register":
		return freshRegister(), true
	case "mid-life":
		return midLifeRegister(), true
	case "mixed-outcomes":
		return mixedOutcomesRegister(), true
	default:
		return nil, false
	}
}

// =============================================================================
// ASSET BUILDERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(year int, month time.Month, d int) time.Time {
	return depreciation.NewDate(year, month, d)
}

func dayPtr(year int, month time.Month, d int) *time.Time {
	t := depreciation.NewDate(year, month, d)
	return &t
}

// freshRegister: four assets, one per method, none depreciated yet.
func freshRegister() []depreciation.Asset {
	return []depreciation.Asset{
		{
			ID:             "asset-sl-001",
			ItemCode:       "LAP-0001",
			Description:    "Engineering laptop",
			Category:       "IT Equipment",
			BusinessUnitID: "bu-hq",
			Active:         true,

			PurchasePrice:    dec("3600"),
			SalvageValue:     dec("0"),
			CurrentBookValue: dec("3600"),

			Method:              depreciation.StraightLine,
			MonthlyDepreciation: dec("100"),
			UsefulLifeMonths:    36,

			DepreciationStartDate: day(2025, time.January, 1),
		},
		{
			ID:             "asset-db-001",
			ItemCode:       "VAN-0001",
			Description:    "Delivery van",
			Category:       "Vehicles",
			BusinessUnitID: "bu-hq",
			Active:         true,

			PurchasePrice:    dec("48000"),
			SalvageValue:     dec("8000"),
			CurrentBookValue: dec("48000"),

			Method:            depreciation.DecliningBalance,
			AnnualRatePercent: dec("30"),
			UsefulLifeMonths:  60,

			DepreciationStartDate: day(2025, time.January, 1),
		},
		{
			ID:             "asset-uop-001",
			ItemCode:       "PRS-0001",
			Description:    "Industrial press",
			Category:       "Machinery",
			BusinessUnitID: "bu-plant",
			Active:         true,

			PurchasePrice:    dec("120000"),
			SalvageValue:     dec("20000"),
			CurrentBookValue: dec("120000"),

			Method:              depreciation.UnitsOfProduction,
			DepreciationPerUnit: dec("0.50"),
			TotalExpectedUnits:  dec("200000"),
			MonthlyDepreciation: dec("1000"),
			UsefulLifeMonths:    120,

			DepreciationStartDate: day(2025, time.January, 1),
		},
		{
			ID:             "asset-syd-001",
			ItemCode:       "SRV-0001",
			Description:    "Rack server",
			Category:       "IT Equipment",
			BusinessUnitID: "bu-hq",
			Active:         true,

			PurchasePrice:    dec("24000"),
			SalvageValue:     dec("0"),
			CurrentBookValue: dec("24000"),

			Method:              depreciation.SumOfYearsDigits,
			MonthlyDepreciation: dec("400"),
			UsefulLifeMonths:    60,

			DepreciationStartDate: day(2025, time.February, 1),
		},
	}
}

// midLifeRegister: assets with prior postings and due dates in the past.
func midLifeRegister() []depreciation.Asset {
	return []depreciation.Asset{
		{
			ID:             "asset-mid-001",
			ItemCode:       "FRK-0001",
			Description:    "Forklift",
			Category:       "Machinery",
			BusinessUnitID: "bu-plant",
			Active:         true,

			PurchasePrice:           dec("30000"),
			SalvageValue:            dec("3000"),
			CurrentBookValue:        dec("21000"),
			AccumulatedDepreciation: dec("9000"),

			Method:              depreciation.StraightLine,
			MonthlyDepreciation: dec("450"),
			UsefulLifeMonths:    60,

			DepreciationStartDate: day(2024, time.January, 1),
			LastDepreciationDate:  dayPtr(2025, time.August, 31),
			NextDepreciationDate:  dayPtr(2025, time.September, 1),
		},
		{
			ID:             "asset-mid-002",
			ItemCode:       "CNC-0001",
			Description:    "CNC mill",
			Category:       "Machinery",
			BusinessUnitID: "bu-plant",
			Active:         true,

			PurchasePrice:           dec("90000"),
			SalvageValue:            dec("10000"),
			CurrentBookValue:        dec("54000"),
			AccumulatedDepreciation: dec("36000"),

			Method:            depreciation.DecliningBalance,
			AnnualRatePercent: dec("25"),
			UsefulLifeMonths:  96,

			DepreciationStartDate: day(2023, time.June, 1),
			LastDepreciationDate:  dayPtr(2025, time.July, 31),
			NextDepreciationDate:  dayPtr(2025, time.August, 1),
		},
	}
}

// mixedOutcomesRegister: one healthy asset, one nearly done, one fully
// depreciated, one missing its method figures.
func mixedOutcomesRegister() []depreciation.Asset {
	return []depreciation.Asset{
		{
			ID:             "asset-mix-001",
			ItemCode:       "CPY-0001",
			Description:    "Office copier",
			Category:       "Office Equipment",
			BusinessUnitID: "bu-hq",
			Active:         true,

			PurchasePrice:           dec("9600"),
			SalvageValue:            dec("0"),
			CurrentBookValue:        dec("4800"),
			AccumulatedDepreciation: dec("4800"),

			Method:              depreciation.StraightLine,
			MonthlyDepreciation: dec("200"),
			UsefulLifeMonths:    48,

			DepreciationStartDate: day(2023, time.September, 1),
			LastDepreciationDate:  dayPtr(2025, time.August, 31),
			NextDepreciationDate:  dayPtr(2025, time.September, 1),
		},
		{
			ID:             "asset-mix-002",
			ItemCode:       "CHR-0099",
			Description:    "Conference chairs (lot)",
			Category:       "Furniture",
			BusinessUnitID: "bu-hq",
			Active:         true,

			// Final period: one month of depreciation left.
			PurchasePrice:           dec("6000"),
			SalvageValue:            dec("600"),
			CurrentBookValue:        dec("680"),
			AccumulatedDepreciation: dec("5320"),

			Method:              depreciation.StraightLine,
			MonthlyDepreciation: dec("90"),
			UsefulLifeMonths:    60,

			DepreciationStartDate: day(2020, time.October, 1),
			LastDepreciationDate:  dayPtr(2025, time.August, 31),
			NextDepreciationDate:  dayPtr(2025, time.September, 1),
		},
		{
			ID:             "asset-mix-003",
			ItemCode:       "PRJ-0012",
			Description:    "Projector",
			Category:       "IT Equipment",
			BusinessUnitID: "bu-hq",
			Active:         true,

			PurchasePrice:           dec("2400"),
			SalvageValue:            dec("0"),
			CurrentBookValue:        dec("0"),
			AccumulatedDepreciation: dec("2400"),

			Method:              depreciation.StraightLine,
			MonthlyDepreciation: dec("100"),
			UsefulLifeMonths:    24,

			DepreciationStartDate: day(2023, time.January, 1),
			LastDepreciationDate:  dayPtr(2024, time.December, 31),
			FullyDepreciated:      true,
		},
		{
			ID:             "asset-mix-004",
			ItemCode:       "TBL-0044",
			Description:    "Standing desks (lot)",
			Category:       "Furniture",
			BusinessUnitID: "bu-hq",
			Active:         true,

			// Method assigned but no monthly figure: NO_SETUP outcome.
			PurchasePrice:    dec("12000"),
			SalvageValue:     dec("0"),
			CurrentBookValue: dec("12000"),

			Method:           depreciation.StraightLine,
			UsefulLifeMonths: 60,

			DepreciationStartDate: day(2025, time.January, 1),
		},
	}
}
