/*
Package batch runs depreciation over a business unit's asset register.

PURPOSE:
  The orchestrator selects eligible assets, invokes the calculator and the
  book-value updater per asset, isolates per-asset failures, and - outside
  dry-run mode - persists one depreciation record, one asset update and one
  audit entry per successful asset as a single atomic transaction.

KEY TYPES IN THIS FILE:
  - Result: the ephemeral outcome of one batch run (counts, details, summary)
  - Detail: the per-asset outcome (SUCCESS / FAILED / FULLY_DEPRECIATED / NO_SETUP)
  - Actor:  who triggered the run, for audit attribution

A Result is never persisted as its own entity by this package; the caller
may log or store a run summary externally (the API layer does).
*/
package batch

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rdrealty/asset-engine/depreciation"
)

// =============================================================================
// PER-ASSET OUTCOME
// =============================================================================

type Status string

const (
	StatusSuccess          Status = "SUCCESS"
	StatusFailed           Status = "FAILED"
	StatusFullyDepreciated Status = "FULLY_DEPRECIATED"
	StatusNoSetup          Status = "NO_SETUP"
)

// Detail is one asset's outcome in a run. Ineligible assets are SUCCESS
// with amount 0 and the ineligibility reason - not failures.
type Detail struct {
	AssetID  depreciation.AssetID
	ItemCode string
	Category string
	Method   depreciation.Method

	Status         Status
	Amount         decimal.Decimal
	BookValueAfter decimal.Decimal
	Reason         string // eligibility or zero-amount explanation
	Error          string // set only for FAILED
}

// =============================================================================
// RUN RESULT
// =============================================================================

// Result aggregates one batch run. Ephemeral: exists for the duration of
// one orchestrator invocation.
type Result struct {
	BusinessUnitID  depreciation.BusinessUnitID
	CalculationDate time.Time
	Cadence         depreciation.Cadence
	DryRun          bool

	TotalAssets      int
	Successful       int
	Failed           int
	FullyDepreciated int
	NoSetup          int

	TotalDepreciation decimal.Decimal
	Details           []Detail
	Summary           Summary
}

// =============================================================================
// ACTOR - Audit attribution
// =============================================================================

// Actor identifies who or what triggered a run. Role validation itself
// belongs to the caller (the API layer); the orchestrator only requires a
// non-empty identity for committed runs.
type Actor struct {
	ID   string
	Role string
}

// RunInput is the full request for one batch run.
type RunInput struct {
	BusinessUnitID  depreciation.BusinessUnitID
	CalculationDate time.Time // zero value = today (UTC)
	Cadence         depreciation.Cadence
	Filter          depreciation.AssetFilter
	DryRun          bool
	Actor           Actor
	Note            string // free text carried onto each depreciation record
}
