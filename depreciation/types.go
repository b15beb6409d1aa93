/*
Package depreciation provides the core fixed-asset depreciation engine.

PURPOSE:
  This package contains the types and algorithms for computing periodic
  depreciation over a register of fixed assets: deciding when an asset is
  due for a run, computing the period amount under the configured method,
  and applying the result to the asset's running book-value state.

KEY CONCEPTS IN THIS FILE (types.go):
  - Asset: The depreciable subset of an asset record (financial state + dates)
  - Method: Closed set of supported depreciation methods
  - Cadence: Period granularity at which depreciation is posted
  - Record: An immutable audit entry for one posted calculation

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors.
     Two-decimal rounding happens only at persistence/display boundaries.
  2. Immutability: Records are created once, never mutated or deleted.
  3. Purity: Eligibility, calculation and state application are pure
     functions of their inputs; persistence happens only at the batch
     boundary.
  4. Exhaustiveness: Method is a closed sum type so every per-method
     switch is compiler-checked when a method is added.

SEE ALSO:
  - eligibility.go: Decides whether an asset is due for a run
  - calculator.go:  Per-method period amount computation
  - ledger.go:      Applies a calculation to the asset's book-value state
  - store.go:       Persistence interfaces (repository + unit of work)
*/
package depreciation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type AssetID string
type BusinessUnitID string

// =============================================================================
// METHOD - Closed set of supported depreciation methods
// =============================================================================

// Method identifies how an asset's period depreciation amount is computed.
// It is deliberately opaque: the only values are the four exported ones
// below, so a switch over Method.Code() covers every case the engine can
// ever see. Adding a method means adding a value here and extending the
// calculator switch.
type Method struct {
	code string
}

var (
	StraightLine      = Method{"STRAIGHT_LINE"}
	DecliningBalance  = Method{"DECLINING_BALANCE"}
	UnitsOfProduction = Method{"UNITS_OF_PRODUCTION"}
	SumOfYearsDigits  = Method{"SUM_OF_YEARS_DIGITS"}
)

// Methods returns all supported methods in a stable order.
func Methods() []Method {
	return []Method{StraightLine, DecliningBalance, UnitsOfProduction, SumOfYearsDigits}
}

// ParseMethod converts a stored/wire method code into a Method.
func ParseMethod(code string) (Method, error) {
	for _, m := range Methods() {
		if m.code == code {
			return m, nil
		}
	}
	return Method{}, fmt.Errorf("%w: %q", ErrUnknownMethod, code)
}

func (m Method) Code() string   { return m.code }
func (m Method) String() string { return m.code }
func (m Method) IsZero() bool   { return m.code == "" }

// =============================================================================
// CADENCE - Period granularity for posting depreciation
// =============================================================================

type Cadence string

const (
	Monthly   Cadence = "MONTHLY"
	Quarterly Cadence = "QUARTERLY"
	Annually  Cadence = "ANNUALLY"
)

// Months returns the period length multiplier for the cadence.
func (c Cadence) Months() int {
	switch c {
	case Monthly:
		return 1
	case Quarterly:
		return 3
	case Annually:
		return 12
	default:
		return 0
	}
}

func (c Cadence) Valid() bool { return c.Months() > 0 }

// =============================================================================
// ASSET - Depreciable subset of an asset record
// =============================================================================

// Asset carries the financial state and lifecycle dates the engine reads
// and writes. The surrounding application owns everything else about an
// asset (location, custodian, purchase documents, ...).
type Asset struct {
	ID             AssetID
	ItemCode       string
	Description    string
	Category       string
	BusinessUnitID BusinessUnitID
	Active         bool

	// Financial state
	PurchasePrice           decimal.Decimal
	SalvageValue            decimal.Decimal
	CurrentBookValue        decimal.Decimal
	AccumulatedDepreciation decimal.Decimal

	// Method configuration
	Method              Method
	MonthlyDepreciation decimal.Decimal // straight-line monthly figure (and fallback for UOP/SYD)
	AnnualRatePercent   decimal.Decimal // declining balance
	DepreciationPerUnit decimal.Decimal // units of production
	TotalExpectedUnits  decimal.Decimal // units of production
	UsefulLifeMonths    int

	// Lifecycle dates (day granularity, UTC)
	DepreciationStartDate time.Time
	LastDepreciationDate  *time.Time
	NextDepreciationDate  *time.Time
	FullyDepreciated      bool
}

// HasDepreciationSetup reports whether the asset carries the figures its
// method needs. A false result is the NO_SETUP condition: recorded per
// asset, never a batch failure.
func (a Asset) HasDepreciationSetup() bool {
	switch a.Method.Code() {
	case StraightLine.Code():
		return a.MonthlyDepreciation.IsPositive()
	case DecliningBalance.Code():
		return a.AnnualRatePercent.IsPositive()
	case UnitsOfProduction.Code():
		// Per-unit figure preferred; the monthly figure serves as fallback
		// when no usage source is wired.
		return a.DepreciationPerUnit.IsPositive() || a.MonthlyDepreciation.IsPositive()
	case SumOfYearsDigits.Code():
		return a.MonthlyDepreciation.IsPositive()
	default:
		return false
	}
}

// CheckInvariants verifies the book-value invariants that must hold at all
// times: salvageValue <= currentBookValue <= purchasePrice, the
// accumulated/book-value identity, and the fully-depreciated terminal state.
func (a Asset) CheckInvariants() error {
	if a.CurrentBookValue.LessThan(a.SalvageValue) {
		return &InvariantError{
			AssetID: a.ID,
			Detail: fmt.Sprintf("book value %s below salvage value %s",
				a.CurrentBookValue, a.SalvageValue),
		}
	}
	if a.CurrentBookValue.GreaterThan(a.PurchasePrice) {
		return &InvariantError{
			AssetID: a.ID,
			Detail: fmt.Sprintf("book value %s above purchase price %s",
				a.CurrentBookValue, a.PurchasePrice),
		}
	}
	if !a.AccumulatedDepreciation.Equal(a.PurchasePrice.Sub(a.CurrentBookValue)) {
		return &InvariantError{
			AssetID: a.ID,
			Detail: fmt.Sprintf("accumulated %s != purchase price %s - book value %s",
				a.AccumulatedDepreciation, a.PurchasePrice, a.CurrentBookValue),
		}
	}
	if a.FullyDepreciated && a.NextDepreciationDate != nil {
		return &InvariantError{
			AssetID: a.ID,
			Detail:  "fully depreciated asset still carries a next depreciation date",
		}
	}
	return nil
}

// =============================================================================
// RECORD - Immutable audit entry for one posted calculation
// =============================================================================

// Record is created exactly once per successful per-asset calculation and
// is never updated or deleted by this engine. Corrections in the wider
// application happen through reversing entries, not edits.
type Record struct {
	ID               string
	AssetID          AssetID
	DepreciationDate time.Time
	PeriodStart      time.Time
	PeriodEnd        time.Time
	BookValueBefore  decimal.Decimal
	BookValueAfter   decimal.Decimal
	Amount           decimal.Decimal
	AccumulatedAfter decimal.Decimal
	Method           Method
	TriggeredBy      string
	Note             string
	CreatedAt        time.Time
}

// Round2 rounds a monetary value to two decimals. Only the persistence and
// display boundaries call this; intermediate math keeps full precision.
func Round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }
