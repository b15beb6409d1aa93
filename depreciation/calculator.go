/*
calculator.go - Per-method depreciation amount computation

PURPOSE:
  Given an asset's financial state and a calculation date, computes the
  depreciation amount for one period under the asset's method, the period
  boundaries, and the resulting book-value state. The caller has already
  confirmed eligibility; the calculator only validates setup and state.

METHODS:
  STRAIGHT_LINE:       monthlyDepreciation x period months
  DECLINING_BALANCE:   currentBookValue x (annualRate/100/12) x period months
  UNITS_OF_PRODUCTION: unitsUsed x depreciationPerUnit, falling back to the
                       monthly figure when no usage source is wired. The
                       fallback is a known approximation, not real unit
                       tracking.
  SUM_OF_YEARS_DIGITS: the monthly figure. This is a simplification carried
                       over from the system this engine replaces, which never
                       implemented the true SYD curve; the closed Method type
                       keeps the real formula a compiler-checked addition.

CLAMP:
  amount = clamp(raw, 0, currentBookValue - salvageValue). Book value never
  crosses the salvage floor, and a method can never produce a negative
  posting.
*/
package depreciation

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// CalcResult is the outcome of one period calculation. It is a pure value;
// nothing is persisted until the batch orchestrator commits.
type CalcResult struct {
	PeriodStart      time.Time
	PeriodEnd        time.Time
	BookValueStart   decimal.Decimal
	Amount           decimal.Decimal
	BookValueEnd     decimal.Decimal
	NewAccumulated   decimal.Decimal
	FullyDepreciated bool
	NextDueDate      *time.Time // nil once fully depreciated
}

// UsageFn reports the units an asset consumed in a period. The second
// return reports whether usage data was available; false triggers the
// monthly-figure fallback for units-of-production assets.
type UsageFn func(id AssetID, periodStart, periodEnd time.Time) (decimal.Decimal, bool)

// Calculator computes period depreciation amounts. The zero value is usable;
// Usage is optional and only consulted for units-of-production assets.
type Calculator struct {
	Usage UsageFn
}

// Calculate computes the depreciation for exactly one period.
//
// Preconditions: eligibility was already confirmed by the caller. Returns a
// NoSetupError when the method's rate/amount figure is zero or absent, and
// an InvariantError when the asset state is already corrupt.
func (c *Calculator) Calculate(a Asset, calculationDate time.Time, cadence Cadence) (*CalcResult, error) {
	if !cadence.Valid() {
		return nil, ErrInvalidCadence
	}
	if err := a.CheckInvariants(); err != nil {
		return nil, err
	}
	if !a.HasDepreciationSetup() {
		return nil, &NoSetupError{AssetID: a.ID, Method: a.Method}
	}

	calculationDate = Date(calculationDate)
	multiplier := cadence.Months()

	periodStart := Date(a.DepreciationStartDate)
	if a.LastDepreciationDate != nil {
		periodStart = StartOfNextMonth(*a.LastDepreciationDate)
	}
	// Month arithmetic anchors on the first of the month: AddDate on a day
	// 29-31 date overflows past a shorter month (Jan 31 + 1 month = Mar 3).
	dueMonth := StartOfMonth(calculationDate).AddDate(0, multiplier, 0)
	periodEnd := EndOfMonth(dueMonth)

	raw, err := c.rawAmount(a, periodStart, periodEnd, multiplier)
	if err != nil {
		return nil, err
	}

	// Clamp to [0, headroom above the salvage floor].
	headroom := a.CurrentBookValue.Sub(a.SalvageValue)
	amount := raw
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	if amount.GreaterThan(headroom) {
		amount = headroom
	}

	bookValueEnd := a.CurrentBookValue.Sub(amount)
	fully := !bookValueEnd.GreaterThan(a.SalvageValue)

	res := &CalcResult{
		PeriodStart:      periodStart,
		PeriodEnd:        periodEnd,
		BookValueStart:   a.CurrentBookValue,
		Amount:           amount,
		BookValueEnd:     bookValueEnd,
		NewAccumulated:   a.AccumulatedDepreciation.Add(amount),
		FullyDepreciated: fully,
	}
	if !fully {
		next := dueMonth
		res.NextDueDate = &next
	}
	return res, nil
}

func (c *Calculator) rawAmount(a Asset, periodStart, periodEnd time.Time, multiplier int) (decimal.Decimal, error) {
	months := decimal.NewFromInt(int64(multiplier))

	switch a.Method.Code() {
	case StraightLine.Code():
		return a.MonthlyDepreciation.Mul(months), nil

	case DecliningBalance.Code():
		monthlyRate := a.AnnualRatePercent.Div(hundred).Div(twelve)
		return a.CurrentBookValue.Mul(monthlyRate).Mul(months), nil

	case UnitsOfProduction.Code():
		if c.Usage != nil && a.DepreciationPerUnit.IsPositive() {
			if units, ok := c.Usage(a.ID, periodStart, periodEnd); ok {
				return units.Mul(a.DepreciationPerUnit), nil
			}
		}
		// No usage source: approximate with the monthly figure.
		return a.MonthlyDepreciation.Mul(months), nil

	case SumOfYearsDigits.Code():
		// Simplified to the monthly figure; see the package comment.
		return a.MonthlyDepreciation.Mul(months), nil

	default:
		return decimal.Zero, &NoSetupError{AssetID: a.ID, Method: a.Method}
	}
}
