/*
eligibility.go - Period eligibility evaluation

PURPOSE:
  Decides whether an asset is due for a depreciation run on a given date.
  Pure function of its inputs; no side effects.

RULES (evaluated in order):
  1. Start date not reached        -> not eligible
  2. Already fully depreciated     -> not eligible
  3. No prior run                  -> eligible ("first calculation")
  4. >= 1 whole cadence unit since the last run -> eligible
  5. Explicit next-due date reached            -> eligible

Rules 4 and 5 are a permissive OR: either one triggers eligibility. For
hand-edited records they can disagree; the engine keeps the OR semantics
rather than picking a winner.
*/
package depreciation

import "time"

// Eligibility reason strings. These surface verbatim in run results, so
// they are stable values rather than free text.
const (
	ReasonStartNotReached    = "start date not reached"
	ReasonFullyDepreciated   = "already fully depreciated"
	ReasonFirstCalculation   = "first calculation"
	ReasonCadenceElapsed     = "cadence period elapsed"
	ReasonNextDueDateReached = "next depreciation date reached"
	ReasonNotDueYet          = "not due yet"
)

// Eligibility is the outcome of an eligibility check.
type Eligibility struct {
	Eligible bool
	Reason   string
}

// IsEligible decides whether the asset is due for depreciation on
// calculationDate at the given cadence.
func IsEligible(a Asset, calculationDate time.Time, cadence Cadence) Eligibility {
	calculationDate = Date(calculationDate)

	if Date(a.DepreciationStartDate).After(calculationDate) {
		return Eligibility{Eligible: false, Reason: ReasonStartNotReached}
	}
	if a.FullyDepreciated {
		return Eligibility{Eligible: false, Reason: ReasonFullyDepreciated}
	}
	if a.LastDepreciationDate == nil {
		return Eligibility{Eligible: true, Reason: ReasonFirstCalculation}
	}

	if WholeCadenceUnitsBetween(*a.LastDepreciationDate, calculationDate, cadence) >= 1 {
		return Eligibility{Eligible: true, Reason: ReasonCadenceElapsed}
	}
	if a.NextDepreciationDate != nil && !calculationDate.Before(Date(*a.NextDepreciationDate)) {
		return Eligibility{Eligible: true, Reason: ReasonNextDueDateReached}
	}

	return Eligibility{Eligible: false, Reason: ReasonNotDueYet}
}
