/*
ledger.go - Book value ledger updater

PURPOSE:
  Applies a computed calculation result to an asset's running totals:
  current book value, accumulated depreciation, last/next depreciation
  dates and the fully-depreciated flag. Pure state transform; persistence
  happens at the batch boundary.

CRITICAL INVARIANTS (re-asserted here, enforced upstream by the clamp):
  1. Book value never goes below salvage value
  2. Accumulated depreciation never decreases
  3. accumulated == purchasePrice - bookValue, exactly (decimal, no drift)
  4. Fully depreciated => next depreciation date is nil

A violation means the calculator and the updater disagree about state -
that is corruption, not a recoverable business outcome, so it surfaces as
an InvariantError and the asset is reported FAILED.
*/
package depreciation

import (
	"fmt"
	"time"
)

// Apply returns the asset with the calculation result applied to its
// book-value state. The input asset is not mutated.
func Apply(a Asset, res *CalcResult, calculationDate time.Time) (Asset, error) {
	if res.BookValueEnd.LessThan(a.SalvageValue) {
		return Asset{}, &InvariantError{
			AssetID: a.ID,
			Detail: fmt.Sprintf("calculation would put book value %s below salvage value %s",
				res.BookValueEnd, a.SalvageValue),
		}
	}
	if res.NewAccumulated.LessThan(a.AccumulatedDepreciation) {
		return Asset{}, &InvariantError{
			AssetID: a.ID,
			Detail: fmt.Sprintf("calculation would decrease accumulated depreciation from %s to %s",
				a.AccumulatedDepreciation, res.NewAccumulated),
		}
	}

	calculationDate = Date(calculationDate)

	updated := a
	updated.CurrentBookValue = res.BookValueEnd
	updated.AccumulatedDepreciation = res.NewAccumulated
	updated.LastDepreciationDate = &calculationDate
	updated.FullyDepreciated = res.FullyDepreciated
	if res.FullyDepreciated {
		updated.NextDepreciationDate = nil
	} else {
		updated.NextDepreciationDate = res.NextDueDate
	}

	if err := updated.CheckInvariants(); err != nil {
		return Asset{}, err
	}
	return updated, nil
}
