/*
schedule.go - Forward projection of an asset's remaining depreciation

PURPOSE:
  Simulates future runs to produce the expected remaining schedule of an
  asset: one entry per cadence period until the asset reaches its salvage
  floor (or the horizon). Used by the asset detail screen as a preview;
  pure, never persists and never mutates the stored asset.
*/
package depreciation

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduledPeriod is one projected future posting.
type ScheduledPeriod struct {
	Date             time.Time
	PeriodStart      time.Time
	PeriodEnd        time.Time
	Amount           decimal.Decimal
	BookValueAfter   decimal.Decimal
	FullyDepreciated bool
}

// ProjectSchedule iterates the calculator forward from the asset's next due
// date (or its start date for a fresh asset), applying each result in
// memory, until the asset is fully depreciated or maxPeriods entries have
// been produced. maxPeriods <= 0 means a default horizon of 480 periods.
func ProjectSchedule(a Asset, cadence Cadence, maxPeriods int) ([]ScheduledPeriod, error) {
	if !cadence.Valid() {
		return nil, ErrInvalidCadence
	}
	if maxPeriods <= 0 {
		maxPeriods = 480
	}

	calc := &Calculator{}
	current := a

	date := Date(current.DepreciationStartDate)
	if current.NextDepreciationDate != nil {
		date = Date(*current.NextDepreciationDate)
	} else if current.LastDepreciationDate != nil {
		date = AddMonthsClamped(Date(*current.LastDepreciationDate), cadence.Months())
	}

	var schedule []ScheduledPeriod
	for i := 0; i < maxPeriods; i++ {
		if current.FullyDepreciated {
			break
		}
		res, err := calc.Calculate(current, date, cadence)
		if err != nil {
			return nil, err
		}
		if res.Amount.IsZero() && !res.FullyDepreciated {
			break
		}

		schedule = append(schedule, ScheduledPeriod{
			Date:             date,
			PeriodStart:      res.PeriodStart,
			PeriodEnd:        res.PeriodEnd,
			Amount:           Round2(res.Amount),
			BookValueAfter:   Round2(res.BookValueEnd),
			FullyDepreciated: res.FullyDepreciated,
		})

		updated, err := Apply(current, res, date)
		if err != nil {
			return nil, err
		}
		current = updated
		date = AddMonthsClamped(date, cadence.Months())
	}
	return schedule, nil
}
