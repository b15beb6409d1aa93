package depreciation

import "time"

// =============================================================================
// CALENDAR HELPERS - Day-granularity month arithmetic (UTC)
// =============================================================================
// All engine dates are day-granularity UTC. Callers normalize with Date()
// before handing a time.Time to the engine; the helpers here are what the
// eligibility and period-boundary rules are written in terms of.

// Date truncates a time to midnight UTC of its calendar day. Non-UTC inputs
// are converted first so the day matches the UTC clock, not the local one.
func Date(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewDate builds a day-granularity UTC date.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// StartOfMonth returns the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns the last day of t's month.
func EndOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

// StartOfNextMonth returns the first day of the month following t.
func StartOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonthsClamped advances t by n months, clamping the day to the length of
// the target month. time.Time.AddDate normalizes overflow instead
// (Jan 31 + 1 month = Mar 3); here Jan 31 + 1 month = Feb 28.
func AddMonthsClamped(t time.Time, n int) time.Time {
	first := StartOfMonth(t).AddDate(0, n, 0)
	day := t.Day()
	if last := EndOfMonth(first).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// WholeMonthsBetween returns the number of complete calendar months elapsed
// from from to to. A month counts only once the day-of-month has been
// reached again: Jan 15 -> Feb 14 is 0 months, Jan 15 -> Feb 15 is 1.
// Returns 0 when to is before from.
func WholeMonthsBetween(from, to time.Time) int {
	from, to = Date(from), Date(to)
	if to.Before(from) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// WholeCadenceUnitsBetween returns the number of complete cadence periods
// elapsed between two dates (months, quarters floored, or years).
func WholeCadenceUnitsBetween(from, to time.Time, cadence Cadence) int {
	months := WholeMonthsBetween(from, to)
	switch cadence {
	case Monthly:
		return months
	case Quarterly:
		return months / 3
	case Annually:
		return months / 12
	default:
		return 0
	}
}
