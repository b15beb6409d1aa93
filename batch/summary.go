/*
summary.go - Run summary aggregation

PURPOSE:
  Groups a run's SUCCESS details by asset category and by depreciation
  method, summing counts and amounts per group. Pure, no side effects.
*/
package batch

import (
	"sort"

	"github.com/shopspring/decimal"
)

// GroupTotal is one aggregated row of the run summary.
type GroupTotal struct {
	Key    string
	Count  int
	Amount decimal.Decimal
}

// Summary is the grouped view of a run's successful outcomes.
type Summary struct {
	ByCategory []GroupTotal
	ByMethod   []GroupTotal
}

// Summarize groups SUCCESS details by the owning asset's category and by
// its depreciation method. Other statuses are ignored. Groups are sorted
// by key for stable output.
func Summarize(details []Detail) Summary {
	byCategory := make(map[string]*GroupTotal)
	byMethod := make(map[string]*GroupTotal)

	for _, d := range details {
		if d.Status != StatusSuccess {
			continue
		}
		addTo(byCategory, d.Category, d.Amount)
		addTo(byMethod, d.Method.Code(), d.Amount)
	}

	return Summary{
		ByCategory: sorted(byCategory),
		ByMethod:   sorted(byMethod),
	}
}

func addTo(groups map[string]*GroupTotal, key string, amount decimal.Decimal) {
	g, ok := groups[key]
	if !ok {
		g = &GroupTotal{Key: key, Amount: decimal.Zero}
		groups[key] = g
	}
	g.Count++
	g.Amount = g.Amount.Add(amount)
}

func sorted(groups map[string]*GroupTotal) []GroupTotal {
	result := make([]GroupTotal, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}
