package report

import (
	"sort"

	"tally/internal/core"
)

// DailyTotal is one point of the spending-over-time series.
type DailyTotal struct {
	Date  core.Date
	Total core.Money
}

// DailySeries buckets records by calendar date and sums each bucket,
// oldest date first. Days without records are not synthesized as zero
// points, so the series may have gaps; trend consumers must not assume
// uniform daily spacing.
func DailySeries(records []core.Record) []DailyTotal {
	totals := make(map[core.Date]int64)
	for _, r := range records {
		totals[r.Date] += r.Amount.Cents
	}
	out := make([]DailyTotal, 0, len(totals))
	for d, cents := range totals {
		out = append(out, DailyTotal{Date: d, Total: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out
}
