package report

import (
	"sort"

	"tally/internal/core"
)

// CategoryTotal is one row of the category breakdown.
type CategoryTotal struct {
	Category core.Category
	Total    core.Money
}

// ByCategory sums amounts per category present in the input, largest
// total first. Categories with no records do not appear; there is no
// zero-filling. Equal totals keep first-seen order, so repeated calls on
// the same snapshot render identically.
func ByCategory(records []core.Record) []CategoryTotal {
	totals := make(map[core.Category]int64)
	var order []core.Category
	for _, r := range records {
		if _, seen := totals[r.Category]; !seen {
			order = append(order, r.Category)
		}
		totals[r.Category] += r.Amount.Cents
	}
	out := make([]CategoryTotal, 0, len(order))
	for _, c := range order {
		out = append(out, CategoryTotal{Category: c, Total: core.Money{Cents: totals[c]}})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.Cents > out[j].Total.Cents
	})
	return out
}

// Top returns the first n entries of a breakdown, or all of them when
// fewer exist.
func Top(groups []CategoryTotal, n int) []CategoryTotal {
	if n < 0 {
		n = 0
	}
	if n > len(groups) {
		n = len(groups)
	}
	return groups[:n]
}
