package report

import (
	"testing"

	"tally/internal/core"
)

func TestComputeScenario(t *testing.T) {
	s, ok := Compute(ledger())
	if !ok {
		t.Fatal("expected stats for non-empty input")
	}
	if s.Total.String() != "175.00" {
		t.Fatalf("total = %s, want 175.00", s.Total)
	}
	if s.Average.String() != "58.33" {
		t.Fatalf("average = %s, want 58.33", s.Average)
	}
	if s.Maximum.String() != "100.00" {
		t.Fatalf("maximum = %s, want 100.00", s.Maximum)
	}
	if s.Count != 3 {
		t.Fatalf("count = %d, want 3", s.Count)
	}
}

func TestComputeEmpty(t *testing.T) {
	if _, ok := Compute(nil); ok {
		t.Fatal("empty input must yield the absent result, not zeros")
	}
	if _, ok := Compute([]core.Record{}); ok {
		t.Fatal("empty slice must yield the absent result")
	}
}

func TestComputeSingle(t *testing.T) {
	s, ok := Compute([]core.Record{rec("2024-05-05", core.CategoryOther, 4242)})
	if !ok {
		t.Fatal("expected stats")
	}
	if s.Total.Cents != 4242 || s.Average.Cents != 4242 || s.Maximum.Cents != 4242 || s.Count != 1 {
		t.Fatalf("single record stats = %+v", s)
	}
}

func TestComputeMatchesGroupTotals(t *testing.T) {
	records := ledger()
	s, _ := Compute(records)
	var grouped int64
	for _, g := range ByCategory(records) {
		grouped += g.Total.Cents
	}
	if grouped != s.Total.Cents {
		t.Fatalf("grouped sum %d != stats total %d", grouped, s.Total.Cents)
	}
}

func TestDivRound(t *testing.T) {
	cases := []struct {
		total, n, want int64
	}{
		{17500, 3, 5833}, // 58.333..
		{17500, 2, 8750},
		{100, 8, 13}, // 12.5 rounds up
		{100, 3, 33},
		{1, 2, 1}, // 0.5 rounds up
	}
	for _, tc := range cases {
		if got := divRound(tc.total, tc.n); got != tc.want {
			t.Fatalf("divRound(%d, %d) = %d, want %d", tc.total, tc.n, got, tc.want)
		}
	}
}
