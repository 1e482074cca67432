package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"tally/internal/core"
)

// recentLedger spreads three records over the last week so every
// period window catches them: 25.00 and 50.00 yesterday, 100.00 three
// days ago.
func recentLedger() *fakeLedger {
	today := core.Today(time.Now())
	return &fakeLedger{nextID: 3, records: []core.Record{
		{ID: 1, Date: today.AddDays(-1), Category: core.CategoryFood, Amount: core.Money{Cents: 2500}},
		{ID: 2, Date: today.AddDays(-1), Category: core.CategoryTransport, Amount: core.Money{Cents: 5000}},
		{ID: 3, Date: today.AddDays(-3), Category: core.CategoryFood, Amount: core.Money{Cents: 10000}},
	}}
}

func TestAnalyticsPanel(t *testing.T) {
	srv := newTestServer(t, recentLedger())

	rr := doRequest(srv, http.MethodGet, "/ui/analytics?period=30d", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"₹175.00", // total
		"₹87.50",  // daily average over two spending days
		"₹100.00", // highest single
		"₹25.00",  // lowest single
	} {
		if !strings.Contains(body, want) {
			t.Errorf("analytics body missing %q", want)
		}
	}
}

func TestAnalyticsPanelBreakdown(t *testing.T) {
	srv := newTestServer(t, recentLedger())

	rr := doRequest(srv, http.MethodGet, "/ui/analytics?period=7d", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	// Food leads with 125.00 at full width; Transport trails at 40%.
	if !strings.Contains(body, "₹125.00") || !strings.Contains(body, "₹50.00") {
		t.Errorf("breakdown totals missing: %s", body)
	}
	if !strings.Contains(body, "width: 100%") || !strings.Contains(body, "width: 40%") {
		t.Errorf("bar widths not scaled to the largest category: %s", body)
	}
	if strings.Index(body, "Food") > strings.Index(body, "Transport") {
		t.Error("largest category should render first")
	}
}

func TestAnalyticsPanelDefaultPeriod(t *testing.T) {
	srv := newTestServer(t, recentLedger())

	rr := doRequest(srv, http.MethodGet, "/ui/analytics", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "₹175.00") {
		t.Error("default period should cover the recent records")
	}
}

func TestAnalyticsPanelEmpty(t *testing.T) {
	srv := newTestServer(t, &fakeLedger{})

	rr := doRequest(srv, http.MethodGet, "/ui/analytics?period=all", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, an empty period is a defined state", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "No expenses recorded in this period") {
		t.Errorf("empty state missing: %s", rr.Body.String())
	}
}

func TestAnalyticsPanelUnknownPeriod(t *testing.T) {
	srv := newTestServer(t, recentLedger())

	rr := doRequest(srv, http.MethodGet, "/ui/analytics?period=14d", "", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
}

func TestAnalyticsTrend(t *testing.T) {
	srv := newTestServer(t, recentLedger())

	rr := doRequest(srv, http.MethodGet, "/ui/analytics/trend?period=7d", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var points []struct {
		Date        string `json:"date"`
		AmountCents int64  `json:"amount_cents"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &points); err != nil {
		t.Fatalf("decode trend: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2 spending days", len(points))
	}
	if points[0].Date >= points[1].Date {
		t.Error("points must be date ascending")
	}
	if points[0].AmountCents != 10000 || points[1].AmountCents != 7500 {
		t.Errorf("points = %+v, same-day records must sum", points)
	}
}

func TestAnalyticsTrendEmpty(t *testing.T) {
	srv := newTestServer(t, &fakeLedger{})

	rr := doRequest(srv, http.MethodGet, "/ui/analytics/trend", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("empty trend body = %q, want []", rr.Body.String())
	}
}
