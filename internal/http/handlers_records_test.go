package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"tally/internal/core"
)

const formEncoded = "application/x-www-form-urlencoded"

func createForm(date, category, amount, note string) string {
	form := url.Values{}
	form.Set("date", date)
	form.Set("category", category)
	form.Set("amount", amount)
	form.Set("note", note)
	return form.Encode()
}

func TestCreateRecord(t *testing.T) {
	ledger := &fakeLedger{}
	srv := newTestServer(t, ledger)

	body := createForm("2024-06-10", "Food & Dining", "12.34", "lunch")
	rr := doRequest(srv, http.MethodPost, "/records", body, formEncoded)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rr.Code, rr.Body.String())
	}

	trigger := rr.Header().Get("HX-Trigger")
	for _, want := range []string{`"ledger:changed"`, `"form:reset"`, `"show-notification"`, "Recorded #1: ₹12.34 on Food"} {
		if !strings.Contains(trigger, want) {
			t.Errorf("HX-Trigger missing %q: %s", want, trigger)
		}
	}

	if len(ledger.records) != 1 {
		t.Fatalf("stored %d records, want 1", len(ledger.records))
	}
	stored := ledger.records[0]
	if stored.Category != core.CategoryFood || stored.Amount.Cents != 1234 || stored.Note != "lunch" {
		t.Errorf("stored record = %+v", stored)
	}
	if stored.Date.String() != "2024-06-10" {
		t.Errorf("stored date = %s, want 2024-06-10", stored.Date)
	}
}

func TestCreateRecordStripsCategoryDecoration(t *testing.T) {
	ledger := &fakeLedger{}
	srv := newTestServer(t, ledger)

	body := createForm("2024-06-10", "🍕 Food & Dining", "5", "")
	rr := doRequest(srv, http.MethodPost, "/records", body, formEncoded)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ledger.records[0].Category != core.CategoryFood {
		t.Errorf("stored category = %q, decoration must never reach storage", ledger.records[0].Category)
	}
}

func TestCreateRecordRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed date", createForm("June 10", "Transport", "10", "")},
		{"unknown category", createForm("2024-06-10", "Groceries", "10", "")},
		{"non-numeric amount", createForm("2024-06-10", "Transport", "abc", "")},
		{"zero amount", createForm("2024-06-10", "Transport", "0", "")},
		{"negative amount", createForm("2024-06-10", "Transport", "-5", "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &fakeLedger{}
			srv := newTestServer(t, ledger)

			rr := doRequest(srv, http.MethodPost, "/records", tt.body, formEncoded)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", rr.Code)
			}
			if len(ledger.records) != 0 {
				t.Error("invalid input must not reach the ledger")
			}
		})
	}
}

func TestCreateRecordValidationFailure(t *testing.T) {
	ledger := &fakeLedger{createErr: core.ErrFutureDate}
	srv := newTestServer(t, ledger)

	rr := doRequest(srv, http.MethodPost, "/records", createForm("2099-01-01", "Transport", "10", ""), formEncoded)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "future") {
		t.Errorf("body = %s, want the validation message surfaced", rr.Body.String())
	}
}

func TestCreateRecordStorageFailure(t *testing.T) {
	ledger := &fakeLedger{createErr: errors.New("disk full")}
	srv := newTestServer(t, ledger)

	rr := doRequest(srv, http.MethodPost, "/records", createForm("2024-06-10", "Transport", "10", ""), formEncoded)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}

func TestRecordsMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &fakeLedger{})

	rr := doRequest(srv, http.MethodPut, "/records", "", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rr.Code)
	}
	if allow := rr.Header().Get("Allow"); allow != "POST, DELETE" {
		t.Errorf("Allow = %q, want %q", allow, "POST, DELETE")
	}
}

func TestDeleteRecord(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
	}{
		{"form body", "id=2", formEncoded},
		{"json body", `{"id": 2}`, "application/json"},
		{"query param", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &fakeLedger{nextID: 2, records: []core.Record{
				{ID: 1, Date: core.NewDate(2024, 6, 1), Category: core.CategoryFood, Amount: core.Money{Cents: 100}},
				{ID: 2, Date: core.NewDate(2024, 6, 2), Category: core.CategoryTravel, Amount: core.Money{Cents: 200}},
			}}
			srv := newTestServer(t, ledger)

			target := "/records"
			if tt.body == "" {
				target = "/records?id=2"
			}
			rr := doRequest(srv, http.MethodDelete, target, tt.body, tt.contentType)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rr.Code)
			}
			trigger := rr.Header().Get("HX-Trigger")
			for _, want := range []string{`"ledger:changed"`, "Deleted record #2"} {
				if !strings.Contains(trigger, want) {
					t.Errorf("HX-Trigger missing %q: %s", want, trigger)
				}
			}
			if len(ledger.records) != 1 || ledger.records[0].ID != 1 {
				t.Errorf("remaining records = %+v", ledger.records)
			}
		})
	}
}

func TestDeleteRecordMissingID(t *testing.T) {
	srv := newTestServer(t, &fakeLedger{})

	rr := doRequest(srv, http.MethodDelete, "/records", "", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "show-notification") {
		t.Error("missing id should surface a notification")
	}
}

func TestDeleteRecordNotFound(t *testing.T) {
	srv := newTestServer(t, &fakeLedger{})

	rr := doRequest(srv, http.MethodDelete, "/records", "id=99", formEncoded)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, a vanished id is not an error page", rr.Code)
	}
	trigger := rr.Header().Get("HX-Trigger")
	for _, want := range []string{"Record #99 not found", `"warning"`} {
		if !strings.Contains(trigger, want) {
			t.Errorf("HX-Trigger missing %q: %s", want, trigger)
		}
	}
}

func TestDeleteRecordStorageFailure(t *testing.T) {
	srv := newTestServer(t, &fakeLedger{deleteErr: errors.New("database locked")})

	rr := doRequest(srv, http.MethodDelete, "/records", "id=1", formEncoded)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}

// scenarioLedger holds three records over two days: 25.00 and 50.00 on
// January 15th, 100.00 on January 17th.
func scenarioLedger() *fakeLedger {
	return &fakeLedger{nextID: 3, records: []core.Record{
		{ID: 1, Date: core.NewDate(2024, 1, 15), Category: core.CategoryFood, Amount: core.Money{Cents: 2500}, Note: "lunch"},
		{ID: 2, Date: core.NewDate(2024, 1, 15), Category: core.CategoryTransport, Amount: core.Money{Cents: 5000}, Note: "fuel"},
		{ID: 3, Date: core.NewDate(2024, 1, 17), Category: core.CategoryFood, Amount: core.Money{Cents: 10000}, Note: "groceries"},
	}}
}

func TestRecordsTableStats(t *testing.T) {
	srv := newTestServer(t, scenarioLedger())

	rr := doRequest(srv, http.MethodGet, "/ui/records", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"₹175.00", "₹58.33", "₹100.00", ">3<", "lunch", "fuel", "groceries"} {
		if !strings.Contains(body, want) {
			t.Errorf("table body missing %q", want)
		}
	}
	// Newest date renders first.
	if strings.Index(body, "2024-01-17") > strings.Index(body, "2024-01-15") {
		t.Error("rows are not newest first")
	}
}

func TestRecordsTableCategoryFilter(t *testing.T) {
	srv := newTestServer(t, scenarioLedger())

	rr := doRequest(srv, http.MethodGet, "/ui/records?filtered=1&category=Transport", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "fuel") {
		t.Error("Transport record missing")
	}
	for _, unwanted := range []string{"lunch", "groceries"} {
		if strings.Contains(body, unwanted) {
			t.Errorf("filtered table should not contain %q", unwanted)
		}
	}
	if !strings.Contains(body, "₹50.00") {
		t.Error("stats should cover only the filtered rows")
	}
}

func TestRecordsTableDateFilter(t *testing.T) {
	srv := newTestServer(t, scenarioLedger())

	rr := doRequest(srv, http.MethodGet, "/ui/records?start=2024-01-16&end=2024-01-31", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "groceries") || strings.Contains(body, "lunch") {
		t.Errorf("date filter applied wrong rows: %s", body)
	}
}

func TestRecordsTableDeselectedCategories(t *testing.T) {
	srv := newTestServer(t, scenarioLedger())

	rr := doRequest(srv, http.MethodGet, "/ui/records?filtered=1", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "No expenses found") {
		t.Error("deselecting every category should render the empty state")
	}
}

func TestRecordsTableInvertedRange(t *testing.T) {
	srv := newTestServer(t, scenarioLedger())

	rr := doRequest(srv, http.MethodGet, "/ui/records?start=2024-02-01&end=2024-01-01", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, an inverted range is defined, not an error", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "No expenses found") {
		t.Error("inverted range should render the empty state")
	}
}

func TestRecordsTableBadFilter(t *testing.T) {
	srv := newTestServer(t, scenarioLedger())

	rr := doRequest(srv, http.MethodGet, "/ui/records?start=notadate", "", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t, scenarioLedger())

	rr := doRequest(srv, http.MethodGet, "/export/csv", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	disposition := rr.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "attachment") || !strings.Contains(disposition, "expenses_") {
		t.Errorf("Content-Disposition = %q", disposition)
	}

	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("csv has %d lines, want header plus 3 rows: %s", len(lines), rr.Body.String())
	}
	if lines[0] != "id,date,category,amount,note" {
		t.Errorf("csv header = %q", lines[0])
	}
}

func TestExportCSVCarriesFilter(t *testing.T) {
	srv := newTestServer(t, scenarioLedger())

	rr := doRequest(srv, http.MethodGet, "/export/csv?filtered=1&category=Transport", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("filtered csv has %d lines, want header plus 1 row", len(lines))
	}
	if !strings.Contains(lines[1], "Transport") {
		t.Errorf("csv row = %q", lines[1])
	}
}
