package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"tally/internal/cache"
	"tally/internal/core"
	"tally/internal/log"
)

type fakeLedger struct {
	records   []core.Record
	nextID    int64
	createErr error
	deleteErr error
	listErr   error
	healthErr error
	published int64
}

func (f *fakeLedger) CreateRecord(ctx context.Context, record core.Record) (core.Record, error) {
	if f.createErr != nil {
		return core.Record{}, f.createErr
	}
	f.nextID++
	record.ID = f.nextID
	f.records = append(f.records, record)
	return record, nil
}

func (f *fakeLedger) DeleteRecord(ctx context.Context, id int64) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedger) ListRecords(ctx context.Context) ([]core.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]core.Record, len(f.records))
	copy(out, f.records)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[j].Date.Before(out[i].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeLedger) Health(ctx context.Context) error { return f.healthErr }

func (f *fakeLedger) TotalRecords(ctx context.Context) (int64, error) {
	return int64(len(f.records)), nil
}

func (f *fakeLedger) CacheStats() cache.Stats { return cache.Stats{Hits: 3, Misses: 1, Size: 1} }

func (f *fakeLedger) EventsPublished() int64 { return f.published }

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func newTestServer(t *testing.T, ledger *fakeLedger) *Server {
	t.Helper()
	srv := NewServer(":0", ledger, testLogger(), 1000)
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	return srv
}

func doRequest(srv *Server, method, target, body, contentType string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	srv.Server.Handler.ServeHTTP(rr, req)
	return rr
}

func TestIndexPage(t *testing.T) {
	srv := newTestServer(t, &fakeLedger{})

	rr := doRequest(srv, http.MethodGet, "/", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("index status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Add Expense", "Food &amp; Dining", `max="`} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers not applied to index")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("request id header not set")
	}
}

func TestIndexUnknownPath(t *testing.T) {
	srv := newTestServer(t, &fakeLedger{})

	rr := doRequest(srv, http.MethodGet, "/nonexistent", "", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestHistoryPage(t *testing.T) {
	ledger := &fakeLedger{}
	ledger.records = []core.Record{
		{ID: 1, Date: core.NewDate(2024, 1, 10), Category: core.CategoryFood, Amount: core.Money{Cents: 2500}},
		{ID: 2, Date: core.NewDate(2024, 2, 20), Category: core.CategoryTravel, Amount: core.Money{Cents: 90000}},
	}
	ledger.nextID = 2
	srv := newTestServer(t, ledger)

	rr := doRequest(srv, http.MethodGet, "/history", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("history status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	// Filter widgets initialize from the data extremes.
	for _, want := range []string{"2024-01-10", "2024-02-20", "25.00", "900.00"} {
		if !strings.Contains(body, want) {
			t.Errorf("history body missing %q", want)
		}
	}
}

func TestAnalyticsPage(t *testing.T) {
	srv := newTestServer(t, &fakeLedger{})

	rr := doRequest(srv, http.MethodGet, "/analytics", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("analytics status = %d, want 200", rr.Code)
	}
	for _, want := range []string{"Last 7 Days", "Last 30 Days", "Last 90 Days", "All Time"} {
		if !strings.Contains(rr.Body.String(), want) {
			t.Errorf("analytics body missing %q", want)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeLedger{})

	rr := doRequest(srv, http.MethodGet, "/healthz", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Errorf("healthz body = %s", rr.Body.String())
	}
}

func TestReadyEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		ledger     *fakeLedger
		wantStatus int
		wantBody   string
	}{
		{
			name:       "ready",
			ledger:     &fakeLedger{},
			wantStatus: http.StatusOK,
			wantBody:   `"status":"ready"`,
		},
		{
			name:       "storage down",
			ledger:     &fakeLedger{healthErr: errors.New("database locked")},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `"status":"not_ready"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.ledger)
			rr := doRequest(srv, http.MethodGet, "/readyz", "", "")
			if rr.Code != tt.wantStatus {
				t.Fatalf("readyz status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("readyz body = %s, want it to contain %s", rr.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ledger := &fakeLedger{published: 2}
	srv := newTestServer(t, ledger)

	form := "date=2024-06-10&category=Transport&amount=50.00"
	if rr := doRequest(srv, http.MethodPost, "/records", form, "application/x-www-form-urlencoded"); rr.Code != http.StatusOK {
		t.Fatalf("create status = %d", rr.Code)
	}

	rr := doRequest(srv, http.MethodGet, "/metrics", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"records_created_total 1",
		"records_deleted_total 0",
		"record_events_published_total 2",
		"cache_hits_total 3",
		"cache_misses_total 1",
		"ledger_records 1",
		"# TYPE http_requests_total counter",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics body missing %q", want)
		}
	}
}

func TestRateLimitExceeded(t *testing.T) {
	srv := NewServer(":0", &fakeLedger{}, testLogger(), 2)
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})

	for i := 0; i < 2; i++ {
		if rr := doRequest(srv, http.MethodGet, "/", "", ""); rr.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rr.Code)
		}
	}
	rr := doRequest(srv, http.MethodGet, "/", "", "")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", rr.Header().Get("Retry-After"))
	}
}

func TestOpsEndpointsBypassRateLimit(t *testing.T) {
	srv := NewServer(":0", &fakeLedger{}, testLogger(), 1)
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})

	for i := 0; i < 5; i++ {
		if rr := doRequest(srv, http.MethodGet, "/healthz", "", ""); rr.Code != http.StatusOK {
			t.Fatalf("healthz request %d status = %d, want 200", i+1, rr.Code)
		}
	}
}

func TestShutdownTwice(t *testing.T) {
	srv := NewServer(":0", &fakeLedger{}, testLogger(), 60)

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("first Shutdown() error = %v", err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown() error = %v", err)
	}
}
