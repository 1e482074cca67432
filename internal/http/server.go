// Package http serves the web UI: the entry form, the filterable
// history view, the analytics dashboard, and the ops endpoints.
//
// Pages are server-rendered html/template with HTMX partial swaps; the
// templates and static assets ship embedded in the binary.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"tally/internal/cache"
	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/middleware/ratelimit"
	"tally/internal/middleware/security"
	"tally/internal/middleware/trace"
	appweb "tally/web"
)

// Ledger is the slice of the service layer the handlers consume.
type Ledger interface {
	CreateRecord(ctx context.Context, record core.Record) (core.Record, error)
	DeleteRecord(ctx context.Context, id int64) (bool, error)
	ListRecords(ctx context.Context) ([]core.Record, error)
	Health(ctx context.Context) error
	TotalRecords(ctx context.Context) (int64, error)
	CacheStats() cache.Stats
	EventsPublished() int64
}

type appMetrics struct {
	startedAt      time.Time
	recordsCreated atomic.Int64
	recordsDeleted atomic.Int64
	csvExports     atomic.Int64
}

// Server wraps http.Server with the handler dependencies and the
// middleware stack.
type Server struct {
	http.Server

	ledger    Ledger
	templates *template.Template
	logger    *log.Logger

	tracer   *trace.Middleware
	limiter  *ratelimit.Limiter
	headers  *security.Headers
	detector *security.Detector

	metrics      appMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes, middleware, and templates, returning a
// ready-to-run server.
func NewServer(addr string, ledger Ledger, logger *log.Logger, requestsPerMinute int) *Server {
	mux := http.NewServeMux()
	detector := security.NewDetector()

	s := &Server{
		Server: http.Server{
			Addr:           addr,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 64 << 10,
		},
		ledger:   ledger,
		logger:   logger.WithComponent(log.ComponentHTTP),
		tracer:   trace.NewMiddleware(logger, detector.ExtractClientIP),
		limiter:  ratelimit.New(ratelimit.Config{RequestsPerMinute: requestsPerMinute}),
		headers:  security.NewHeaders(security.DefaultHeadersConfig()),
		detector: detector,
		metrics:  appMetrics{startedAt: time.Now()},
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("failed parsing templates", log.FieldError, err.Error())
	}
	s.templates = t

	// Static assets served from the embedded FS.
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssets(3600)(static))
	} else {
		s.logger.Warn("failed to mount embedded static assets", log.FieldError, err.Error())
	}

	// Pages and partials go through rate limiting and security headers.
	// The ops endpoints stay outside the limiter so probes are never
	// throttled away.
	mux.Handle("/", s.secured(s.handleIndex))
	mux.Handle("/history", s.secured(s.handleHistory))
	mux.Handle("/analytics", s.secured(s.handleAnalytics))
	mux.Handle("/records", s.secured(s.handleRecords))
	mux.Handle("/ui/records", s.secured(s.handleRecordsTable))
	mux.Handle("/ui/analytics", s.secured(s.handleAnalyticsPanel))
	mux.Handle("/ui/analytics/trend", s.secured(s.handleAnalyticsTrend))
	mux.Handle("/export/csv", s.secured(s.handleExportCSV))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	s.Server.Handler = s.tracer.Wrap(mux)

	return s
}

// secured applies security headers and per-IP rate limiting around a
// handler, with pattern detection observing in between.
func (s *Server) secured(next http.HandlerFunc) http.Handler {
	limited := s.limiter.Middleware(s.detector.ExtractClientIP)
	return s.headers.Wrap(limited(s.observed(next)))
}

// observed flags request patterns that look like probing. Detection is
// observe-only: the request proceeds either way.
func (s *Server) observed(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.IsSuspicious(r) {
			s.logger.WarnContext(r.Context(), "suspicious request pattern",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r))
		}
		next(w, r)
	})
}

// Shutdown stops the rate limiter's cleanup goroutine and drains
// in-flight requests. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
