package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"aviancal/internal/capture"
	"aviancal/internal/config"
	appLog "aviancal/internal/log"
	"aviancal/internal/schedule"
)

// Server serves generated schedules as JSON, downloads, calendar feeds
// and a printable page.
type Server struct {
	cfg   *config.Config
	debug bool
	mux   *http.ServeMux

	plans schedule.Catalog
	loc   *time.Location

	// Generated downloads, purged by the refresh job so "current year"
	// requests roll over.
	cache *outputCache
	cron  *cron.Cron

	printer Printer
	now     func() time.Time
}

// Printer turns a served page into PDF bytes.
type Printer func(ctx context.Context, opts capture.PDFOptions, w io.Writer) error

// Option customises a Server.
type Option func(*Server)

// WithPrinter replaces the headless Chromium printer.
func WithPrinter(p Printer) Option {
	return func(s *Server) { s.printer = p }
}

// WithClock fixes the clock used for default years and cache ages.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer constructs a Server for every schedule in cfg.
func NewServer(cfg *config.Config, debug bool, opts ...Option) (*Server, error) {
	plans, err := cfg.Plans()
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("web: timezone %q: %w", cfg.Timezone, err)
	}

	s := &Server{
		cfg:     cfg,
		debug:   debug,
		mux:     http.NewServeMux(),
		plans:   plans,
		loc:     loc,
		printer: capture.PrintPDF,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.cache = newOutputCache(defaultCacheTTL, s.now)
	s.cron = cron.New(cron.WithLocation(loc))
	s.registerRoutes()
	return s, nil
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// StartRefresh schedules the cache purge on the configured cron spec.
func (s *Server) StartRefresh() error {
	if _, err := s.cron.AddFunc(s.cfg.RefreshCron, s.refresh); err != nil {
		return fmt.Errorf("web: refresh spec %q: %w", s.cfg.RefreshCron, err)
	}
	s.cron.Start()
	appLog.Info("refresh job scheduled", "spec", s.cfg.RefreshCron, "timezone", s.loc.String())
	return nil
}

// StopRefresh stops the refresh job and waits for a running purge.
func (s *Server) StopRefresh() {
	<-s.cron.Stop().Done()
}

func (s *Server) refresh() {
	n := s.cache.purge()
	appLog.Info("output cache purged", "entries", n)
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Aviancal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// StartServer serves cfg.Listen until ctx is cancelled, then shuts down
// gracefully.
func StartServer(ctx context.Context, cfg *config.Config, debug bool) error {
	s, err := NewServer(cfg, debug)
	if err != nil {
		return err
	}
	if err := s.StartRefresh(); err != nil {
		return err
	}
	defer s.StopRefresh()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLog.Error("http shutdown failed", err)
		}
	}()

	appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen, "debug", debug, "schedules", len(s.plans))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/schedules", s.handleSchedules)
	s.mux.HandleFunc("GET /api/schedule", s.handleSchedule)
	s.mux.HandleFunc("POST /api/custom", s.handleCustom)
	s.mux.HandleFunc("POST /api/custom/{format}", s.handleCustomDownload)
	s.mux.HandleFunc("GET /api/download/{format}", s.handleDownload)
	s.mux.HandleFunc("GET /calendar/{file}", s.handleFeed)
	s.mux.HandleFunc("GET /print", s.handlePrint)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
