package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/afiya/afiyacare/internal/metrics"
	"github.com/rs/zerolog"
)

// Bot connection states reported by /health
const (
	BotConnected    = "connected"
	BotDisconnected = "disconnected"
)

// Sources supplies the live values reported by /health. Nil functions
// report zero values.
type Sources struct {
	BotRunning      func() bool
	Sessions        func() int
	DiagnosisStatus func() string
}

// Response is the body of GET /health
type Response struct {
	Status    string  `json:"status"`
	Bot       string  `json:"bot"`
	Diagnosis string  `json:"diagnosis"`
	Sessions  int     `json:"sessions"`
	Uptime    float64 `json:"uptime"`
}

// ServerOptions configures the health server
type ServerOptions struct {
	Host string
	Port int
}

// Server serves process health and Prometheus metrics
type Server struct {
	options   ServerOptions
	sources   Sources
	metrics   *metrics.Metrics
	server    *http.Server
	logger    zerolog.Logger
	startTime time.Time

	shuttingDown atomic.Bool
}

// NewServer creates a health server
func NewServer(options ServerOptions, sources Sources, m *metrics.Metrics, log zerolog.Logger) *Server {
	if options.Host == "" {
		options.Host = "0.0.0.0"
	}
	if m == nil {
		m = metrics.NewMetrics()
	}

	s := &Server{
		options:   options,
		sources:   sources,
		metrics:   m,
		logger:    log.With().Str("component", "health").Logger(),
		startTime: time.Now(),
	}
	s.server = &http.Server{
		Addr:              net.JoinHostPort(options.Host, strconv.Itoa(options.Port)),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the router for /health and /metrics
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

// Start listens until Stop is called. It blocks.
func (s *Server) Start() error {
	s.logger.Info().
		Str("host", s.options.Host).
		Int("port", s.options.Port).
		Msg("Starting health server")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start health server: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	s.shuttingDown.Store(true)

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown health server: %w", err)
	}

	s.logger.Info().Msg("Health server stopped")
	return nil
}

// Snapshot collects the current health report
func (s *Server) Snapshot() Response {
	resp := Response{
		Status:    "healthy",
		Bot:       BotDisconnected,
		Diagnosis: StatusUnknown,
		Uptime:    time.Since(s.startTime).Seconds(),
	}
	if s.shuttingDown.Load() {
		resp.Status = "shutting_down"
	}
	if s.sources.BotRunning != nil && s.sources.BotRunning() {
		resp.Bot = BotConnected
	}
	if s.sources.Sessions != nil {
		resp.Sessions = s.sources.Sessions()
	}
	if s.sources.DiagnosisStatus != nil {
		resp.Diagnosis = s.sources.DiagnosisStatus()
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := s.Snapshot()
	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write health response")
	}
}
