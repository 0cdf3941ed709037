// Package server exposes the session over HTTP: health, Prometheus metrics,
// an on-demand prediction cycle and the current model description.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"direction-bot/internal/exec"
	"direction-bot/internal/ml"
	"direction-bot/internal/notify"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Session is the part of exec.Session the server drives.
type Session interface {
	Cycle(ctx context.Context, reply notify.Notifier) (exec.Outcome, error)
	Info() (ml.Info, bool)
}

type Server struct {
	session Session
	notify  notify.Notifier
	timeout time.Duration
	server  *http.Server
}

// New builds a server on port. Cycle messages are mirrored to n when it is
// not nil; gatherer backs /metrics.
func New(session Session, n notify.Notifier, gatherer prometheus.Gatherer, port int) *Server {
	s := &Server{session: session, notify: n, timeout: 30 * time.Second}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/predict", s.handlePredict)
	mux.HandleFunc("/model/info", s.handleModelInfo)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      s.timeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the routing handler.
func (s *Server) Handler() http.Handler { return s.server.Handler }

// Start serves until Shutdown; it returns nil after a graceful shutdown.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting http server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	var buf notify.Buffer
	var reply notify.Notifier = &buf
	if s.notify != nil {
		reply = notify.Tee{&buf, s.notify}
	}

	out, err := s.session.Cycle(ctx, reply)
	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, ml.ErrNotTrained):
		status = http.StatusServiceUnavailable
	case errors.Is(err, ml.ErrInsufficientData):
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, out)
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	info, ok := s.session.Info()
	if !ok {
		http.Error(w, "no model", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}
