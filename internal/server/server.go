package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"transitboard/internal/config"
	"transitboard/internal/handler"
	"transitboard/internal/telemetry"
)

// Server is the HTTP server for the transit board API.
type Server struct {
	mux     *http.ServeMux
	cfg     *config.Config
	logger  *slog.Logger
	metrics *telemetry.Metrics
	gate    *handler.Gate
}

// New creates a new Server with all routes registered.
func New(cfg *config.Config, h *handler.Handler, gate *handler.Gate, metrics *telemetry.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{mux: mux, cfg: cfg, logger: logger, metrics: metrics, gate: gate}

	// Boards
	mux.HandleFunc("GET /api/trains", h.Trains)
	mux.HandleFunc("GET /api/buses", h.Buses)
	mux.HandleFunc("GET /api/board", h.Board)
	mux.HandleFunc("GET /api/station", h.Station)

	// Notices: reads are open, every write goes through requireAdmin.
	mux.HandleFunc("GET /api/notices", h.Notices)
	mux.Handle("POST /api/notices", s.admin("create", h.CreateNotice))
	mux.Handle("POST /api/notices/verify", s.admin("verify", h.VerifyPassword))
	mux.Handle("PATCH /api/notices/{id}", s.admin("update", h.UpdateNotice))
	mux.Handle("DELETE /api/notices/{id}", s.admin("delete", h.DeleteNotice))

	mux.HandleFunc("GET /api/keep-alive", h.KeepAlive)

	if cfg.Metrics && metrics != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	if !gate.Enabled() {
		logger.Warn("no TRANSIT_ADMIN_PASSWORD set; notice writes are disabled")
	}
	return s
}

func (s *Server) admin(op string, next http.HandlerFunc) http.Handler {
	var rec handler.WriteRecorder
	if s.metrics != nil {
		rec = s.metrics
	}
	return requireAdmin(next, s.gate, op, rec)
}

// Handler returns the mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var observe requestObserver
	if s.metrics != nil {
		observe = s.metrics.ObserveRequest
	}
	return withMiddleware(s.mux, s.logger, s.cfg.CORSOrigins, observe)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
