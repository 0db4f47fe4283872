// Package server exposes the validation pipeline as an HTTP API.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/leapstack-labs/sqlgate/internal/state"
	"github.com/leapstack-labs/sqlgate/pkg/validate"
	"golang.org/x/sync/errgroup"
)

// maxRequestBody bounds the size of an incoming validation request.
const maxRequestBody = 1 << 20

// Config holds configuration for the validation API server.
type Config struct {
	Addr      string
	Source    string
	Validator *validate.Validator
	Store     *state.Store
	Logger    *slog.Logger
}

// Server is the validation API server.
type Server struct {
	addr      string
	source    string
	validator *validate.Validator
	store     *state.Store
	logger    *slog.Logger
}

// New creates a new API server instance.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		addr:      cfg.Addr,
		source:    cfg.Source,
		validator: cfg.Validator,
		store:     cfg.Store,
		logger:    logger,
	}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Get("/schema", s.handleSchema)
	})
	return r
}

// Serve starts the API server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting validation API", slog.String("addr", s.addr), slog.String("source", s.source))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down validation API")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// validateRequest is the POST /api/validate body.
type validateRequest struct {
	SQL string `json:"sql"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	start := time.Now()
	verdict := s.validator.Validate(r.Context(), req.SQL)

	if s.store != nil {
		run := state.Run{
			Source:   s.source,
			SQL:      strings.TrimSpace(req.SQL),
			Passed:   verdict.Passed,
			Stage:    string(verdict.Stage),
			Message:  verdict.Message,
			Duration: time.Since(start),
		}
		if err := s.store.RecordRun(r.Context(), run); err != nil {
			s.logger.Warn("failed to record validation run", slog.String("error", err.Error()))
		}
	}

	s.writeJSON(w, http.StatusOK, verdict)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	cat := s.validator.Catalog()
	s.writeJSON(w, http.StatusOK, struct {
		Source  string   `json:"source"`
		Tables  []string `json:"tables"`
		Columns []string `json:"columns"`
	}{Source: s.source, Tables: cat.Tables(), Columns: cat.Columns()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
