// Package rest serves registry documents over HTTP.
//
// Two routes make up the read surface: GET {basePath}/ lists every
// logical path, and GET {basePath}/{path} returns one document's
// decoded value. Before-hooks run ahead of the registry read and can
// reject the request; after-hooks observe the outcome and may replace
// the response payload.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentic-research/docket/api"
	"github.com/agentic-research/docket/internal/hook"
	"github.com/agentic-research/docket/internal/registry"
)

// Server wires the registry and hook dispatcher to the HTTP routes.
type Server struct {
	listen   string
	basePath string
	metrics  bool
	reg      *registry.Registry
	hooks    *hook.Dispatcher
	log      *slog.Logger
}

// New builds a server from a normalized configuration.
func New(cfg *api.Config, reg *registry.Registry, hooks *hook.Dispatcher, log *slog.Logger) *Server {
	return &Server{
		listen:   cfg.Listen,
		basePath: cfg.API.BasePath,
		metrics:  cfg.API.MetricsEnabled(),
		reg:      reg,
		hooks:    hooks,
		log:      log,
	}
}

// Handler assembles the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		s.respondError(w, http.StatusNotFound, "not_found", "no route for "+req.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		s.respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", req.Method+" is not supported")
	})

	r.Get("/healthz", s.handleHealthz)
	if s.metrics {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Route(s.basePath, func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Get("/*", s.handleGet)
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving documents", "addr", s.listen, "base_path", s.basePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type errorDetail struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if gen := s.reg.Generation(); gen != "" {
		w.Header().Set("X-Docket-Generation", gen)
	}
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: errorDetail{
		Status:  status,
		Code:    code,
		Message: message,
	}})
}
