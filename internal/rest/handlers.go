package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agentic-research/docket/internal/ctxlog"
	"github.com/agentic-research/docket/internal/hook"
	"github.com/agentic-research/docket/internal/registry"
)

// listHookPath is the hook path for index requests. A root-level
// document named "list" shares it.
const listHookPath = "list"

type listResponse struct {
	Documents []string `json:"documents"`
	Count     int      `json:"count"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ev := &hook.Event{Path: listHookPath, Request: r}
	if err := s.hooks.Invoke(ctx, hook.Before, ev); err != nil {
		hookErrors.WithLabelValues("before").Inc()
		s.respondError(w, http.StatusInternalServerError, "hook_rejected", err.Error())
		return
	}

	docs, err := s.reg.List(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "scan_failed", err.Error())
		return
	}
	paths := make([]string, len(docs))
	for i, d := range docs {
		paths[i] = d.Path
	}

	ev.Payload = listResponse{Documents: paths, Count: len(paths)}
	ev.Elapsed = time.Since(start)
	if err := s.hooks.Invoke(ctx, hook.After, ev); err != nil {
		hookErrors.WithLabelValues("after").Inc()
		ctxlog.From(ctx).Warn("after hook failed", "path", ev.Path, "error", err)
	}

	s.respondJSON(w, http.StatusOK, ev.Payload)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	path := strings.Trim(chi.URLParam(r, "*"), "/")

	ev := &hook.Event{Path: path, Request: r}
	if err := s.hooks.Invoke(ctx, hook.Before, ev); err != nil {
		hookErrors.WithLabelValues("before").Inc()
		s.respondError(w, http.StatusInternalServerError, "hook_rejected", err.Error())
		return
	}

	doc, err := s.reg.Resolve(ctx, path)
	if errors.Is(err, registry.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "not_found", fmt.Sprintf("no document at %q", path))
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "scan_failed", err.Error())
		return
	}

	ev.Document = doc
	ev.Payload = doc.Value
	ev.Elapsed = time.Since(start)
	if err := s.hooks.Invoke(ctx, hook.After, ev); err != nil {
		hookErrors.WithLabelValues("after").Inc()
		ctxlog.From(ctx).Warn("after hook failed", "path", ev.Path, "error", err)
	}

	s.respondJSON(w, http.StatusOK, ev.Payload)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": s.reg.Len(),
	})
}
