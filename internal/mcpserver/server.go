// Package mcpserver exposes the registry to MCP clients over stdio.
//
// Four tools cover the read surface: list_documents, get_document,
// query_document, and search_documents. Documents are also reachable
// as resources under docket://{path}. Reads run the same hook pipeline
// as the REST routes.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/agentic-research/docket/internal/hook"
	"github.com/agentic-research/docket/internal/query"
	"github.com/agentic-research/docket/internal/registry"
	"github.com/agentic-research/docket/internal/search"
)

// Server bundles the registry, hook dispatcher, and search cache
// behind the MCP tool handlers.
type Server struct {
	reg     *registry.Registry
	hooks   *hook.Dispatcher
	cache   *search.Cache
	log     *slog.Logger
	version string
}

// New builds an MCP server facade over the registry.
func New(reg *registry.Registry, hooks *hook.Dispatcher, log *slog.Logger, version string) *Server {
	return &Server{
		reg:     reg,
		hooks:   hooks,
		cache:   search.NewCache(reg),
		log:     log,
		version: version,
	}
}

// MCPServer assembles the tool and resource surface.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer(
		"docket",
		s.version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
	)

	srv.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List the logical paths of every document in the registry."),
	), s.handleListDocuments)

	srv.AddTool(mcp.NewTool("get_document",
		mcp.WithDescription("Fetch one document by its logical path."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Logical path of the document, e.g. chat/assistant."),
		),
	), s.handleGetDocument)

	srv.AddTool(mcp.NewTool("query_document",
		mcp.WithDescription("Evaluate a JSONPath selector against one document."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Logical path of the document."),
		),
		mcp.WithString("selector",
			mcp.Required(),
			mcp.Description("JSONPath selector, e.g. $.name."),
		),
	), s.handleQueryDocument)

	srv.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Find documents whose path, keys, or string values contain every query token."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Space-separated search tokens."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of paths to return."),
		),
	), s.handleSearchDocuments)

	srv.AddResourceTemplate(mcp.NewResourceTemplate(
		"docket://{path}",
		"Documents",
		mcp.WithTemplateDescription("JSON documents by logical path."),
		mcp.WithTemplateMIMEType("application/json"),
	), s.handleReadResource)

	return srv
}

// ServeStdio blocks serving MCP over stdin and stdout.
func (s *Server) ServeStdio() error {
	s.log.Info("serving MCP on stdio", "version", s.version)
	return server.ServeStdio(s.MCPServer())
}

// resolve runs the hook pipeline around a registry read and returns
// the payload after-hooks settled on. req is the boundary request,
// forwarded opaquely on the event.
func (s *Server) resolve(ctx context.Context, path string, req any) (any, error) {
	start := time.Now()

	ev := &hook.Event{Path: path, Request: req}
	if err := s.hooks.Invoke(ctx, hook.Before, ev); err != nil {
		return nil, err
	}

	doc, err := s.reg.Resolve(ctx, path)
	if err != nil {
		return nil, err
	}

	ev.Document = doc
	ev.Payload = doc.Value
	ev.Elapsed = time.Since(start)
	if err := s.hooks.Invoke(ctx, hook.After, ev); err != nil {
		s.log.Warn("after hook failed", "path", path, "error", err)
	}
	return ev.Payload, nil
}

func (s *Server) handleListDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	ev := &hook.Event{Path: "list", Request: req}
	if err := s.hooks.Invoke(ctx, hook.Before, ev); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	docs, err := s.reg.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	paths := make([]string, len(docs))
	for i, d := range docs {
		paths[i] = d.Path
	}

	ev.Payload = paths
	ev.Elapsed = time.Since(start)
	if err := s.hooks.Invoke(ctx, hook.After, ev); err != nil {
		s.log.Warn("after hook failed", "path", ev.Path, "error", err)
	}
	return jsonResult(ev.Payload)
}

func (s *Server) handleGetDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	value, err := s.resolve(ctx, strings.Trim(path, "/"), req)
	if errors.Is(err, registry.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("no document at %q", path)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(value)
}

func (s *Server) handleQueryDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	selector, err := req.RequireString("selector")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	value, err := s.resolve(ctx, strings.Trim(path, "/"), req)
	if errors.Is(err, registry.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("no document at %q", path)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	matches, err := query.Eval(value, selector)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(matches)
}

func (s *Server) handleSearchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", 0)

	ix, err := s.cache.Index(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	paths := ix.Search(q)
	if limit > 0 && len(paths) > limit {
		paths = paths[:limit]
	}
	return jsonResult(paths)
}

func (s *Server) handleReadResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	path := strings.Trim(strings.TrimPrefix(req.Params.URI, "docket://"), "/")

	value, err := s.resolve(ctx, path, req)
	if err != nil {
		return nil, err
	}

	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document %s: %w", path, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}
