// Package httpserver wires the docsite HTTP handlers into a server.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docsite/internal/eventstore"
	derrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	handlers "git.home.luguber.info/inful/docsite/internal/server/handlers"
	smw "git.home.luguber.info/inful/docsite/internal/server/middleware"
)

const (
	defaultAddr       = ":8080"
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 120 * time.Second
)

// Index is everything the server needs from the indexer.
type Index interface {
	handlers.DocIndex
	handlers.Refresher
	handlers.PassSource
}

// Options configures a Server.
type Options struct {
	Addr             string
	Source           string
	Index            Index
	Purger           handlers.Purger
	History          eventstore.Store          // optional
	Stylesheet       handlers.StylesheetWriter // optional
	RevalidateSecret string
	Registry         *prom.Registry // nil serves the default registry
}

// Server manages the docsite HTTP endpoints.
type Server struct {
	opts         Options
	httpServer   *http.Server
	listener     net.Listener
	errorAdapter *derrors.HTTPErrorAdapter

	docsHandlers       *handlers.DocsHandlers
	revalidateHandlers *handlers.RevalidateHandlers
	monitoringHandlers *handlers.MonitoringHandlers

	// middleware chain
	mchain func(http.Handler) http.Handler
}

// New constructs a new HTTP server wiring instance.
func New(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = defaultAddr
	}
	s := &Server{
		opts:         opts,
		errorAdapter: derrors.NewHTTPErrorAdapter(slog.Default()),
	}
	s.docsHandlers = handlers.NewDocsHandlers(opts.Index)
	s.revalidateHandlers = handlers.NewRevalidateHandlers(opts.RevalidateSecret, opts.Purger, opts.Index)
	s.monitoringHandlers = handlers.NewMonitoringHandlers(opts.Source, opts.Index, opts.History, opts.Stylesheet)
	s.mchain = smw.Chain(slog.Default(), s.errorAdapter)
	return s
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/docs", s.docsHandlers.HandleList)
	mux.HandleFunc("GET /api/docs/{slug}", s.docsHandlers.HandleDocument)
	mux.HandleFunc("GET /api/sidebar", s.docsHandlers.HandleSidebar)
	mux.HandleFunc("GET /api/search", s.docsHandlers.HandleSearch)
	mux.HandleFunc("GET /api/metadata", s.docsHandlers.HandleMetadata)
	mux.HandleFunc("GET /api/passes", s.monitoringHandlers.HandlePasses)
	mux.HandleFunc("POST /api/revalidate", s.revalidateHandlers.HandleRevalidate)
	mux.HandleFunc("GET /healthz", s.monitoringHandlers.HandleHealthCheck)
	mux.HandleFunc("GET /assets/highlight.css", s.monitoringHandlers.HandleStylesheet)
	mux.Handle("GET /metrics", metrics.HTTPHandler(s.opts.Registry))
	return s.mchain(mux)
}

// Start binds the listen address and serves in the background. Binding
// happens before returning so address conflicts fail fast.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryRuntime, "http startup failed").
			WithContext("addr", s.opts.Addr).
			Build()
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", logfields.Error(err))
		}
	}()
	slog.Info("HTTP server started", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.opts.Addr
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	slog.Info("HTTP server stopped")
	return nil
}
