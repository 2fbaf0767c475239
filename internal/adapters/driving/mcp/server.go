package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/veritas-cli/internal/logger"
)

// Version is the MCP server version.
const Version = "0.2.0"

// Server defaults.
const (
	// DefaultMaxFileBytes caps documents read from disk by evaluate_document.
	DefaultMaxFileBytes = 32 << 20

	shutdownTimeout = 5 * time.Second
)

// Server is the MCP server for Veritas.
type Server struct {
	ports        *Ports
	server       *mcp.Server
	maxFileBytes int64
}

// Option configures a Server.
type Option func(*Server)

// WithMaxFileBytes caps the size of documents read from disk.
func WithMaxFileBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxFileBytes = n
		}
	}
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "veritas",
		Version: Version,
	}

	s := &Server{
		ports:        ports,
		server:       mcp.NewServer(impl, nil),
		maxFileBytes: DefaultMaxFileBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves MCP over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("mcp: serving on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves MCP over streamable HTTP on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp: http shutdown", "err", err)
		}
	}()

	logger.Debug("mcp: serving on http %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
