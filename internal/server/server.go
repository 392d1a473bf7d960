package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"conductor/internal/config"
	"conductor/internal/orchestrator"
	"conductor/internal/registry"
	"conductor/internal/telemetry"
	"conductor/pkg/logging"
)

const subsystem = "Server"

// Server wraps an MCP server exposing the conductor control tools over the
// configured transport.
type Server struct {
	cfg       config.ServerConfig
	orch      *orchestrator.Orchestrator
	registry  *registry.Registry
	telemetry *telemetry.Sink

	mcpServer *server.MCPServer

	// Transport-specific servers, set by Start.
	sseServer            *server.SSEServer
	streamableHTTPServer *server.StreamableHTTPServer
	stdioServer          *server.StdioServer

	ctx        context.Context
	cancelFunc context.CancelFunc
	mu         sync.Mutex
	started    bool
}

// Config carries the server dependencies.
type Config struct {
	Server    config.ServerConfig
	Version   string
	Orch      *orchestrator.Orchestrator
	Registry  *registry.Registry
	Telemetry *telemetry.Sink
}

// New builds the MCP server and registers every control tool. The server
// does not accept connections until Start.
func New(cfg Config) *Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		cfg:       cfg.Server,
		orch:      cfg.Orch,
		registry:  cfg.Registry,
		telemetry: cfg.Telemetry,
	}
	s.mcpServer = server.NewMCPServer(
		"conductor",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// Start launches the configured transport. HTTP transports serve in a
// background goroutine; stdio reads the process's stdin until the context is
// cancelled. Starting twice is an error.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("server already started")
	}
	s.started = true
	s.ctx, s.cancelFunc = context.WithCancel(ctx)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	switch s.cfg.Transport {
	case config.TransportSSE:
		logging.Info(subsystem, "Starting MCP server with SSE transport on %s", addr)
		baseURL := fmt.Sprintf("http://%s:%d", s.cfg.Host, s.cfg.Port)
		s.sseServer = server.NewSSEServer(
			s.mcpServer,
			server.WithBaseURL(baseURL),
			server.WithSSEEndpoint("/sse"),
			server.WithMessageEndpoint("/message"),
			server.WithKeepAlive(true),
			server.WithKeepAliveInterval(30*time.Second),
		)
		sseServer := s.sseServer
		go func() {
			if err := sseServer.Start(addr); err != nil && err != http.ErrServerClosed {
				logging.Error(subsystem, err, "SSE server error")
			}
		}()

	case config.TransportStdio:
		logging.Info(subsystem, "Starting MCP server with stdio transport")
		s.stdioServer = server.NewStdioServer(s.mcpServer)
		stdioServer := s.stdioServer
		runCtx := s.ctx
		go func() {
			if err := stdioServer.Listen(runCtx, os.Stdin, os.Stdout); err != nil {
				logging.Error(subsystem, err, "Stdio server error")
			}
		}()

	case config.TransportStreamableHTTP:
		fallthrough
	default:
		logging.Info(subsystem, "Starting MCP server with streamable-http transport on %s", addr)
		s.streamableHTTPServer = server.NewStreamableHTTPServer(s.mcpServer)
		streamableServer := s.streamableHTTPServer
		go func() {
			if err := streamableServer.Start(addr); err != nil && err != http.ErrServerClosed {
				logging.Error(subsystem, err, "Streamable HTTP server error")
			}
		}()
	}

	return nil
}

// Stop shuts the transport down, allowing in-flight requests five seconds to
// finish. The stdio transport stops via context cancellation.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("server not started")
	}
	cancelFunc := s.cancelFunc
	sseServer := s.sseServer
	streamableServer := s.streamableHTTPServer
	s.mu.Unlock()

	logging.Info(subsystem, "Stopping MCP server")

	if cancelFunc != nil {
		cancelFunc()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if sseServer != nil {
		if err := sseServer.Shutdown(shutdownCtx); err != nil {
			logging.Error(subsystem, err, "Error shutting down SSE server")
		}
	}
	if streamableServer != nil {
		if err := streamableServer.Shutdown(shutdownCtx); err != nil {
			logging.Error(subsystem, err, "Error shutting down streamable HTTP server")
		}
	}

	s.mu.Lock()
	s.started = false
	s.sseServer = nil
	s.streamableHTTPServer = nil
	s.stdioServer = nil
	s.mu.Unlock()

	return nil
}

// Endpoint returns the address clients connect to for the configured
// transport.
func (s *Server) Endpoint() string {
	switch s.cfg.Transport {
	case config.TransportSSE:
		return fmt.Sprintf("http://%s:%d/sse", s.cfg.Host, s.cfg.Port)
	case config.TransportStdio:
		return "stdio"
	default:
		return fmt.Sprintf("http://%s:%d/mcp", s.cfg.Host, s.cfg.Port)
	}
}
