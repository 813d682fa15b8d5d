// Package mcp exposes the assistant over the Model Context Protocol so
// other agents can ask questions and manage memories and tasks as tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/domain/memory"
	"github.com/arenlabs/aren/internal/domain/task"
)

// defaultDevice is the conversation context used when a tool call names none.
const defaultDevice = "default_user"

// Processor runs one utterance through the dispatch pipeline.
type Processor interface {
	ProcessInput(ctx context.Context, deviceID, input string) string
}

// ContextStore manages per-device memories, tasks, and preferences.
type ContextStore interface {
	AddMemory(ctx context.Context, deviceID, note, contextTag string, expiresAt *time.Time) (*memory.Note, error)
	AddTask(ctx context.Context, deviceID, description string, priority int, due *time.Time) (*task.Task, error)
	PendingTasks(ctx context.Context, deviceID string) ([]task.Task, error)
	Preferences(ctx context.Context, deviceID string) (map[string]string, error)
}

// ServerConfig holds the MCP server settings.
type ServerConfig struct {
	Addr    string // HTTP listen address; empty means stdio only
	APIKey  string // bearer token for the HTTP transport; empty disables auth
	Name    string
	Version string
}

// ServerDeps are the capabilities the tools are built on. Nil fields turn
// the corresponding tools into error results rather than panics.
type ServerDeps struct {
	Processor Processor
	Contexts  ContextStore
	Catalog   *capability.Catalog
}

// Server wires the assistant's tools and resources onto an MCP server.
type Server struct {
	cfg        ServerConfig
	deps       ServerDeps
	mcpServer  *mcpserver.MCPServer
	httpServer *http.Server
}

// NewServer creates the MCP server and registers all tools and resources.
func NewServer(cfg ServerConfig, deps ServerDeps) *Server {
	s := &Server{cfg: cfg, deps: deps}
	s.mcpServer = mcpserver.NewMCPServer(cfg.Name, cfg.Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithResourceCapabilities(false, false),
	)
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for stdio serving and tests.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// Start serves the MCP protocol over streamable HTTP on the configured
// address. It returns once the listener is up; with no address it is a
// no-op and the server is reachable over stdio only.
func (s *Server) Start() error {
	if s.cfg.Addr == "" {
		return nil
	}
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("mcp listen: %w", err)
	}
	handler := AuthMiddleware(s.cfg.APIKey, mcpserver.NewStreamableHTTPServer(s.mcpServer))
	s.httpServer = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("mcp server failed", "error", err)
		}
	}()
	slog.Info("mcp server listening", "addr", ln.Addr().String())
	return nil
}

// Stop shuts the HTTP transport down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// ServeStdio serves the MCP protocol on stdin and stdout, blocking until
// the stream closes.
func (s *Server) ServeStdio() error {
	return mcpserver.ServeStdio(s.mcpServer)
}

func toolResultJSON(data string) *mcplib.CallToolResult {
	return mcplib.NewToolResultText(data)
}
