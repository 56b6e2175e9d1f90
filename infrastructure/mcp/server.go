// Package mcp exposes registered tools over the Model Context Protocol.
// It wraps github.com/felixgeelhaar/mcp-go for the transport and wire
// format.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mcpgo "github.com/felixgeelhaar/mcp-go"
	mcpserver "github.com/felixgeelhaar/mcp-go/server"

	"github.com/pulsemon/pulsemon-mcp/domain/tool"
	"github.com/pulsemon/pulsemon-mcp/infrastructure/logging"
	"github.com/pulsemon/pulsemon-mcp/infrastructure/resilience"
)

// Server wraps an MCP server to expose registered tools.
type Server struct {
	srv      *mcpgo.Server
	registry tool.Registry
	executor *resilience.Executor
	info     mcpgo.ServerInfo
	readOnly bool
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	// Name is the server name.
	Name string

	// Version is the server version.
	Version string

	// Registry is the tool registry containing tools to expose.
	Registry tool.Registry

	// Description is an optional server description.
	Description string

	// Instructions provides usage instructions for clients.
	Instructions string

	// ReadOnly hides tools that are not marked read-only.
	ReadOnly bool

	// Executor runs tools with concurrency and failure protection.
	// Defaults to the standard resilient executor.
	Executor *resilience.Executor
}

// NewServer creates an MCP server exposing the registry's tools.
func NewServer(cfg ServerConfig) *Server {
	info := mcpgo.ServerInfo{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Description: cfg.Description,
		Capabilities: mcpgo.Capabilities{
			Tools: true,
		},
	}

	var opts []mcpgo.Option
	if cfg.Instructions != "" {
		opts = append(opts, mcpgo.WithInstructions(cfg.Instructions))
	}

	srv := mcpgo.NewServer(info, opts...)

	executor := cfg.Executor
	if executor == nil {
		executor = resilience.NewDefaultExecutor()
	}

	s := &Server{
		srv:      srv,
		registry: cfg.Registry,
		executor: executor,
		info:     info,
		readOnly: cfg.ReadOnly,
	}

	if cfg.Registry != nil {
		s.registerTools()
	}

	return s
}

// registerTools registers the registry's tools with the MCP server,
// honoring read-only mode.
func (s *Server) registerTools() {
	for _, t := range s.registry.List() {
		if s.readOnly && !t.Annotations().ReadOnly {
			logging.Debug().
				Add(logging.Component("mcp")).
				Add(logging.ToolName(t.Name())).
				Msg("skipping non-read-only tool")
			continue
		}
		s.registerTool(t)
	}
}

// registerTool registers a single tool with the MCP server.
func (s *Server) registerTool(t tool.Tool) {
	handler := func(ctx context.Context, input json.RawMessage) (string, error) {
		start := time.Now()
		result, err := s.executor.Execute(ctx, t, input)
		logging.Info().
			Add(logging.Component("mcp")).
			Add(logging.ToolName(t.Name())).
			Add(logging.Duration(time.Since(start))).
			Add(logging.ErrorField(err)).
			Msg("tool executed")
		if err != nil {
			return "", err
		}
		return string(result.Output), nil
	}

	s.srv.Tool(t.Name()).
		Description(t.Description()).
		Handler(handler)
}

// Server returns the underlying mcp-go server.
func (s *Server) Server() *mcpgo.Server {
	return s.srv
}

// Use adds middleware to the server.
func (s *Server) Use(middlewares ...mcpserver.Middleware) {
	s.srv.Use(middlewares...)
}

// ServeStdio runs the server over stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context, opts ...mcpgo.ServeOption) error {
	return mcpgo.ServeStdio(ctx, s.srv, opts...)
}

// ServeHTTP runs the server over HTTP with SSE.
func (s *Server) ServeHTTP(ctx context.Context, addr string, opts ...mcpgo.HTTPOption) error {
	return mcpgo.ServeHTTP(ctx, s.srv, addr, opts...)
}

// AddTool adds a tool to the server dynamically.
func (s *Server) AddTool(t tool.Tool) error {
	if s.registry != nil {
		if err := s.registry.Register(t); err != nil {
			return fmt.Errorf("register tool: %w", err)
		}
	}
	s.registerTool(t)
	return nil
}
