// Package server exposes the chart and analysis operations as MCP tools.
package server

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/roach88/stellium/internal/service"
)

// Name is the implementation name reported to MCP clients.
const Name = "stellium"

// Server is the stellium MCP server. Tool failures are returned as tool
// errors whose text starts with the error kind.
type Server struct {
	svc *service.Service
	mcp *mcp.Server
	log *slog.Logger
}

// New creates a Server backed by svc with every tool registered.
func New(svc *service.Service, version string) *Server {
	s := &Server{
		svc: svc,
		mcp: mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil),
		log: slog.With(slog.String("component", "server")),
	}
	s.registerChartTools()
	s.registerAnalysisTools()
	return s
}

// Run serves the tools over transport until the client disconnects or ctx
// is cancelled.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	s.log.Info("serving", slog.String("name", Name))
	return s.mcp.Run(ctx, transport)
}

// ServeStdio serves over stdin/stdout. Nothing else may write to stdout
// while it runs.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

// fail logs a tool failure and returns it for the SDK to report as a tool
// error.
func (s *Server) fail(tool string, err error) error {
	s.log.Debug("tool failed", slog.String("tool", tool), slog.Any("error", err))
	return err
}
