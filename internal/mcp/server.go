package mcp

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/dshills/travelrec/internal/logging"
	"github.com/dshills/travelrec/internal/service"
)

const (
	// ServerName is the MCP server name
	ServerName = "travelrec"
)

// ServerVersion is the reported server version, set from the binary's version
var ServerVersion = "1.0.0"

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp *server.MCPServer
	svc *service.Service
	log zerolog.Logger
}

// NewServer creates a new MCP server backed by svc
func NewServer(svc *service.Service) *Server {
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcp: mcpServer,
		svc: svc,
		log: logging.With("mcp"),
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info().Str("name", ServerName).Str("version", ServerVersion).Msg("MCP server starting on stdio")
	stdio := server.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(recommendPlacesTool(), s.handleRecommendPlaces)
	s.mcp.AddTool(submitReviewTool(), s.handleSubmitReview)
	s.mcp.AddTool(explainGraphTool(), s.handleExplainGraph)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
