package mcpserver

import (
	"encoding/json"
	"fmt"

	"mushaf/internal/logging"
	"mushaf/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server is the MCP server of the reader.
// It exposes tools, resources, and prompts so agents can read and annotate.
type Server struct {
	mcp    *server.MCPServer
	reader *service.ReaderService
}

// Deps holds the dependencies passed from the app layer to the MCP server.
type Deps struct {
	Reader   *service.ReaderService
	Notifier *Notifier // optional; attached to the new server
	Version  string
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	if deps.Version == "" {
		deps.Version = "1.0.0"
	}
	s := &Server{reader: deps.Reader}

	s.mcp = server.NewMCPServer(
		"mushaf-mcp",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerDocumentTools()
	s.registerNavigationTools()
	s.registerAnnotationTools()
	s.registerResources()
	s.registerPrompts()

	if deps.Notifier != nil {
		deps.Notifier.Attach(s.mcp)
	}
	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	logging.Logger().Info("starting MCP stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// jsonResource wraps v as a JSON resource body.
func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

var _ service.EventEmitter = (*Notifier)(nil)
