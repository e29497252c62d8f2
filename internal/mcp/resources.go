package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	uriDocuments = "mushaf://documents"
	uriSession   = "mushaf://session"
	uriView      = "mushaf://view"
)

func (s *Server) registerResources() {
	// ── mushaf://documents ─────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		uriDocuments,
		"Library",
		mcp.WithMIMEType("application/json"),
	), s.handleDocumentsResource)

	// ── mushaf://session ───────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		uriSession,
		"Reading Session",
		mcp.WithMIMEType("application/json"),
	), s.handleSessionResource)

	// ── mushaf://view ──────────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		uriView,
		"Visible Pages",
		mcp.WithMIMEType("application/json"),
	), s.handleViewResource)
}

func (s *Server) handleDocumentsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	docs, err := s.reader.Documents(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(uriDocuments, docs)
}

func (s *Server) handleSessionResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	session, err := s.reader.Session(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(uriSession, session)
}

func (s *Server) handleViewResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	v, err := s.reader.View(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(uriView, v)
}
