package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"mushaf/internal/domain"
)

func (s *Server) registerDocumentTools() {
	// ── list_documents ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List the books available in the library"),
	), s.handleListDocuments)

	// ── open_document ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("open_document",
		mcp.WithDescription("Open a book, restoring its last page and drawings. Loading finishes asynchronously; poll get_session until loading is false."),
		mcp.WithString("documentId",
			mcp.Description("ID of the book (see list_documents)"),
			mcp.Required(),
		),
	), s.handleOpenDocument)

	// ── close_document ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("close_document",
		mcp.WithDescription("Save and close the open book"),
	), s.handleCloseDocument)

	// ── get_session ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get the reading session: open book, current page, orientation, annotation mode"),
	), s.handleGetSession)

	// ── save ───────────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("save",
		mcp.WithDescription("Persist the drawings and current page of the open book"),
	), s.handleSave)

	// ── set_lifecycle ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_lifecycle",
		mcp.WithDescription("Report a host application phase change. background saves everything; active restores the saved tool."),
		mcp.WithString("phase",
			mcp.Description("active, inactive or background"),
			mcp.Required(),
		),
	), s.handleSetLifecycle)
}

func (s *Server) handleListDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.reader.Documents(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResult(docs)
}

func (s *Server) handleOpenDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID := req.GetString("documentId", "")
	if documentID == "" {
		return nil, fmt.Errorf("documentId is required")
	}
	session, err := s.reader.Open(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	return jsonResult(session)
}

func (s *Server) handleCloseDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	closed, err := s.reader.Close(ctx)
	if err != nil {
		return nil, fmt.Errorf("close document: %w", err)
	}
	if !closed {
		return textResult("No book was open"), nil
	}
	return textResult("Book closed"), nil
}

func (s *Server) handleGetSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.reader.Session(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResult(session)
}

func (s *Server) handleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.reader.Save(ctx); err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}
	return textResult("Saved"), nil
}

func (s *Server) handleSetLifecycle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phase := domain.LifecyclePhase(req.GetString("phase", ""))
	if err := s.reader.Lifecycle(ctx, phase); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Lifecycle: %s", phase)), nil
}
