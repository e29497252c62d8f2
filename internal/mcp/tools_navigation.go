package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"mushaf/internal/domain"
)

func (s *Server) registerNavigationTools() {
	// ── get_view ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_view",
		mcp.WithDescription("Get the pages on screen: the visible pair, its left and right slots, and which visible pages carry drawings"),
	), s.handleGetView)

	// ── go_to_page ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("go_to_page",
		mcp.WithDescription("Show a page. Pages are 0-based; out-of-range pages are ignored."),
		mcp.WithNumber("page",
			mcp.Description("0-based page index"),
			mcp.Required(),
		),
	), s.handleGoToPage)

	// ── next_page / previous_page ──────────────────────
	s.mcp.AddTool(mcp.NewTool("next_page",
		mcp.WithDescription("Advance to the next page or spread in reading order"),
	), s.handleNextPage)
	s.mcp.AddTool(mcp.NewTool("previous_page",
		mcp.WithDescription("Go back to the previous page or spread in reading order"),
	), s.handlePreviousPage)

	// ── turn_page ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("turn_page",
		mcp.WithDescription("Turn the page on a physical side of the screen. In a right-to-left book turning the left side advances."),
		mcp.WithString("side",
			mcp.Description("left or right"),
			mcp.Required(),
		),
	), s.handleTurnPage)

	// ── seek ───────────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("seek",
		mcp.WithDescription("Jump to the page under a position of the progress bar"),
		mcp.WithNumber("position",
			mcp.Description("0 = left edge, 1 = right edge. A right-to-left bar starts on the right."),
			mcp.Required(),
		),
	), s.handleSeek)

	// ── set_orientation ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_orientation",
		mcp.WithDescription("Switch between one page and two-page spreads, keeping the current page"),
		mcp.WithString("orientation",
			mcp.Description("single or paired"),
			mcp.Required(),
		),
	), s.handleSetOrientation)
}

func (s *Server) handleGetView(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, err := s.reader.View(ctx)
	if err != nil {
		return nil, err
	}
	progress, err := s.reader.Progress(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResult(struct {
		domain.View
		Left     domain.PageSlot `json:"left"`
		Right    domain.PageSlot `json:"right"`
		Progress float64         `json:"progress"`
	}{View: v, Left: v.Pair.Left(), Right: v.Pair.Right(), Progress: progress})
}

// moved reports the outcome of a navigation request.
func (s *Server) moved(ctx context.Context, ok bool, err error, what string) (*mcp.CallToolResult, error) {
	if err != nil {
		return nil, err
	}
	if !ok {
		return textResult(fmt.Sprintf("%s: no such page, view unchanged", what)), nil
	}
	session, err := s.reader.Session(ctx)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Now on page %d", session.CurrentPage)), nil
}

func (s *Server) handleGoToPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := intArg(req.GetArguments(), "page")
	if err != nil {
		return nil, err
	}
	ok, err := s.reader.GoTo(ctx, page)
	return s.moved(ctx, ok, err, fmt.Sprintf("go to %d", page))
}

func (s *Server) handleNextPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ok, err := s.reader.Forward(ctx)
	return s.moved(ctx, ok, err, "next page")
}

func (s *Server) handlePreviousPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ok, err := s.reader.Backward(ctx)
	return s.moved(ctx, ok, err, "previous page")
}

func (s *Server) handleTurnPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	side, err := domain.ParseSide(req.GetString("side", ""))
	if err != nil {
		return nil, err
	}
	ok, err := s.reader.Turn(ctx, side)
	return s.moved(ctx, ok, err, fmt.Sprintf("turn %s", side))
}

func (s *Server) handleSeek(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pos, ok := req.GetArguments()["position"].(float64)
	if !ok {
		return nil, fmt.Errorf("position is required")
	}
	page, err := s.reader.Seek(ctx, pos)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Now on page %d", page)), nil
}

func (s *Server) handleSetOrientation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	o, err := domain.ParseOrientation(req.GetString("orientation", ""))
	if err != nil {
		return nil, err
	}
	if err := s.reader.SetOrientation(ctx, o); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Orientation: %s", o)), nil
}
