package mcpserver

import (
	"context"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"

	"mushaf/internal/domain"
)

func (s *Server) registerAnnotationTools() {
	s.mcp.AddTool(mcp.NewTool("set_annotation_mode",
		mcp.WithDescription("Turn inking on or off. While off, drawing input passes through to the page."),
		mcp.WithBoolean("enabled", mcp.Description("true to annotate"), mcp.Required()),
	), s.handleSetAnnotationMode)

	s.mcp.AddTool(mcp.NewTool("set_tool",
		mcp.WithDescription("Select the inking tool used for new strokes"),
		mcp.WithString("ink", mcp.Description("pen, pencil, marker or monoline"), mcp.Required()),
		mcp.WithString("color", mcp.Description("Color hex, #RRGGBB or #RRGGBBAA (optional, default black)")),
		mcp.WithNumber("width", mcp.Description("Stroke width in points"), mcp.Required()),
	), s.handleSetTool)

	s.mcp.AddTool(mcp.NewTool("draw_stroke",
		mcp.WithDescription("Draw one stroke with the selected tool on a visible page. Requires annotation mode."),
		mcp.WithNumber("page", mcp.Description("0-based index of a visible page"), mcp.Required()),
		mcp.WithString("pointsJSON", mcp.Description(`JSON array of points in page coordinates, e.g. [{"x":10,"y":20},{"x":30,"y":25,"p":0.8}]`), mcp.Required()),
	), s.handleDrawStroke)

	s.mcp.AddTool(mcp.NewTool("replace_drawing",
		mcp.WithDescription("Replace the whole drawing of a visible page. Requires annotation mode."),
		mcp.WithNumber("page", mcp.Description("0-based index of a visible page"), mcp.Required()),
		mcp.WithString("drawingJSON", mcp.Description(`JSON drawing: {"strokes":[{"ink":"pen","color":{"r":0,"g":0,"b":0,"a":1},"width":3,"points":[...]}]}`), mcp.Required()),
	), s.handleReplaceDrawing)

	s.mcp.AddTool(mcp.NewTool("get_drawings",
		mcp.WithDescription("Get the drawings of the open book, or of one page"),
		mcp.WithNumber("page", mcp.Description("0-based page index (optional)")),
	), s.handleGetDrawings)

	s.mcp.AddTool(mcp.NewTool("clear_visible_pages",
		mcp.WithDescription("🛑 DESTRUCTIVE: Erase the drawings of the pages on screen"),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleClearVisible)

	s.mcp.AddTool(mcp.NewTool("clear_all_drawings",
		mcp.WithDescription("🛑 DESTRUCTIVE: Erase every drawing of the open book"),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleClearAll)
}

func boolPtr(v bool) *bool { return &v }

func (s *Server) handleSetAnnotationMode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	on, ok := req.GetArguments()["enabled"].(bool)
	if !ok {
		return nil, fmt.Errorf("enabled is required")
	}
	if err := s.reader.SetAnnotationMode(ctx, on); err != nil {
		return nil, err
	}
	if on {
		return textResult("Annotation mode on"), nil
	}
	return textResult("Annotation mode off"), nil
}

func (s *Server) handleSetTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	width, ok := args["width"].(float64)
	if !ok {
		return nil, fmt.Errorf("width is required")
	}
	tool := domain.ToolConfig{
		Ink:   domain.ParseInk(req.GetString("ink", "")),
		Color: domain.RGBA{A: 1},
		Width: width,
	}
	if hex := req.GetString("color", ""); hex != "" {
		c, err := parseColor(hex)
		if err != nil {
			return nil, err
		}
		tool.Color = c
	}
	if err := s.reader.SetTool(ctx, tool); err != nil {
		return nil, err
	}
	return jsonResult(tool)
}

func (s *Server) handleDrawStroke(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := intArg(req.GetArguments(), "page")
	if err != nil {
		return nil, err
	}
	var points []domain.Point
	if err := parseJSON(req.GetString("pointsJSON", ""), &points); err != nil {
		return nil, fmt.Errorf("invalid pointsJSON: %w", err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("pointsJSON must contain at least one point")
	}
	ok, err := s.reader.Stroke(ctx, page, points)
	if err != nil {
		return nil, err
	}
	if !ok {
		return textResult(fmt.Sprintf("Stroke ignored: page %d is not visible or annotation mode is off", page)), nil
	}
	return textResult(fmt.Sprintf("Stroke added to page %d", page)), nil
}

func (s *Server) handleReplaceDrawing(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := intArg(req.GetArguments(), "page")
	if err != nil {
		return nil, err
	}
	var d domain.Drawing
	if err := parseJSON(req.GetString("drawingJSON", ""), &d); err != nil {
		return nil, fmt.Errorf("invalid drawingJSON: %w", err)
	}
	ok, err := s.reader.DrawOnPage(ctx, page, d)
	if err != nil {
		return nil, err
	}
	if !ok {
		return textResult(fmt.Sprintf("Drawing ignored: page %d is not visible or annotation mode is off", page)), nil
	}
	return textResult(fmt.Sprintf("Drawing of page %d replaced", page)), nil
}

type pageDrawing struct {
	Page    int            `json:"page"`
	Drawing domain.Drawing `json:"drawing"`
}

func (s *Server) handleGetDrawings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	drawings, err := s.reader.Drawings(ctx)
	if err != nil {
		return nil, err
	}
	args := req.GetArguments()
	if _, has := args["page"]; has {
		page, err := intArg(args, "page")
		if err != nil {
			return nil, err
		}
		return jsonResult(pageDrawing{Page: page, Drawing: drawings[page]})
	}

	out := make([]pageDrawing, 0, len(drawings))
	for p, d := range drawings {
		out = append(out, pageDrawing{Page: p, Drawing: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Page < out[j].Page })
	return jsonResult(out)
}

func (s *Server) handleClearVisible(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pages, err := s.reader.ClearVisible(ctx)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Cleared pages %v", pages)), nil
}

func (s *Server) handleClearAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.reader.ClearAll(ctx); err != nil {
		return nil, err
	}
	return textResult("All drawings cleared"), nil
}
