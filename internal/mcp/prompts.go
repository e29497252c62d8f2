package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("mark_page",
		mcp.WithPromptDescription("Guide through opening a book on a page and marking it"),
		mcp.WithArgument("documentId",
			mcp.ArgumentDescription("ID of the book"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("page",
			mcp.ArgumentDescription("0-based page index"),
			mcp.RequiredArgument(),
		),
	), s.handleMarkPagePrompt)
}

func (s *Server) handleMarkPagePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	documentID := req.Params.Arguments["documentId"]
	page := req.Params.Arguments["page"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Mark page %s of %s", page, documentID),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Mark page %s of the book "%s". Follow these steps:

1. Use open_document with documentId "%s", then call get_session until loading is false
2. Use go_to_page to show page %s and get_view to confirm it is visible
3. Turn inking on with set_annotation_mode and pick a highlighter with set_tool (ink "marker", a translucent color)
4. Draw with draw_stroke on page %s
5. Call save when done

Pages are 0-based. In a right-to-left book the next page is on the left.`, page, documentID, documentID, page, page),
				},
			},
		},
	}, nil
}
