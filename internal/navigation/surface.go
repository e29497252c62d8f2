package navigation

import (
	"context"

	"mushaf/internal/domain"
)

// Surface is the drawing layer placed over one visible page.
type Surface interface {
	Drawing() domain.Drawing
	// SetDrawing replaces the content without a change notification.
	SetDrawing(d domain.Drawing)
	// OnChange registers the callback fired after user input.
	OnChange(fn func(domain.Drawing))
	SetPassthrough(on bool)
	SetTool(t domain.ToolConfig)
	Release()
}

// SurfaceFactory creates the surface for a page.
type SurfaceFactory func(page int) Surface

// Emitter receives the controller's events. service.EventEmitter
// satisfies it.
type Emitter interface {
	Emit(ctx context.Context, event string, data any)
}
