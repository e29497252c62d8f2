// Package surface provides an in-memory drawing surface: the layer that
// records freehand strokes on top of one document page.
package surface

import "mushaf/internal/domain"

// Canvas records strokes for a single page. A Canvas is confined to the
// reader's dispatch loop and is not safe for concurrent use.
type Canvas struct {
	page        int
	drawing     domain.Drawing
	tool        domain.ToolConfig
	passthrough bool
	onChange    func(domain.Drawing)
	released    bool
}

// New returns an empty canvas bound to page.
func New(page int) *Canvas {
	return &Canvas{page: page, tool: domain.DefaultTool(), passthrough: true}
}

// Page returns the page index the canvas is bound to.
func (c *Canvas) Page() int { return c.page }

// Drawing returns a copy of the current drawing.
func (c *Canvas) Drawing() domain.Drawing { return c.drawing.Clone() }

// SetDrawing replaces the drawing without raising a change notification.
func (c *Canvas) SetDrawing(d domain.Drawing) { c.drawing = d.Clone() }

// OnChange registers the change callback, replacing any previous one.
func (c *Canvas) OnChange(fn func(domain.Drawing)) { c.onChange = fn }

// SetPassthrough lets input fall through to the page beneath.
func (c *Canvas) SetPassthrough(on bool) { c.passthrough = on }

// Passthrough reports whether input falls through.
func (c *Canvas) Passthrough() bool { return c.passthrough }

// SetTool selects the inking tool used for new strokes.
func (c *Canvas) SetTool(t domain.ToolConfig) {
	if t.Valid() {
		c.tool = t
	}
}

// Tool returns the active inking tool.
func (c *Canvas) Tool() domain.ToolConfig { return c.tool }

// Release detaches the canvas; later input is ignored.
func (c *Canvas) Release() {
	c.onChange = nil
	c.released = true
}

// Released reports whether the canvas has been detached.
func (c *Canvas) Released() bool { return c.released }

// Stroke appends a stroke drawn with the active tool, as if the user drew
// it. It reports false when input passes through or the canvas is released.
func (c *Canvas) Stroke(points ...domain.Point) bool {
	if c.released || c.passthrough || len(points) == 0 {
		return false
	}
	c.drawing.Strokes = append(c.drawing.Strokes, domain.Stroke{
		Ink:    c.tool.Ink,
		Color:  c.tool.Color,
		Width:  c.tool.Width,
		Points: append([]domain.Point(nil), points...),
	})
	c.changed()
	return true
}

// Replace swaps in a whole drawing as user input (paste, undo, erase).
func (c *Canvas) Replace(d domain.Drawing) bool {
	if c.released {
		return false
	}
	c.drawing = d.Clone()
	c.changed()
	return true
}

// Clear erases every stroke and notifies.
func (c *Canvas) Clear() {
	if c.released {
		return
	}
	c.drawing = domain.Drawing{}
	c.changed()
}

func (c *Canvas) changed() {
	if c.onChange != nil {
		c.onChange(c.drawing.Clone())
	}
}
