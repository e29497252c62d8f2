// Package navigation keeps the visible page pair, the live drawing
// surfaces and the in-memory drawings of one open document consistent.
//
// A Controller is not safe for concurrent use; the reader service confines
// it to the dispatch loop.
package navigation

import (
	"context"
	"sort"

	"mushaf/internal/document"
	"mushaf/internal/domain"
	"mushaf/internal/ink"
	"mushaf/internal/pairing"
)

// Options configures a Controller. Zero values pick the defaults.
type Options struct {
	Alignment   domain.Alignment
	Direction   domain.Direction
	Orientation domain.Orientation
	Tool        domain.ToolConfig
	Surfaces    SurfaceFactory
	Codec       ink.Codec
	Emitter     Emitter
}

// Controller drives page navigation for one document.
type Controller struct {
	doc        document.Document
	resolver   pairing.Resolver
	direction  domain.Direction
	orient     domain.Orientation
	annotating bool
	tool       domain.ToolConfig

	current int
	pair    domain.PagePair
	bound   bool

	surfaces   map[int]Surface
	drawings   domain.Drawings
	newSurface SurfaceFactory
	codec      ink.Codec
	emitter    Emitter
}

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, string, any) {}

// New creates a controller for doc seeded with drawings. Nothing is
// displayed until the first GoTo.
func New(doc document.Document, drawings domain.Drawings, opts Options) *Controller {
	if opts.Direction == "" {
		opts.Direction = domain.DirectionRTL
	}
	if opts.Orientation == "" {
		opts.Orientation = domain.OrientationSingle
	}
	if !opts.Tool.Valid() {
		opts.Tool = domain.DefaultTool()
	}
	if opts.Codec == nil {
		opts.Codec = ink.JSONCodec{}
	}
	if opts.Emitter == nil {
		opts.Emitter = nopEmitter{}
	}
	return &Controller{
		doc:        doc,
		resolver:   pairing.New(doc.PageCount(), opts.Alignment),
		direction:  opts.Direction,
		orient:     opts.Orientation,
		tool:       opts.Tool,
		surfaces:   make(map[int]Surface),
		drawings:   drawings.Within(doc.PageCount()).Clone(),
		newSurface: opts.Surfaces,
		codec:      opts.Codec,
		emitter:    opts.Emitter,
	}
}

// PageCount returns the number of pages of the document.
func (c *Controller) PageCount() int { return c.resolver.PageCount }

// CurrentPage returns the page the reader is on.
func (c *Controller) CurrentPage() int { return c.current }

// Orientation returns the current layout.
func (c *Controller) Orientation() domain.Orientation { return c.orient }

// AnnotationMode reports whether surfaces accept input.
func (c *Controller) AnnotationMode() bool { return c.annotating }

// Tool returns the tool applied to new surfaces.
func (c *Controller) Tool() domain.ToolConfig { return c.tool }

// Pair returns the visible pair and whether one is displayed.
func (c *Controller) Pair() (domain.PagePair, bool) { return c.pair, c.bound }

// Drawings returns a copy of the in-memory drawings.
func (c *Controller) Drawings() domain.Drawings { return c.drawings.Clone() }

// GoTo displays the pair containing index. Out-of-range requests change
// nothing and report false.
func (c *Controller) GoTo(ctx context.Context, index int) bool {
	pair, ok := c.resolver.PairFor(index, c.orient, c.direction)
	if !ok {
		return false
	}
	c.transition(ctx, pair, index)
	return true
}

// Forward moves to the next pair in reading order.
func (c *Controller) Forward(ctx context.Context) bool {
	if !c.bound {
		return false
	}
	return c.move(ctx, c.resolver.Next)
}

// Backward moves to the previous pair in reading order.
func (c *Controller) Backward(ctx context.Context) bool {
	if !c.bound {
		return false
	}
	return c.move(ctx, c.resolver.Previous)
}

// Turn handles a page-turn gesture on the given physical side.
func (c *Controller) Turn(ctx context.Context, side domain.Side) bool {
	if !c.bound {
		return false
	}
	return c.move(ctx, func(p domain.PagePair) (domain.PagePair, bool) {
		return c.resolver.Adjacent(p, side)
	})
}

func (c *Controller) move(ctx context.Context, step func(domain.PagePair) (domain.PagePair, bool)) bool {
	next, ok := step(c.pair)
	if !ok {
		return false
	}
	c.transition(ctx, next, next.First())
	return true
}

// SetOrientation switches between single and two-up layout, keeping the
// current page.
func (c *Controller) SetOrientation(ctx context.Context, o domain.Orientation) {
	if o == c.orient && c.bound {
		return
	}
	c.orient = o
	if !c.bound {
		return
	}
	pair, ok := c.resolver.PairFor(c.current, o, c.direction)
	if !ok {
		return
	}
	c.transition(ctx, pair, c.current)
}

// SetAnnotationMode enables or disables inking on the live surfaces.
func (c *Controller) SetAnnotationMode(on bool) {
	c.annotating = on
	for _, s := range c.surfaces {
		s.SetPassthrough(!on)
	}
}

// SetTool applies t to the live surfaces and to surfaces created later.
// Invalid tools are ignored.
func (c *Controller) SetTool(t domain.ToolConfig) bool {
	if !t.Valid() {
		return false
	}
	c.tool = t
	for _, s := range c.surfaces {
		s.SetTool(t)
	}
	return true
}

// ClearVisible erases the drawings of the visible pages.
func (c *Controller) ClearVisible(ctx context.Context) []int {
	pages := c.pair.Pages()
	if !c.bound || len(pages) == 0 {
		return nil
	}
	for _, p := range pages {
		delete(c.drawings, p)
		if s, ok := c.surfaces[p]; ok {
			s.SetDrawing(domain.Drawing{})
		}
	}
	c.emitDrawings(ctx, pages)
	return pages
}

// Flush copies the content of the live surfaces into the drawings map.
// It emits drawings:updated and reports true when anything changed.
func (c *Controller) Flush(ctx context.Context) bool {
	changed := c.collect()
	if len(changed) == 0 {
		return false
	}
	c.emitDrawings(ctx, changed)
	return true
}

// ReplaceDrawings adopts drawings loaded or cleared elsewhere. Live
// surfaces are refreshed to match.
func (c *Controller) ReplaceDrawings(ctx context.Context, drawings domain.Drawings) {
	c.drawings = drawings.Within(c.PageCount()).Clone()
	for p, s := range c.surfaces {
		s.SetDrawing(c.drawings[p])
	}
	c.emitDrawings(ctx, c.pair.Pages())
}

// Surface returns the live surface of a visible page.
func (c *Controller) Surface(page int) (Surface, bool) {
	s, ok := c.surfaces[page]
	return s, ok
}

// View returns a snapshot of what is displayed.
func (c *Controller) View() domain.View {
	v := domain.View{
		PageCount:      c.PageCount(),
		CurrentPage:    c.current,
		Orientation:    c.orient,
		AnnotationMode: c.annotating,
		Pair:           c.pair,
		AspectRatio:    document.AspectRatio(c.doc),
		Annotated:      []int{},
	}
	for _, p := range c.pair.Pages() {
		if d, ok := c.drawings[p]; ok && !d.IsEmpty() {
			v.Annotated = append(v.Annotated, p)
		}
	}
	return v
}

// Release detaches every live surface after saving its content.
func (c *Controller) Release(ctx context.Context) {
	c.Flush(ctx)
	c.discard()
	c.bound = false
	c.pair = domain.PagePair{}
}

func (c *Controller) transition(ctx context.Context, pair domain.PagePair, current int) {
	c.collect()
	c.discard()

	c.pair = pair
	c.bound = true
	c.bind()
	c.current = current

	c.emitter.Emit(ctx, domain.EventPageChanged, domain.PageChanged{Page: current})
	c.emitDrawings(ctx, pair.Pages())
}

// collect saves surface content that differs from the map and returns
// the affected pages in ascending order.
func (c *Controller) collect() []int {
	var changed []int
	for p, s := range c.surfaces {
		d := s.Drawing()
		if ink.Equal(c.codec, d, c.drawings[p]) {
			continue
		}
		c.store(p, d)
		changed = append(changed, p)
	}
	sort.Ints(changed)
	return changed
}

func (c *Controller) discard() {
	for p, s := range c.surfaces {
		s.Release()
		delete(c.surfaces, p)
	}
}

func (c *Controller) bind() {
	if c.newSurface == nil {
		return
	}
	for _, p := range c.pair.Pages() {
		s := c.newSurface(p)
		if s == nil {
			continue
		}
		s.SetDrawing(c.drawings[p])
		s.SetTool(c.tool)
		s.SetPassthrough(!c.annotating)
		page := p
		s.OnChange(func(d domain.Drawing) {
			// ignore late notifications from released surfaces
			if c.surfaces[page] != s {
				return
			}
			c.store(page, d)
			c.emitDrawings(context.Background(), []int{page})
		})
		c.surfaces[p] = s
	}
}

func (c *Controller) store(page int, d domain.Drawing) {
	if d.IsEmpty() {
		delete(c.drawings, page)
		return
	}
	c.drawings[page] = d.Clone()
}

func (c *Controller) emitDrawings(ctx context.Context, pages []int) {
	if pages == nil {
		pages = []int{}
	}
	c.emitter.Emit(ctx, domain.EventDrawingsUpdated, domain.DrawingsUpdated{
		Drawings: c.drawings.Clone(),
		Pages:    pages,
	})
}
