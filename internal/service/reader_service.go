package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"mushaf/internal/dispatch"
	"mushaf/internal/document"
	"mushaf/internal/domain"
	"mushaf/internal/ink"
	"mushaf/internal/logging"
	"mushaf/internal/navigation"
	"mushaf/internal/surface"
)

// ─────────────────────────────────────────────────────────────
// ReaderService — the presentation logic of the reader
// ─────────────────────────────────────────────────────────────

var (
	// ErrUnknownDocument is returned for an ID missing from the library.
	ErrUnknownDocument = errors.New("unknown document")
	// ErrNoDocument is returned when an operation needs an open document.
	ErrNoDocument = errors.New("no document open")
	// ErrInvalidTool is returned for a tool that cannot be applied.
	ErrInvalidTool = errors.New("invalid tool")
)

// Stores groups the persistence the reader needs.
type Stores struct {
	Annotations domain.AnnotationStore
	Positions   domain.PositionStore
	Tools       domain.ToolStore
}

// ReaderOptions configures a ReaderService. Zero values pick the defaults.
type ReaderOptions struct {
	Library     []domain.DocumentInfo
	Alignment   domain.Alignment
	Direction   domain.Direction
	Orientation domain.Orientation
	Tool        domain.ToolConfig
	Surfaces    navigation.SurfaceFactory
	Open        document.OpenFunc
}

// ReaderService owns the open document, its navigation controller and
// the session state. Every method hops onto the dispatch loop, so the
// loop must be running.
type ReaderService struct {
	loop    *dispatch.Loop
	loader  *document.Loader
	stores  Stores
	emitter EventEmitter
	opts    ReaderOptions
	saves   saveGuard

	cronMu    sync.Mutex
	cronSched *cron.Cron

	// confined to the loop
	session     domain.SessionState
	ctl         *navigation.Controller
	pending     domain.Drawings
	restorePage int
	tool        domain.ToolConfig
	orientation domain.Orientation
	annotating  bool
	watcher     *document.Watcher
}

// NewReaderService creates a ReaderService. A nil emitter discards events.
func NewReaderService(loop *dispatch.Loop, stores Stores, emitter EventEmitter, opts ReaderOptions) *ReaderService {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	if opts.Direction == "" {
		opts.Direction = domain.DirectionRTL
	}
	if opts.Orientation == "" {
		opts.Orientation = domain.OrientationSingle
	}
	if !opts.Tool.Valid() {
		opts.Tool = domain.DefaultTool()
	}
	if opts.Surfaces == nil {
		opts.Surfaces = func(page int) navigation.Surface { return surface.New(page) }
	}
	return &ReaderService{
		loop:        loop,
		loader:      document.NewLoader(loop, opts.Open),
		stores:      stores,
		emitter:     emitter,
		opts:        opts,
		tool:        opts.Tool,
		orientation: opts.Orientation,
		session:     domain.SessionState{CurrentPage: 0, Orientation: opts.Orientation},
	}
}

// SetWatcher attaches a file watcher; the open document is reloaded when
// its file is rewritten.
func (s *ReaderService) SetWatcher(ctx context.Context, w *document.Watcher) error {
	return s.loop.Do(ctx, func() { s.watcher = w })
}

// Reload re-reads documentID from path if it is still the open document.
// It is safe to call from any goroutine.
func (s *ReaderService) Reload(documentID, path string) {
	s.loop.Post(func() {
		if s.session.DocumentID != documentID {
			return
		}
		logging.Logger().Info("reloading document", slog.String("document", documentID))
		s.session.Loading = true
		s.loader.Load(documentID, path, s.loaded)
	})
}

// Documents lists the library, flagging the books that carry drawings.
func (s *ReaderService) Documents(ctx context.Context) ([]domain.DocumentInfo, error) {
	var annotated []string
	var listErr error
	if err := s.loop.Do(ctx, func() {
		annotated, listErr = s.stores.Annotations.Documents(ctx)
	}); err != nil {
		return nil, err
	}
	if listErr != nil {
		return nil, fmt.Errorf("list annotated documents: %w", listErr)
	}
	has := make(map[string]bool, len(annotated))
	for _, id := range annotated {
		has[id] = true
	}
	docs := append([]domain.DocumentInfo(nil), s.opts.Library...)
	for i := range docs {
		docs[i].Annotated = has[docs[i].ID]
	}
	return docs, nil
}

func (s *ReaderService) lookup(documentID string) (domain.DocumentInfo, bool) {
	for _, d := range s.opts.Library {
		if d.ID == documentID {
			return d, true
		}
	}
	return domain.DocumentInfo{}, false
}

// Open starts loading documentID, closing the current document first.
// The returned session is still Loading; document:loaded follows.
func (s *ReaderService) Open(ctx context.Context, documentID string) (domain.SessionState, error) {
	info, ok := s.lookup(documentID)
	if !ok {
		return domain.SessionState{}, fmt.Errorf("%w: %s", ErrUnknownDocument, documentID)
	}
	var session domain.SessionState
	err := s.loop.Do(ctx, func() {
		s.closeLocked(ctx)

		s.pending = s.stores.Annotations.Load(ctx, documentID)
		s.restorePage = 0
		if p, ok := s.stores.Positions.LoadLastPage(ctx, documentID); ok {
			s.restorePage = p
		}
		s.session = domain.SessionState{
			SessionID:   uuid.NewString(),
			DocumentID:  documentID,
			CurrentPage: s.restorePage,
			Orientation: s.orientation,
			Loading:     true,
		}
		logging.Logger().Info("opening document",
			slog.String("document", documentID), slog.String("session", s.session.SessionID),
			slog.Int("page", s.restorePage), slog.Int("drawings", len(s.pending)))

		s.loader.Load(documentID, info.Path, s.loaded)
		if s.watcher != nil {
			if err := s.watcher.Watch(documentID, info.Path); err != nil {
				logging.Logger().Warn("watch document", slog.String("document", documentID), slog.Any("error", err))
			}
		}
		session = s.session
	})
	return session, err
}

// loaded runs on the loop when a load finishes.
func (s *ReaderService) loaded(res document.LoadResult) {
	ctx := context.Background()
	log := logging.Logger()
	if res.DocumentID != s.session.DocumentID {
		return
	}
	s.session.Loading = false
	if res.Err != nil {
		log.Error("load document", slog.String("document", res.DocumentID), slog.Any("error", res.Err))
		s.emitter.Emit(ctx, domain.EventDocumentFailed, domain.DocumentFailed{
			DocumentID: res.DocumentID,
			Error:      res.Err.Error(),
		})
		return
	}

	// a reload keeps what the reader was doing
	if s.ctl != nil {
		s.ctl.Release(ctx)
		s.pending = s.ctl.Drawings()
		s.restorePage = s.ctl.CurrentPage()
	}

	s.ctl = navigation.New(res.Document, s.pending, navigation.Options{
		Alignment:   s.opts.Alignment,
		Direction:   s.opts.Direction,
		Orientation: s.orientation,
		Tool:        s.tool,
		Surfaces:    s.opts.Surfaces,
		Emitter:     readerEvents{s},
	})
	s.pending = nil
	s.ctl.SetAnnotationMode(s.annotating)

	count := s.ctl.PageCount()
	page := max(0, min(s.restorePage, count-1))
	if count > 0 {
		s.ctl.GoTo(ctx, page)
	}
	s.session.CurrentPage = page
	log.Info("document loaded", slog.String("document", res.DocumentID), slog.Int("pages", count), slog.Int("page", page))
	s.emitter.Emit(ctx, domain.EventDocumentLoaded, domain.DocumentLoaded{
		DocumentID: res.DocumentID,
		PageCount:  count,
		Page:       page,
	})
}

// Close saves and closes the open document. It reports false when no
// document was open.
func (s *ReaderService) Close(ctx context.Context) (bool, error) {
	var closed bool
	err := s.loop.Do(ctx, func() { closed = s.closeLocked(ctx) })
	return closed, err
}

func (s *ReaderService) closeLocked(ctx context.Context) bool {
	documentID := s.session.DocumentID
	if documentID == "" {
		return false
	}
	s.loader.Invalidate()
	if s.ctl != nil {
		s.ctl.Release(ctx)
		s.persist(ctx, documentID, s.ctl.Drawings(), s.ctl.CurrentPage())
	}
	if s.watcher != nil {
		s.watcher.Unwatch(documentID)
	}
	s.ctl = nil
	s.pending = nil
	s.annotating = false
	s.session = domain.SessionState{Orientation: s.orientation}

	logging.Logger().Info("document closed", slog.String("document", documentID))
	s.emitter.Emit(ctx, domain.EventDocumentClosed, documentID)
	return true
}

func (s *ReaderService) persist(ctx context.Context, documentID string, drawings domain.Drawings, page int) {
	log := logging.Logger()
	if err := s.stores.Annotations.Save(ctx, documentID, drawings); err != nil {
		log.Error("save drawings", slog.String("document", documentID), slog.Any("error", err))
	}
	if err := s.stores.Positions.SaveLastPage(ctx, documentID, page); err != nil {
		log.Error("save last page", slog.String("document", documentID), slog.Any("error", err))
	}
}

// withController runs fn on the loop with the open controller.
func (s *ReaderService) withController(ctx context.Context, fn func(c *navigation.Controller)) error {
	var missing bool
	err := s.loop.Do(ctx, func() {
		if s.ctl == nil {
			missing = true
			return
		}
		fn(s.ctl)
	})
	if err != nil {
		return err
	}
	if missing {
		return ErrNoDocument
	}
	return nil
}

// GoTo shows page. It reports false for an out-of-range page.
func (s *ReaderService) GoTo(ctx context.Context, page int) (bool, error) {
	var ok bool
	err := s.withController(ctx, func(c *navigation.Controller) { ok = c.GoTo(ctx, page) })
	return ok, err
}

// Forward moves to the next pair in reading order.
func (s *ReaderService) Forward(ctx context.Context) (bool, error) {
	var ok bool
	err := s.withController(ctx, func(c *navigation.Controller) { ok = c.Forward(ctx) })
	return ok, err
}

// Backward moves to the previous pair in reading order.
func (s *ReaderService) Backward(ctx context.Context) (bool, error) {
	var ok bool
	err := s.withController(ctx, func(c *navigation.Controller) { ok = c.Backward(ctx) })
	return ok, err
}

// Turn handles a page-turn gesture on a physical side.
func (s *ReaderService) Turn(ctx context.Context, side domain.Side) (bool, error) {
	var ok bool
	err := s.withController(ctx, func(c *navigation.Controller) { ok = c.Turn(ctx, side) })
	return ok, err
}

// Seek goes to the page under a physical progress bar position.
func (s *ReaderService) Seek(ctx context.Context, x float64) (int, error) {
	page := -1
	err := s.withController(ctx, func(c *navigation.Controller) {
		page = ProgressToPage(x, c.PageCount(), s.opts.Direction)
		c.GoTo(ctx, page)
	})
	return page, err
}

// Progress returns the progress bar position of the current page.
func (s *ReaderService) Progress(ctx context.Context) (float64, error) {
	var f float64
	err := s.withController(ctx, func(c *navigation.Controller) {
		f = PageProgress(c.CurrentPage(), c.PageCount(), s.opts.Direction)
	})
	return f, err
}

// SetOrientation switches layout. It applies to later documents too.
func (s *ReaderService) SetOrientation(ctx context.Context, o domain.Orientation) error {
	return s.loop.Do(ctx, func() {
		s.orientation = o
		s.session.Orientation = o
		if s.ctl != nil {
			s.ctl.SetOrientation(ctx, o)
		}
	})
}

// SetAnnotationMode turns inking on or off.
func (s *ReaderService) SetAnnotationMode(ctx context.Context, on bool) error {
	return s.loop.Do(ctx, func() {
		s.annotating = on
		s.session.AnnotationMode = on
		if s.ctl != nil {
			s.ctl.SetAnnotationMode(on)
		}
	})
}

// SetTool selects the inking tool.
func (s *ReaderService) SetTool(ctx context.Context, t domain.ToolConfig) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %+v", ErrInvalidTool, t)
	}
	t.Ink = domain.ParseInk(string(t.Ink))
	return s.loop.Do(ctx, func() {
		s.tool = t
		if s.ctl != nil {
			s.ctl.SetTool(t)
		}
	})
}

// Tool returns the selected inking tool.
func (s *ReaderService) Tool(ctx context.Context) (domain.ToolConfig, error) {
	var t domain.ToolConfig
	err := s.loop.Do(ctx, func() { t = s.tool })
	return t, err
}

// ClearVisible erases the drawings of the visible pages and returns them.
func (s *ReaderService) ClearVisible(ctx context.Context) ([]int, error) {
	var pages []int
	err := s.withController(ctx, func(c *navigation.Controller) { pages = c.ClearVisible(ctx) })
	return pages, err
}

// ClearAll erases every drawing of the open document.
func (s *ReaderService) ClearAll(ctx context.Context) error {
	return s.withController(ctx, func(c *navigation.Controller) {
		c.ReplaceDrawings(ctx, domain.Drawings{})
		if err := s.stores.Annotations.Clear(ctx, s.session.DocumentID); err != nil {
			logging.Logger().Error("clear drawings", slog.String("document", s.session.DocumentID), slog.Any("error", err))
		}
	})
}

type strokeInput interface {
	Stroke(points ...domain.Point) bool
}

type replaceInput interface {
	Replace(d domain.Drawing) bool
}

// Stroke draws a stroke with the selected tool on a visible page, as user
// input. It reports false when the page is not visible or annotation
// mode is off.
func (s *ReaderService) Stroke(ctx context.Context, page int, points []domain.Point) (bool, error) {
	var ok bool
	err := s.withController(ctx, func(c *navigation.Controller) {
		if sf, found := c.Surface(page); found {
			if in, can := sf.(strokeInput); can {
				ok = in.Stroke(points...)
			}
		}
	})
	return ok, err
}

// DrawOnPage replaces the drawing of a visible page as user input. A
// drawing that cannot be stored is rejected with ink.ErrInvalidDrawing.
func (s *ReaderService) DrawOnPage(ctx context.Context, page int, d domain.Drawing) (bool, error) {
	if _, err := (ink.JSONCodec{}).Encode(d); err != nil {
		return false, err
	}
	var ok bool
	err := s.withController(ctx, func(c *navigation.Controller) {
		if !s.annotating {
			return
		}
		if sf, found := c.Surface(page); found {
			if in, can := sf.(replaceInput); can {
				ok = in.Replace(d)
			}
		}
	})
	return ok, err
}

// Drawings returns the drawings of the open document.
func (s *ReaderService) Drawings(ctx context.Context) (domain.Drawings, error) {
	var out domain.Drawings
	err := s.withController(ctx, func(c *navigation.Controller) { out = c.Drawings() })
	return out, err
}

// View returns what is on screen.
func (s *ReaderService) View(ctx context.Context) (domain.View, error) {
	var v domain.View
	err := s.withController(ctx, func(c *navigation.Controller) { v = c.View() })
	return v, err
}

// Session returns the session state.
func (s *ReaderService) Session(ctx context.Context) (domain.SessionState, error) {
	var st domain.SessionState
	err := s.loop.Do(ctx, func() { st = s.session })
	return st, err
}

// Lifecycle reacts to the host application's phase changes.
func (s *ReaderService) Lifecycle(ctx context.Context, phase domain.LifecyclePhase) error {
	switch phase {
	case domain.PhaseBackground:
		return s.loop.Do(ctx, func() {
			if err := s.stores.Tools.SaveTool(ctx, s.tool); err != nil {
				logging.Logger().Error("save tool", slog.Any("error", err))
			}
			s.saveLocked(ctx)
		})
	case domain.PhaseActive:
		return s.loop.Do(ctx, func() {
			t, ok := s.stores.Tools.LoadTool(ctx)
			if !ok {
				return
			}
			s.tool = t
			if s.ctl != nil {
				s.ctl.SetTool(t)
			}
		})
	case domain.PhaseInactive:
		return nil
	default:
		return fmt.Errorf("unknown lifecycle phase %q", phase)
	}
}

// Save flushes live surfaces and persists the open document.
func (s *ReaderService) Save(ctx context.Context) error {
	return s.loop.Do(ctx, func() { s.saveLocked(ctx) })
}

func (s *ReaderService) saveLocked(ctx context.Context) {
	if s.ctl == nil {
		return
	}
	s.ctl.Flush(ctx)
	s.persist(ctx, s.session.DocumentID, s.ctl.Drawings(), s.ctl.CurrentPage())
}

// ─────────────────────────────────────────────────────────────
// readerEvents — persists on navigation events, then forwards
// ─────────────────────────────────────────────────────────────

type readerEvents struct {
	s *ReaderService
}

func (e readerEvents) Emit(ctx context.Context, event string, data any) {
	s := e.s
	documentID := s.session.DocumentID
	// the transition already happened; persist it even if the caller gave up
	ctx = context.WithoutCancel(ctx)
	switch p := data.(type) {
	case domain.PageChanged:
		s.session.CurrentPage = p.Page
		if documentID != "" {
			if err := s.stores.Positions.SaveLastPage(ctx, documentID, p.Page); err != nil {
				logging.Logger().Error("save last page", slog.String("document", documentID), slog.Any("error", err))
			}
		}
	case domain.DrawingsUpdated:
		if documentID != "" {
			if err := s.stores.Annotations.Save(ctx, documentID, p.Drawings); err != nil {
				logging.Logger().Error("save drawings", slog.String("document", documentID), slog.Any("error", err))
			}
		}
	}
	s.emitter.Emit(ctx, event, data)
}
