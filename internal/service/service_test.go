package service_test

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"mushaf/internal/dispatch"
	"mushaf/internal/document"
	"mushaf/internal/domain"
	"mushaf/internal/ink"
	"mushaf/internal/service"
	"mushaf/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// saveGuard tests
// ─────────────────────────────────────────────────────────────

func TestSaveGuard_TryLock(t *testing.T) {
	var g service.ExportedSaveGuard

	if !g.TryLock("autosave") {
		t.Fatal("expected first TryLock to succeed")
	}
	if g.TryLock("autosave") {
		t.Fatal("expected second TryLock for same job to fail")
	}
	if !g.TryLock("background") {
		t.Fatal("expected TryLock for different job to succeed")
	}
	g.Unlock("autosave")
	g.Unlock("background")

	if !g.TryLock("autosave") {
		t.Fatal("expected TryLock to succeed after unlock")
	}
	g.Unlock("autosave")
}

func TestSaveGuard_WaitAll(t *testing.T) {
	var g service.ExportedSaveGuard
	if !g.TryLock("autosave") {
		t.Fatal("expected lock to succeed")
	}

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		g.WaitAll(ctx)
		close(done)
	}()
	go func() {
		time.Sleep(20 * time.Millisecond)
		g.Unlock("autosave")
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("WaitAll timed out")
	}
}

// ─────────────────────────────────────────────────────────────
// MockEmitter tests
// ─────────────────────────────────────────────────────────────

func TestMockEmitter_RecordsEvents(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, "test:event", map[string]string{"foo": "bar"})
	m.Emit(ctx, "test:event2", nil)
	m.Emit(ctx, "test:event", 3)

	if len(m.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(m.Events))
	}
	if got := len(m.Named("test:event")); got != 2 {
		t.Errorf("expected 2 'test:event', got %d", got)
	}
	m.Reset()
	if len(m.Events) != 0 {
		t.Error("Reset should drop events")
	}
}

// ─────────────────────────────────────────────────────────────
// Progress bar tests
// ─────────────────────────────────────────────────────────────

func TestProgressToPage_RTL(t *testing.T) {
	tests := []struct {
		x    float64
		want int
	}{
		{1, 0},
		{0, 603},
		{0.5, 301},
		{-3, 603},
		{7, 0},
		{math.NaN(), 603},
	}
	for _, tt := range tests {
		if got := service.ProgressToPage(tt.x, 604, domain.DirectionRTL); got != tt.want {
			t.Errorf("ProgressToPage(%v) = %d, want %d", tt.x, got, tt.want)
		}
	}
	if got := service.ProgressToPage(0.25, 5, domain.DirectionLTR); got != 1 {
		t.Errorf("ltr: expected 1, got %d", got)
	}
	if got := service.ProgressToPage(0.5, 0, domain.DirectionRTL); got != 0 {
		t.Errorf("empty document: expected 0, got %d", got)
	}
}

func TestPageProgress_InvertsProgressToPage(t *testing.T) {
	for _, dir := range []domain.Direction{domain.DirectionRTL, domain.DirectionLTR} {
		for page := 0; page < 9; page++ {
			x := service.PageProgress(page, 9, dir)
			if got := service.ProgressToPage(x, 9, dir); got != page {
				t.Errorf("%s: page %d -> %v -> %d", dir, page, x, got)
			}
		}
	}
	if got := service.PageProgress(0, 1, domain.DirectionRTL); got != 1 {
		t.Errorf("single page rtl: expected 1, got %v", got)
	}
}

// ─────────────────────────────────────────────────────────────
// ReaderService tests
// ─────────────────────────────────────────────────────────────

type readerFixture struct {
	svc     *service.ReaderService
	loop    *dispatch.Loop
	emitter *service.MockEmitter
	stores  service.Stores
	db      *storage.DB
}

var library = []domain.DocumentInfo{
	{ID: "hafs", Title: "Hafs", Path: "hafs.pdf"},
	{ID: "qaloun", Title: "Qaloun", Path: "qaloun.pdf"},
}

func newReader(t *testing.T, open document.OpenFunc) *readerFixture {
	t.Helper()

	loop := dispatch.New(16)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(stopped)
	}()

	db, err := storage.New(filepath.Join(t.TempDir(), "reader.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		<-stopped
		db.Close()
	})

	if open == nil {
		open = func(path string) (document.Document, error) {
			return document.Static{Count: 8, Width: 400, Height: 600}, nil
		}
	}
	f := &readerFixture{
		loop:    loop,
		emitter: &service.MockEmitter{},
		db:      db,
		stores: service.Stores{
			Annotations: storage.NewAnnotationStore(db, nil),
			Positions:   storage.NewPositionStore(db),
			Tools:       storage.NewToolStore(db),
		},
	}
	f.svc = service.NewReaderService(loop, f.stores, f.emitter, service.ReaderOptions{
		Library:     library,
		Orientation: domain.OrientationPaired,
		Open:        open,
	})
	return f
}

func (f *readerFixture) open(t *testing.T, id string) domain.SessionState {
	t.Helper()
	ctx := context.Background()
	if _, err := f.svc.Open(ctx, id); err != nil {
		t.Fatalf("open %s: %v", id, err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		st, err := f.svc.Session(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !st.Loading {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("document %s did not finish loading", id)
	return domain.SessionState{}
}

func stroke(x float64) domain.Drawing {
	return domain.Drawing{Strokes: []domain.Stroke{{
		Ink: domain.InkPen, Color: domain.RGBA{A: 1}, Width: 2,
		Points: []domain.Point{{X: x, Y: x}},
	}}}
}

func TestReader_OpenUnknownDocument(t *testing.T) {
	f := newReader(t, nil)
	_, err := f.svc.Open(context.Background(), "warsh")
	if !errors.Is(err, service.ErrUnknownDocument) {
		t.Fatalf("expected ErrUnknownDocument, got %v", err)
	}
}

func TestReader_NoDocument(t *testing.T) {
	f := newReader(t, nil)
	if _, err := f.svc.GoTo(context.Background(), 1); !errors.Is(err, service.ErrNoDocument) {
		t.Fatalf("expected ErrNoDocument, got %v", err)
	}
	if closed, _ := f.svc.Close(context.Background()); closed {
		t.Error("Close without a document should report false")
	}
}

func TestReader_OpenRestoresLastPageAndDrawings(t *testing.T) {
	f := newReader(t, nil)
	ctx := context.Background()
	f.stores.Positions.SaveLastPage(ctx, "hafs", 4)
	f.stores.Annotations.Save(ctx, "hafs", domain.Drawings{3: stroke(1), 20: stroke(2)})

	st := f.open(t, "hafs")
	if st.CurrentPage != 4 || st.SessionID == "" {
		t.Fatalf("unexpected session %+v", st)
	}

	v, err := f.svc.View(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{3}, v.Annotated); diff != "" {
		t.Errorf("annotated mismatch:\n%s", diff)
	}
	d, _ := f.svc.Drawings(ctx)
	if _, ok := d[20]; ok {
		t.Error("out-of-range drawing should be filtered after load")
	}
	if len(f.emitter.Named(domain.EventDocumentLoaded)) != 1 {
		t.Error("expected one document:loaded")
	}
}

func TestReader_RestoredPageIsClamped(t *testing.T) {
	f := newReader(t, nil)
	f.stores.Positions.SaveLastPage(context.Background(), "hafs", 50)
	if st := f.open(t, "hafs"); st.CurrentPage != 7 {
		t.Errorf("expected last page 7, got %d", st.CurrentPage)
	}
}

func TestReader_NavigationPersistsLastPage(t *testing.T) {
	f := newReader(t, nil)
	ctx := context.Background()
	f.open(t, "hafs")

	if ok, _ := f.svc.GoTo(ctx, 5); !ok {
		t.Fatal("GoTo(5) failed")
	}
	if p, ok := f.stores.Positions.LoadLastPage(ctx, "hafs"); !ok || p != 5 {
		t.Errorf("expected saved page 5, got %d (%v)", p, ok)
	}
	if ok, _ := f.svc.GoTo(ctx, 9); ok {
		t.Error("GoTo(9) should fail for an 8-page document")
	}
	if ok, _ := f.svc.Turn(ctx, domain.SideLeft); !ok {
		t.Fatal("turn failed")
	}
	st, _ := f.svc.Session(ctx)
	if st.CurrentPage != 7 {
		t.Errorf("expected page 7 after turning left, got %d", st.CurrentPage)
	}
}

func TestReader_CancelledCallLeavesStateUnchanged(t *testing.T) {
	f := newReader(t, nil)
	f.open(t, "hafs")
	f.emitter.Reset()

	block := make(chan struct{})
	f.loop.Post(func() { <-block })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	ok, err := f.svc.GoTo(ctx, 5)
	if ok || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got ok=%v err=%v", ok, err)
	}
	close(block)

	st, err := f.svc.Session(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.CurrentPage != 0 {
		t.Errorf("cancelled GoTo moved to page %d", st.CurrentPage)
	}
	if n := len(f.emitter.Named(domain.EventPageChanged)); n != 0 {
		t.Errorf("cancelled GoTo emitted %d page:changed", n)
	}
	if p, _ := f.stores.Positions.LoadLastPage(context.Background(), "hafs"); p == 5 {
		t.Error("cancelled GoTo persisted its page")
	}
}

func TestReader_StrokePersistsDrawings(t *testing.T) {
	f := newReader(t, nil)
	ctx := context.Background()
	f.open(t, "hafs")
	f.svc.GoTo(ctx, 1)

	if ok, _ := f.svc.Stroke(ctx, 1, []domain.Point{{X: 1, Y: 1}}); ok {
		t.Fatal("stroke should be ignored outside annotation mode")
	}
	f.svc.SetAnnotationMode(ctx, true)
	if ok, _ := f.svc.Stroke(ctx, 1, []domain.Point{{X: 1, Y: 1}}); !ok {
		t.Fatal("stroke rejected in annotation mode")
	}
	if ok, _ := f.svc.Stroke(ctx, 6, []domain.Point{{X: 1, Y: 1}}); ok {
		t.Error("stroke on a hidden page should be rejected")
	}

	saved := f.stores.Annotations.Load(ctx, "hafs")
	if _, ok := saved[1]; !ok {
		t.Fatal("drawing for page 1 not persisted")
	}
	if ok, _ := f.svc.DrawOnPage(ctx, 2, stroke(4)); !ok {
		t.Fatal("DrawOnPage failed")
	}
	saved = f.stores.Annotations.Load(ctx, "hafs")
	if diff := cmp.Diff(stroke(4), saved[2]); diff != "" {
		t.Errorf("page 2 mismatch:\n%s", diff)
	}

	bad := stroke(5)
	bad.Strokes[0].Width = -1
	if ok, err := f.svc.DrawOnPage(ctx, 2, bad); ok || !errors.Is(err, ink.ErrInvalidDrawing) {
		t.Errorf("expected ErrInvalidDrawing, got ok=%v err=%v", ok, err)
	}
	saved = f.stores.Annotations.Load(ctx, "hafs")
	if diff := cmp.Diff(stroke(4), saved[2]); diff != "" {
		t.Errorf("rejected drawing changed page 2:\n%s", diff)
	}
}

func TestReader_DocumentsFlagsAnnotatedBooks(t *testing.T) {
	f := newReader(t, nil)
	ctx := context.Background()
	f.stores.Annotations.Save(ctx, "qaloun", domain.Drawings{0: stroke(1)})

	docs, err := f.svc.Documents(ctx)
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	got := map[string]bool{}
	for _, d := range docs {
		got[d.ID] = d.Annotated
	}
	if diff := cmp.Diff(map[string]bool{"hafs": false, "qaloun": true}, got); diff != "" {
		t.Errorf("annotated flags (-want +got):\n%s", diff)
	}
}

func TestReader_ClearVisibleAndClearAll(t *testing.T) {
	f := newReader(t, nil)
	ctx := context.Background()
	f.stores.Annotations.Save(ctx, "hafs", domain.Drawings{1: stroke(1), 2: stroke(2), 5: stroke(5)})
	f.open(t, "hafs")
	f.svc.GoTo(ctx, 2)

	pages, err := f.svc.ClearVisible(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 2}, pages); diff != "" {
		t.Errorf("cleared pages mismatch:\n%s", diff)
	}
	saved := f.stores.Annotations.Load(ctx, "hafs")
	if len(saved) != 1 {
		t.Errorf("expected only page 5 left, got %v", saved)
	}

	if err := f.svc.ClearAll(ctx); err != nil {
		t.Fatal(err)
	}
	if got := f.stores.Annotations.Load(ctx, "hafs"); len(got) != 0 {
		t.Errorf("expected no drawings after ClearAll, got %v", got)
	}
	if v, _ := f.db.Get(ctx, "drawings/hafs"); v != nil {
		t.Error("ClearAll should delete the record")
	}
}

func TestReader_SwitchingDocumentsResetsSession(t *testing.T) {
	f := newReader(t, nil)
	ctx := context.Background()
	first := f.open(t, "hafs")
	f.svc.GoTo(ctx, 3)
	f.svc.SetAnnotationMode(ctx, true)

	second := f.open(t, "qaloun")
	if second.SessionID == first.SessionID {
		t.Error("expected a new session")
	}
	if second.AnnotationMode || second.CurrentPage != 0 {
		t.Errorf("session not reset: %+v", second)
	}
	if p, _ := f.stores.Positions.LoadLastPage(ctx, "hafs"); p != 3 {
		t.Errorf("expected hafs to be saved on page 3, got %d", p)
	}
	if len(f.emitter.Named(domain.EventDocumentClosed)) != 1 {
		t.Error("expected document:closed for hafs")
	}
}

func TestReader_SupersededLoadIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	open := func(path string) (document.Document, error) {
		if path == "hafs.pdf" {
			<-release
			return document.Static{Count: 100}, nil
		}
		return document.Static{Count: 8}, nil
	}
	f := newReader(t, open)
	ctx := context.Background()

	if _, err := f.svc.Open(ctx, "hafs"); err != nil {
		t.Fatal(err)
	}
	f.open(t, "qaloun")
	close(release)
	time.Sleep(50 * time.Millisecond)

	v, err := f.svc.View(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v.PageCount != 8 {
		t.Errorf("stale load replaced the document: page count %d", v.PageCount)
	}
	if got := len(f.emitter.Named(domain.EventDocumentLoaded)); got != 1 {
		t.Errorf("expected one document:loaded, got %d", got)
	}
}

func TestReader_LoadFailure(t *testing.T) {
	f := newReader(t, func(string) (document.Document, error) {
		return nil, errors.New("corrupt")
	})
	f.open(t, "hafs")
	if len(f.emitter.Named(domain.EventDocumentFailed)) != 1 {
		t.Fatal("expected document:failed")
	}
	if _, err := f.svc.View(context.Background()); !errors.Is(err, service.ErrNoDocument) {
		t.Errorf("expected ErrNoDocument, got %v", err)
	}
}

func TestReader_OrientationToggleKeepsPage(t *testing.T) {
	f := newReader(t, nil)
	ctx := context.Background()
	f.open(t, "hafs")
	f.svc.GoTo(ctx, 4)

	f.svc.SetOrientation(ctx, domain.OrientationSingle)
	f.svc.SetOrientation(ctx, domain.OrientationPaired)
	st, _ := f.svc.Session(ctx)
	if st.CurrentPage != 4 || st.Orientation != domain.OrientationPaired {
		t.Errorf("unexpected session %+v", st)
	}
}

func TestReader_LifecycleSavesAndRestoresTool(t *testing.T) {
	f := newReader(t, nil)
	ctx := context.Background()
	f.open(t, "hafs")

	marker := domain.ToolConfig{Ink: domain.InkMarker, Color: domain.RGBA{R: 1, A: 0.5}, Width: 8}
	if err := f.svc.SetTool(ctx, marker); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Lifecycle(ctx, domain.PhaseBackground); err != nil {
		t.Fatal(err)
	}
	f.svc.SetTool(ctx, domain.DefaultTool())

	if err := f.svc.Lifecycle(ctx, domain.PhaseActive); err != nil {
		t.Fatal(err)
	}
	got, _ := f.svc.Tool(ctx)
	if diff := cmp.Diff(marker, got); diff != "" {
		t.Errorf("tool not restored:\n%s", diff)
	}
	if err := f.svc.SetTool(ctx, domain.ToolConfig{}); !errors.Is(err, service.ErrInvalidTool) {
		t.Errorf("expected ErrInvalidTool, got %v", err)
	}
}

func TestReader_SeekAndProgress(t *testing.T) {
	f := newReader(t, nil)
	ctx := context.Background()
	f.open(t, "hafs")

	page, err := f.svc.Seek(ctx, 0)
	if err != nil || page != 7 {
		t.Fatalf("expected seek to last page, got %d (%v)", page, err)
	}
	x, _ := f.svc.Progress(ctx)
	if x != 0 {
		t.Errorf("expected bar at left edge, got %v", x)
	}
}

func TestReader_AutosaveRejectsBadSchedule(t *testing.T) {
	f := newReader(t, nil)
	if err := f.svc.StartAutosave("every now and then"); err == nil {
		t.Fatal("expected schedule error")
	}
	if err := f.svc.StartAutosave(""); err != nil {
		t.Fatalf("default schedule: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	f.svc.Stop(ctx)
}
