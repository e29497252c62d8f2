package storage_test

import (
	"context"
	"encoding/json"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mushaf/internal/domain"
	"mushaf/internal/ink"
	"mushaf/internal/storage"
)

func newTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "reader.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleDrawing(x float64) domain.Drawing {
	return domain.Drawing{Strokes: []domain.Stroke{{
		Ink:    domain.InkPen,
		Color:  domain.RGBA{R: 0.2, A: 1},
		Width:  3,
		Points: []domain.Point{{X: x, Y: 1}, {X: x + 4, Y: 2, Pressure: 0.5}},
	}}}
}

// ─────────────────────────────────────────────────────────────
// KV tests
// ─────────────────────────────────────────────────────────────

func TestDB_GetSetDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	v, err := db.Get(ctx, "missing")
	if err != nil || v != nil {
		t.Fatalf("expected nil, nil for missing key; got %q, %v", v, err)
	}
	if err := db.Set(ctx, "a/1", []byte("one")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := db.Set(ctx, "a/1", []byte("uno")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, _ = db.Get(ctx, "a/1")
	if string(v) != "uno" {
		t.Errorf("expected overwritten value, got %q", v)
	}
	if err := db.Delete(ctx, "a/1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := db.Delete(ctx, "a/1"); err != nil {
		t.Errorf("deleting a missing key should not fail: %v", err)
	}
}

func TestDB_KeysByPrefix(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	for _, k := range []string{"drawings/b", "drawings/a", "last_page/a"} {
		if err := db.Set(ctx, k, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	keys, err := db.Keys(ctx, "drawings/")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"drawings/a", "drawings/b"}, keys); diff != "" {
		t.Errorf("keys mismatch:\n%s", diff)
	}
}

func TestOpen_DefaultsToSQLite(t *testing.T) {
	kv, err := storage.Open(context.Background(), storage.Backend{Path: filepath.Join(t.TempDir(), "x.db")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer kv.Close()
	if _, ok := kv.(*storage.DB); !ok {
		t.Errorf("expected *storage.DB, got %T", kv)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := storage.Open(context.Background(), storage.Backend{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

// ─────────────────────────────────────────────────────────────
// AnnotationStore tests
// ─────────────────────────────────────────────────────────────

func TestAnnotationStore_PerDocument(t *testing.T) {
	store := storage.NewAnnotationStore(newTestDB(t), nil)
	ctx := context.Background()

	saved := domain.Drawings{0: sampleDrawing(1), 5: sampleDrawing(9)}
	if err := store.Save(ctx, "X", saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := store.Load(ctx, "X")
	if diff := cmp.Diff(saved, got); diff != "" {
		t.Errorf("loaded drawings differ:\n%s", diff)
	}
	if other := store.Load(ctx, "Y"); len(other) != 0 {
		t.Errorf("expected empty drawings for Y, got %d", len(other))
	}
}

func TestAnnotationStore_RoundTripIsByteIdentical(t *testing.T) {
	store := storage.NewAnnotationStore(newTestDB(t), nil)
	ctx := context.Background()
	codec := ink.JSONCodec{}

	saved := domain.Drawings{2: sampleDrawing(3), 3: {}}
	if err := store.Save(ctx, "doc", saved); err != nil {
		t.Fatal(err)
	}
	loaded := store.Load(ctx, "doc")
	for page, d := range saved {
		a, _ := codec.Encode(d)
		b, err := codec.Encode(loaded[page])
		if err != nil {
			t.Fatalf("re-encode page %d: %v", page, err)
		}
		if string(a) != string(b) {
			t.Errorf("page %d: %s != %s", page, a, b)
		}
	}
}

func TestAnnotationStore_DropsUnencodableDrawing(t *testing.T) {
	store := storage.NewAnnotationStore(newTestDB(t), nil)
	ctx := context.Background()

	bad := sampleDrawing(0)
	bad.Strokes[0].Points[0].X = math.NaN()
	if err := store.Save(ctx, "doc", domain.Drawings{1: bad, 2: sampleDrawing(5)}); err != nil {
		t.Fatalf("save should succeed for the rest of the record: %v", err)
	}
	got := store.Load(ctx, "doc")
	if _, ok := got[1]; ok {
		t.Error("page 1 should have been dropped")
	}
	if _, ok := got[2]; !ok {
		t.Error("page 2 should have been kept")
	}
}

func TestAnnotationStore_MalformedRecord(t *testing.T) {
	db := newTestDB(t)
	store := storage.NewAnnotationStore(db, nil)
	ctx := context.Background()

	if err := db.Set(ctx, "drawings/broken", []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if got := store.Load(ctx, "broken"); len(got) != 0 {
		t.Errorf("expected empty drawings, got %v", got)
	}

	good, _ := ink.JSONCodec{}.Encode(sampleDrawing(1))
	record, _ := json.Marshal(map[string][]byte{
		"abc": good,
		"-2":  good,
		"4":   []byte("garbage"),
		"7":   good,
	})
	if err := db.Set(ctx, "drawings/mixed", record); err != nil {
		t.Fatal(err)
	}
	got := store.Load(ctx, "mixed")
	if len(got) != 1 {
		t.Fatalf("expected only page 7, got %v", got)
	}
	if _, ok := got[7]; !ok {
		t.Error("page 7 missing")
	}
}

func TestAnnotationStore_ClearAndDocuments(t *testing.T) {
	store := storage.NewAnnotationStore(newTestDB(t), nil)
	ctx := context.Background()

	store.Save(ctx, "b", domain.Drawings{0: sampleDrawing(1)})
	store.Save(ctx, "a", domain.Drawings{0: sampleDrawing(1)})

	ids, err := store.Documents(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, ids); diff != "" {
		t.Errorf("documents mismatch:\n%s", diff)
	}

	if err := store.Clear(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if got := store.Load(ctx, "a"); len(got) != 0 {
		t.Errorf("expected cleared drawings, got %v", got)
	}

	// saving nothing but blank pages drops the record
	store.Save(ctx, "b", domain.Drawings{0: {}})
	ids, _ = store.Documents(ctx)
	if len(ids) != 0 {
		t.Errorf("expected no annotated documents, got %v", ids)
	}
}

// ─────────────────────────────────────────────────────────────
// PositionStore / ToolStore tests
// ─────────────────────────────────────────────────────────────

func TestPositionStore(t *testing.T) {
	db := newTestDB(t)
	store := storage.NewPositionStore(db)
	ctx := context.Background()

	if _, ok := store.LoadLastPage(ctx, "doc"); ok {
		t.Fatal("expected no saved page")
	}
	if err := store.SaveLastPage(ctx, "doc", 42); err != nil {
		t.Fatal(err)
	}
	if p, ok := store.LoadLastPage(ctx, "doc"); !ok || p != 42 {
		t.Errorf("expected 42, got %d (%v)", p, ok)
	}

	db.Set(ctx, "last_page/bad", []byte("forty"))
	if _, ok := store.LoadLastPage(ctx, "bad"); ok {
		t.Error("malformed value should read as absent")
	}
	db.Set(ctx, "last_page/neg", []byte("-3"))
	if _, ok := store.LoadLastPage(ctx, "neg"); ok {
		t.Error("negative value should read as absent")
	}
}

func TestToolStore(t *testing.T) {
	store := storage.NewToolStore(newTestDB(t))
	ctx := context.Background()

	if _, ok := store.LoadTool(ctx); ok {
		t.Fatal("expected no saved tool")
	}
	tool := domain.ToolConfig{Ink: domain.InkMarker, Color: domain.RGBA{R: 1, G: 0.8, A: 0.5}, Width: 12}
	if err := store.SaveTool(ctx, tool); err != nil {
		t.Fatal(err)
	}
	got, ok := store.LoadTool(ctx)
	if !ok {
		t.Fatal("expected saved tool")
	}
	if diff := cmp.Diff(tool, got); diff != "" {
		t.Errorf("tool mismatch:\n%s", diff)
	}
	if err := store.SaveTool(ctx, domain.ToolConfig{}); err == nil {
		t.Error("expected error for zero-width tool")
	}
}
