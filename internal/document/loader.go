package document

import (
	"log/slog"
	"sync/atomic"

	"mushaf/internal/logging"
)

// OpenFunc opens the document stored at path.
type OpenFunc func(path string) (Document, error)

// OpenPDFDocument adapts OpenPDF to OpenFunc.
func OpenPDFDocument(path string) (Document, error) {
	pages, err := OpenPDF(path)
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// Poster re-enters the owning execution context.
type Poster interface {
	Post(fn func()) bool
}

// LoadResult is delivered on the owning context when a load finishes.
type LoadResult struct {
	DocumentID string
	Path       string
	Document   Document
	Err        error
}

// Loader opens documents off the owning context and hands the result back
// through a Poster. Only the most recent request is delivered; an older
// load that finishes later is dropped.
type Loader struct {
	poster Poster
	open   OpenFunc
	gen    atomic.Uint64
}

// NewLoader returns a loader. A nil open uses OpenPDFDocument.
func NewLoader(poster Poster, open OpenFunc) *Loader {
	if open == nil {
		open = OpenPDFDocument
	}
	return &Loader{poster: poster, open: open}
}

// Load starts opening path in the background. done runs on the owning
// context unless a newer Load or Invalidate happened first.
func (l *Loader) Load(documentID, path string, done func(LoadResult)) {
	gen := l.gen.Add(1)
	go func() {
		doc, err := l.open(path)
		res := LoadResult{DocumentID: documentID, Path: path, Document: doc, Err: err}
		l.poster.Post(func() {
			if l.gen.Load() != gen {
				logging.Logger().Debug("discarding superseded document load",
					slog.String("document", documentID))
				return
			}
			done(res)
		})
	}()
}

// Invalidate drops the result of any load still in flight.
func (l *Loader) Invalidate() {
	l.gen.Add(1)
}
