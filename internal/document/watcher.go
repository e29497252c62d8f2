package document

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"mushaf/internal/logging"
)

// ChangedHandler is called when a watched document file is rewritten.
type ChangedHandler func(documentID, path string)

// Watcher reports rewrites of the files behind open documents so they can
// be reloaded.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange ChangedHandler
	mu       sync.RWMutex
	watching map[string]string // absolute path -> document ID
}

// NewWatcher starts a watcher that calls onChange from its own goroutine.
func NewWatcher(onChange ChangedHandler) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		watcher:  fw,
		onChange: onChange,
		watching: make(map[string]string),
	}
	go w.watchLoop()
	return w, nil
}

// Watch starts reporting changes to path under documentID.
func (w *Watcher) Watch(documentID, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.watching[absPath] = documentID
	w.mu.Unlock()

	// editors and copies replace files, so watch the directory
	return w.watcher.Add(filepath.Dir(absPath))
}

// Unwatch stops reporting changes for documentID. A directory stops being
// watched once no watched file remains in it.
func (w *Watcher) Unwatch(documentID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	dirs := map[string]bool{}
	for path, id := range w.watching {
		if id == documentID {
			delete(w.watching, path)
			dirs[filepath.Dir(path)] = true
		}
	}
	for path := range w.watching {
		delete(dirs, filepath.Dir(path))
	}
	for dir := range dirs {
		if err := w.watcher.Remove(dir); err != nil {
			logging.Logger().Warn("unwatch directory", slog.String("dir", dir), slog.Any("error", err))
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	log := logging.Logger()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			absPath, _ := filepath.Abs(event.Name)
			w.mu.RLock()
			documentID, watched := w.watching[absPath]
			w.mu.RUnlock()
			if watched && w.onChange != nil {
				log.Info("document file changed", slog.String("document", documentID), slog.String("path", absPath))
				w.onChange(documentID, absPath)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("document watcher error", slog.Any("error", err))
		}
	}
}
