package app

import (
	"context"
	"fmt"
	"log/slog"

	"mushaf/internal/config"
	"mushaf/internal/dispatch"
	"mushaf/internal/document"
	"mushaf/internal/domain"
	"mushaf/internal/logging"
	mcpserver "mushaf/internal/mcp"
	"mushaf/internal/secret"
	"mushaf/internal/service"
	"mushaf/internal/storage"
)

// App holds the long-lived components of the reader.
type App struct {
	cfg     config.Config
	secrets secret.SecretStore

	kv       storage.KV
	loop     *dispatch.Loop
	reader   *service.ReaderService
	watcher  *document.Watcher
	notifier *mcpserver.Notifier
}

// New creates an App for cfg. A nil secrets uses the platform store.
func New(cfg config.Config, secrets secret.SecretStore) *App {
	if secrets == nil {
		secrets = secret.Default()
	}
	return &App{
		cfg:      cfg,
		secrets:  secrets,
		loop:     dispatch.New(64),
		notifier: &mcpserver.Notifier{},
	}
}

// Loop returns the dispatch loop. It must be running before the reader
// is used.
func (a *App) Loop() *dispatch.Loop { return a.loop }

// Reader returns the reader service. Valid after Startup.
func (a *App) Reader() *service.ReaderService { return a.reader }

// Notifier returns the event forwarder handed to the reader.
func (a *App) Notifier() *mcpserver.Notifier { return a.notifier }

// Startup opens storage and builds the reader. The loop must already be
// running. On failure everything opened so far is released again.
func (a *App) Startup(ctx context.Context) (err error) {
	log := logging.Logger()

	layout, err := a.cfg.Layout()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	backend, err := a.cfg.Backend(a.secrets)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	kv, err := storage.Open(ctx, backend)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	a.kv = kv
	defer func() {
		if err != nil {
			a.Shutdown(ctx)
		}
	}()

	a.reader = service.NewReaderService(a.loop, service.Stores{
		Annotations: storage.NewAnnotationStore(kv, nil),
		Positions:   storage.NewPositionStore(kv),
		Tools:       storage.NewToolStore(kv),
	}, a.notifier, service.ReaderOptions{
		Library:     a.cfg.Library(),
		Alignment:   layout.Alignment,
		Direction:   layout.Direction,
		Orientation: layout.Orientation,
		Tool:        a.cfg.Tool,
	})

	if a.cfg.WatchDocuments {
		w, err := document.NewWatcher(a.reader.Reload)
		if err != nil {
			// reading still works without reloads
			log.Warn("document watcher unavailable", slog.Any("error", err))
		} else {
			a.watcher = w
			if err := a.reader.SetWatcher(ctx, w); err != nil {
				return err
			}
		}
	}

	if err := a.reader.Lifecycle(ctx, domain.PhaseActive); err != nil {
		return err
	}
	if err := a.reader.StartAutosave(a.cfg.Autosave); err != nil {
		return err
	}
	log.Info("reader started",
		slog.String("direction", string(layout.Direction)),
		slog.String("alignment", string(layout.Alignment)),
		slog.Int("documents", len(a.cfg.Documents)))
	return nil
}

// Shutdown saves the open document and releases resources. It runs while
// the loop is still running.
func (a *App) Shutdown(ctx context.Context) {
	if a.reader != nil {
		a.reader.Stop(ctx)
		a.reader = nil
	}
	if a.watcher != nil {
		a.watcher.Close()
		a.watcher = nil
	}
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			logging.Logger().Warn("close storage", slog.Any("error", err))
		}
		a.kv = nil
	}
}
