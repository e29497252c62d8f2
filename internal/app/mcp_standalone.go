package app

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"mushaf/internal/config"
	"mushaf/internal/logging"
	mcpserver "mushaf/internal/mcp"
)

// ServeMCP runs the reader as an MCP server on stdin/stdout until ctx is
// cancelled or the client disconnects.
func ServeMCP(ctx context.Context, cfg config.Config, version string) error {
	a := New(cfg, nil)

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	loopDone := make(chan error, 1)
	go func() { loopDone <- a.Loop().Run(loopCtx) }()

	if err := a.Startup(ctx); err != nil {
		stopLoop()
		<-loopDone
		return err
	}

	srv := mcpserver.New(mcpserver.Deps{
		Reader:   a.Reader(),
		Notifier: a.Notifier(),
		Version:  version,
	})

	g, gctx := errgroup.WithContext(ctx)
	served := make(chan struct{})
	g.Go(func() error {
		defer close(served)
		return srv.ServeStdio()
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-served:
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Shutdown(shutdownCtx)
		stopLoop()
		return nil
	})

	err := g.Wait()
	<-loopDone
	if errors.Is(err, context.Canceled) {
		return nil
	}
	logging.Logger().Info("MCP server stopped")
	return err
}
