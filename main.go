package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"mushaf/internal/app"
	"mushaf/internal/config"
	"mushaf/internal/logging"
)

var version = "dev"

func main() {
	configPath := flag.String("config", config.Path(), "path to the YAML config file")
	initCfg := flag.Bool("init", false, "write an example config to -config and exit")
	flag.Parse()

	if *initCfg {
		if err := config.WriteExample(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *configPath)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol; logs go to stderr
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	})))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.ServeMCP(ctx, cfg, version); err != nil {
		logging.Logger().Error("mcp server", slog.Any("error", err))
		os.Exit(1)
	}
}
