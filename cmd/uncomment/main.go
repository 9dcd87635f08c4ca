// Package main implements the uncomment entry point.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/seanhalberthal/uncomment/internal/cli"
	"github.com/seanhalberthal/uncomment/internal/config"
	"github.com/seanhalberthal/uncomment/internal/logger"
	"github.com/seanhalberthal/uncomment/internal/processor"
	"github.com/seanhalberthal/uncomment/internal/server"
	"github.com/seanhalberthal/uncomment/internal/web"
)

func main() {
	mcpMode := flag.Bool("mcp", false, "Run as MCP server on stdio")
	serveMode := flag.Bool("serve", false, "Serve the web form and JSON API")
	configPath := flag.String("config", "", "Path to a YAML or JSON(C) config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	level := cfg.Log.Level
	if !*serveMode && !*mcpMode && os.Getenv("UNCOMMENT_LOG_LEVEL") == "" {
		// Keep the CLI quiet unless asked otherwise.
		level = "warn"
	}
	if err := logger.Init(logger.Options{Format: cfg.Log.Format, Level: level, Dir: cfg.Log.Dir}); err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}
	defer func() { _ = logger.Close() }()

	proc, err := processor.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialise processor: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *mcpMode:
		if err := server.Run(ctx, proc); err != nil && ctx.Err() == nil {
			log.Fatal(err)
		}
	case *serveMode:
		serve(ctx, cfg, proc)
	default:
		cli.Run(ctx, proc, flag.Args())
	}
}

// serve runs the web server until a shutdown signal arrives.
func serve(ctx context.Context, cfg *config.Config, proc *processor.Processor) {
	srv, err := web.New(cfg, proc)
	if err != nil {
		log.Fatalf("Failed to initialise web server: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Web server failed: %v", err)
		}
		return
	case <-ctx.Done():
	}

	logger.Slog().Info("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Slog().Error("graceful shutdown failed", "error", err)
	}
}
