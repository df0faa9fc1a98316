package main

import (
	"log/slog"
	"os"

	mcpadapter "github.com/clinicsync/medparse/internal/adapters/mcp"
	"github.com/clinicsync/medparse/internal/bootstrap"
	"github.com/clinicsync/medparse/internal/config"
	"github.com/clinicsync/medparse/internal/observability/logging"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	// Stdout carries the MCP stream; logs must go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	})).With("service", "medparse-mcp")
	slog.SetDefault(logger)

	app := bootstrap.New(cfg, logger)

	srv := mcpadapter.NewServer(app.Parser, version, logger)
	if err := srv.ServeStdio(); err != nil {
		logger.Error("mcp_server_error", "error", err)
		os.Exit(1)
	}
}
