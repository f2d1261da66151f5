// Package main serves the local stand-in prompt service.
// Usage:
//
//	go run ./cmd/promptservice -addr :3001 -db backend/database.db
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promptcheck/internal/logging"
	"promptcheck/internal/mockservice"
)

func main() {
	addr := flag.String("addr", ":3001", "Listen address")
	dbPath := flag.String("db", "backend/database.db", "SQLite database file")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logger, err := logging.New(os.Stderr, logging.Options{Level: *logLevel})
	if err != nil {
		slog.Error("invalid logging options", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	store, err := mockservice.OpenStore(context.Background(), *dbPath)
	if err != nil {
		slog.Error("failed to open store", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	srv := mockservice.New(store)

	// Handle graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting prompt service", "address", *addr, "db", *dbPath)

	if err := srv.Start(*addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
		} else {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}
}
