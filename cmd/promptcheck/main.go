// Package main runs the admin prompt round trip against a prompt service and
// prints what the service and its storage report at each step.
// Usage:
//
//	go run ./cmd/promptcheck
//	PROMPTCHECK_BASE_URL=http://staging:3001/api go run ./cmd/promptcheck -config staging.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"promptcheck/config"
	"promptcheck/internal/apiclient"
	"promptcheck/internal/httpclient"
	"promptcheck/internal/logging"
	"promptcheck/internal/prompts"
	"promptcheck/internal/scenario"
	"promptcheck/internal/storage"
	"promptcheck/internal/version"
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version information")
	configPath := flag.String("config", "", "Path to a YAML config file (default: config.yaml if present)")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if err := run(*configPath, os.Stdout, os.Stderr); err != nil {
		slog.Error("promptcheck failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(stderr, logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}
	slog.SetDefault(logger)

	logger.Info("starting promptcheck",
		"version", version.Version,
		"base_url", cfg.BaseURL,
		"storage_type", cfg.Storage.Type,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := apiclient.NewWithHTTPClient(httpclient.NewHTTPClient(httpclient.WithTimeout(cfg.HTTP.Timeout)), cfg.BaseURL)

	_, err = scenario.Run(ctx, scenario.Deps{
		Prompts: prompts.NewService(client, logger),
		Storage: storage.NewVerifier(cfg.Storage),
		Admin:   cfg.Admin,
		Sample:  cfg.Sample,
		Out:     stdout,
		Logger:  logger,
	})
	return err
}
