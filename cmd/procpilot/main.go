// Command procpilot is a minimal reference entrypoint demonstrating how to
// wire a manifest into a running Supervisor. It is not the CLI wrapper
// (out of scope); it takes no flags beyond a manifest path and exits on
// SIGINT/SIGTERM.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jrepp/procpilot/internal/manifest"
	"github.com/jrepp/procpilot/internal/metrics"
	"github.com/jrepp/procpilot/internal/supervisor"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: procpilot <manifest.yaml|manifest.json>")
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	m, err := loadManifest(os.Args[1])
	if err != nil {
		logger.Error("failed to load manifest", "error", err)
		os.Exit(1)
	}

	sup, err := supervisor.NewBuilder(m).
		WithLogger(logger).
		WithMetricsCollector(metrics.NewPrometheusCollector("")).
		Build()
	if err != nil {
		logger.Error("failed to build supervisor", "error", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		sup.Stop()
	}()

	if err := sup.Start(); err != nil {
		logger.Error("supervisor exited with error", "error", err)
		os.Exit(1)
	}
}

func loadManifest(path string) (*manifest.Manifest, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return manifest.LoadJSON(path)
	}
	return manifest.LoadYAML(path)
}
