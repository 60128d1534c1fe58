package smoke

import (
	"context"
	"fmt"
	"os"

	"github.com/okian/expenses/pkg/logger"
)

// Log file rotation for smoke runs.
const (
	logFileMaxSizeMB  = 10
	logFileMaxBackups = 3
)

// SetupLogging initialises the logger for a smoke run. When logFile is
// set, output goes to the rotated file as well as stdout.
func SetupLogging(logFile string, verbose bool) error {
	level := "info"
	if verbose {
		level = "debug"
	}

	opts := []logger.Option{logger.WithLevel(level), logger.WithFormat(logger.FormatText)}
	if logFile != "" {
		opts = append(opts, logger.WithFile(logFile, logFileMaxSizeMB, logFileMaxBackups))
	}
	if err := logger.Init(opts...); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Expenses Smoke Tool
===================

Exercises a running expenses service: health check, a single expense
lifecycle, then concurrent creates and deletes.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string       Base URL of the service (default: http://localhost:5000)
  -creates int      Expenses created by the load pass (default: 200)
  -deletes int      Of those, how many are deleted before verification (default: 50)
  -workers int      Concurrent requests in flight (default: 2 x NumCPU)
  -timeout duration HTTP request timeout (default: 10s)
  -log string       Also write logs to this file, rotated at 10 MB
  -verbose          Log every created expense
  -help             Show this help

Examples:
  go run ./cmd/smoke
  go run ./cmd/smoke -url http://localhost:8080 -creates 1000 -deletes 400 -workers 32

Every row the run creates is deleted before it exits. Descriptions are
tagged with the run id, which also prefixes each X-Request-ID header.
`)
}
