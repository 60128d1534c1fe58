package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/expenses/internal/smoke"
	"github.com/okian/expenses/pkg/logger"
)

// Default configuration constants.
const (
	defaultCreates     = 200
	defaultDeletes     = 50
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 10 * time.Second
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:5000", "Base URL of the service")
		creates = flag.Int("creates", defaultCreates, "Expenses created by the load pass")
		deletes = flag.Int("deletes", defaultDeletes, "Of those, how many are deleted before verification")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Concurrent requests in flight")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile = flag.String("log", "", "Also write logs to this file")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoke.ShowHelp()
		return
	}

	if err := smoke.SetupLogging(*logFile, *verbose); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	cfg := &smoke.Config{
		BaseURL: *baseURL,
		Creates: *creates,
		Deletes: *deletes,
		Workers: *workers,
		Timeout: *timeout,
		Verbose: *verbose,
	}

	_, err := smoke.Run(ctx, cfg)
	cancel()
	_ = logger.Sync()
	if err != nil {
		_, _ = os.Stderr.WriteString("Smoke run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
