package smoke

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/expenses/pkg/logger"
)

// Run executes the complete smoke run against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stats := &Stats{
		RunID:     uuid.NewString()[:8],
		StartTime: time.Now(),
	}
	client := NewClient(cfg.BaseURL, cfg.Timeout, stats.RunID)

	logger.Get().Info(ctx, "starting expenses smoke run",
		logger.String("runID", stats.RunID),
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("creates", cfg.Creates),
		logger.Int("deletes", cfg.Deletes),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()))

	// Step 1: Check service health
	logger.Get().Info(ctx, "checking service health")
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Single expense lifecycle
	if err := runScenario(ctx, client, stats.RunID); err != nil {
		return stats, fmt.Errorf("crud scenario failed: %w", err)
	}

	// Step 3: Concurrent creates and deletes
	if err := runLoad(ctx, client, cfg, stats); err != nil {
		return stats, fmt.Errorf("load pass failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "smoke run completed successfully")
	return stats, nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var requestsPerSecond float64
	if stats.Duration > 0 {
		requests := stats.Created + stats.Deleted + stats.CleanedUp
		requestsPerSecond = float64(requests) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.String("runID", stats.RunID),
		logger.Int("created", stats.Created),
		logger.Int("deleted", stats.Deleted),
		logger.Int("cleanedUp", stats.CleanedUp),
		logger.Int("failed", stats.Failed),
		logger.Int("listedBefore", stats.ListedBefore),
		logger.Int("listedAfter", stats.ListedAfter),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
