package smoke

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okian/expenses/pkg/logger"
	"golang.org/x/sync/errgroup"
)

var loadCategories = []string{"Food", "Transport", "Rent", "Utilities", "Books", "Travel", "Health", "Misc"}

// runLoad creates Creates expenses, deletes Deletes of them and checks
// that the listing grew by exactly the difference. Remaining rows are
// deleted afterwards.
func runLoad(ctx context.Context, c *Client, cfg *Config, stats *Stats) error {
	log := logger.Get().Named("smoke")

	before, err := c.List(ctx)
	if err != nil {
		return fmt.Errorf("list before load: %w", err)
	}
	stats.ListedBefore = len(before)

	log.Info(ctx, "creating expenses",
		logger.Int("creates", cfg.Creates),
		logger.Int("workers", cfg.Workers),
	)

	var (
		mu      sync.Mutex
		created = make([]int64, 0, cfg.Creates)
		failed  atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := 0; i < cfg.Creates; i++ {
		g.Go(func() error {
			e, err := c.Create(gctx, map[string]any{
				"amount":      float64(i%1000) + 0.5,
				"category":    loadCategories[i%len(loadCategories)],
				"date":        "2024-01-01",
				"description": fmt.Sprintf("smoke %s #%d", stats.RunID, i),
			})
			if err != nil {
				failed.Add(1)
				return fmt.Errorf("create #%d: %w", i, err)
			}
			mu.Lock()
			created = append(created, e.ID)
			mu.Unlock()
			if cfg.Verbose {
				log.Debug(gctx, "created expense", logger.Int64("id", e.ID))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		stats.Failed = int(failed.Load())
		cleanup(ctx, c, cfg, created, stats)
		return err
	}
	stats.Created = len(created)

	toDelete, remaining := created[:cfg.Deletes], created[cfg.Deletes:]
	if err := deleteAll(ctx, c, cfg.Workers, toDelete); err != nil {
		cleanup(ctx, c, cfg, created, stats)
		return fmt.Errorf("delete: %w", err)
	}
	stats.Deleted = len(toDelete)

	after, err := c.List(ctx)
	if err != nil {
		cleanup(ctx, c, cfg, remaining, stats)
		return fmt.Errorf("list after load: %w", err)
	}
	stats.ListedAfter = len(after)

	if grew := stats.ListedAfter - stats.ListedBefore; grew != cfg.Creates-cfg.Deletes {
		cleanup(ctx, c, cfg, remaining, stats)
		return fmt.Errorf("%w: listing grew by %d, want %d", ErrMismatch, grew, cfg.Creates-cfg.Deletes)
	}

	cleanup(ctx, c, cfg, remaining, stats)
	log.Info(ctx, "load pass passed",
		logger.Int("created", stats.Created),
		logger.Int("deleted", stats.Deleted),
		logger.Int("listedAfter", stats.ListedAfter),
	)
	return nil
}

func deleteAll(ctx context.Context, c *Client, workers int, ids []int64) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, id := range ids {
		g.Go(func() error {
			return c.Delete(gctx, id)
		})
	}
	return g.Wait()
}

// cleanup removes rows the run created. Failures are logged, not returned.
func cleanup(ctx context.Context, c *Client, cfg *Config, ids []int64, stats *Stats) {
	if len(ids) == 0 {
		return
	}
	if err := deleteAll(ctx, c, cfg.Workers, ids); err != nil {
		logger.Get().Warn(ctx, "cleanup incomplete", logger.Error(err))
		return
	}
	stats.CleanedUp += len(ids)
}
