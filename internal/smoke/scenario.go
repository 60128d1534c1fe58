package smoke

import (
	"context"
	"fmt"

	"github.com/okian/expenses/pkg/logger"
)

// runScenario walks create, read, partial update, delete and a final 404.
func runScenario(ctx context.Context, c *Client, runID string) error {
	log := logger.Get().Named("smoke")
	log.Info(ctx, "running crud scenario")

	description := "smoke " + runID
	created, err := c.Create(ctx, map[string]any{"amount": 50, "category": "Food", "description": description})
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	if created.ID <= 0 || created.Amount != 50 || created.Category != "Food" || created.Date != "" || created.Description != description {
		return fmt.Errorf("%w: created %+v", ErrMismatch, created)
	}

	read, err := c.Get(ctx, created.ID)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if read != created {
		return fmt.Errorf("%w: read %+v, created %+v", ErrMismatch, read, created)
	}

	updated, err := c.Update(ctx, created.ID, map[string]any{"amount": 200.0})
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	want := created
	want.Amount = 200
	if updated != want {
		return fmt.Errorf("%w: updated %+v, want %+v", ErrMismatch, updated, want)
	}

	if err := c.Delete(ctx, created.ID); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if err := c.ExpectNotFound(ctx, created.ID); err != nil {
		return fmt.Errorf("read after delete: %w", err)
	}

	log.Info(ctx, "crud scenario passed", logger.Int64("id", created.ID))
	return nil
}
