// Package repository defines the expense store interface and its backends.
package repository

import (
	"context"

	"github.com/okian/expenses/internal/domain/model"
)

// Store provides read/write access to persisted expenses.
type Store interface {
	// Create inserts a new row and returns it with its assigned id.
	Create(ctx context.Context, d model.Draft) (model.Expense, error)

	// Get returns the expense with the given id.
	// Returns ErrNotFound if no row has that id.
	Get(ctx context.Context, id int64) (model.Expense, error)

	// List returns every expense ordered by id.
	List(ctx context.Context) ([]model.Expense, error)

	// Update overwrites the fields present in p and returns the stored row.
	// Returns ErrNotFound if no row has that id.
	Update(ctx context.Context, id int64, p model.Patch) (model.Expense, error)

	// Delete removes the row. Returns ErrNotFound if no row has that id.
	Delete(ctx context.Context, id int64) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Count returns the number of stored expenses.
	Count(ctx context.Context) (int, error)

	// Close releases the backend.
	Close() error
}
