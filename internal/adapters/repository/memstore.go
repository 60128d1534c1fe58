package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/expenses/internal/domain/model"
)

// MemStore is an in-process Store. Ids start at 1 and are never reused.
type MemStore struct {
	mu     sync.RWMutex
	rows   map[int64]model.Expense
	nextID int64
	closed bool
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		rows:   make(map[int64]model.Expense),
		nextID: 1,
	}
}

// Create implements Store.
func (s *MemStore) Create(_ context.Context, d model.Draft) (model.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Expense{}, ErrClosed
	}

	e := d.Expense()
	e.ID = s.nextID
	s.nextID++
	s.rows[e.ID] = e
	return e, nil
}

// Get implements Store.
func (s *MemStore) Get(_ context.Context, id int64) (model.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.Expense{}, ErrClosed
	}

	e, ok := s.rows[id]
	if !ok {
		return model.Expense{}, ErrNotFound
	}
	return e, nil
}

// List implements Store.
func (s *MemStore) List(_ context.Context) ([]model.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	out := make([]model.Expense, 0, len(s.rows))
	for _, e := range s.rows {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update implements Store.
func (s *MemStore) Update(_ context.Context, id int64, p model.Patch) (model.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Expense{}, ErrClosed
	}

	e, ok := s.rows[id]
	if !ok {
		return model.Expense{}, ErrNotFound
	}
	e = p.Apply(e)
	s.rows[id] = e
	return e, nil
}

// Delete implements Store.
func (s *MemStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if _, ok := s.rows[id]; !ok {
		return ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

// Ping implements Store.
func (s *MemStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Count implements Store.
func (s *MemStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.rows), nil
}

// Close implements Store. Closing twice is a no-op.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
