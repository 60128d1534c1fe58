// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/expenses/internal/adapters/repository"
	"github.com/okian/expenses/internal/domain/model"
	"github.com/okian/expenses/pkg/logger"
	"github.com/okian/expenses/pkg/metrics"
)

const defaultDatabaseURL = "memory://"

// Operation names used for logs and metrics.
const (
	opList   = "list"
	opCreate = "create"
	opGet    = "get"
	opUpdate = "update"
	opDelete = "delete"
)

// Service implements the API dependencies for the expenses resource.
type Service struct {
	mu sync.RWMutex

	// Storage
	store     repository.Store
	ownsStore bool

	// Configuration
	databaseURL string
	poolOpts    []repository.Option

	// State
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore injects a ready store. The caller keeps ownership: Stop does
// not close it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDatabaseURL selects the backend Start opens when no store was injected.
func WithDatabaseURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.databaseURL = url
		}
	}
}

// WithPool sizes the SQL connection pool.
func WithPool(maxOpen, maxIdle int, maxLifetime time.Duration) Option {
	return func(s *Service) {
		s.poolOpts = []repository.Option{
			repository.WithMaxOpenConns(maxOpen),
			repository.WithMaxIdleConns(maxIdle),
			repository.WithConnMaxLifetime(maxLifetime),
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		databaseURL: defaultDatabaseURL,
		logger:      nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens storage and begins publishing the stored-rows gauge.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting expenses service...")

	if s.store == nil || s.ownsStore {
		store, err := repository.Open(ctx, s.databaseURL, s.poolOpts...)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStorage, err)
		}
		s.store = store
		s.ownsStore = true
		s.logger.Info(ctx, "storage opened", logger.String("backend", scheme(s.databaseURL)))
	} else {
		s.logger.Info(ctx, "using injected store")
	}

	s.stopCh = make(chan struct{})
	s.refreshStored(ctx)
	s.startMetricsUpdater()

	s.started = true
	s.logger.Info(ctx, "expenses service started")

	return nil
}

// Stop shuts down the background updater and closes storage it opened.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping expenses service...")

	close(s.stopCh)
	s.wg.Wait()

	if s.ownsStore && s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "failed to close store", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "expenses service stopped")
}

// ListExpenses returns every stored expense ordered by id.
func (s *Service) ListExpenses(ctx context.Context) ([]model.Expense, error) {
	store, err := s.current()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	list, err := store.List(ctx)
	s.observe(ctx, opList, start, err)
	return list, err
}

// CreateExpense persists a new expense and returns it with its id.
func (s *Service) CreateExpense(ctx context.Context, d model.Draft) (model.Expense, error) {
	store, err := s.current()
	if err != nil {
		return model.Expense{}, err
	}
	start := time.Now()
	e, err := store.Create(ctx, d)
	s.observe(ctx, opCreate, start, err)
	if err == nil {
		s.logger.Debug(ctx, "expense created", logger.Int64("id", e.ID))
	}
	return e, err
}

// GetExpense returns one expense or model.ErrNotFound.
func (s *Service) GetExpense(ctx context.Context, id int64) (model.Expense, error) {
	store, err := s.current()
	if err != nil {
		return model.Expense{}, err
	}
	start := time.Now()
	e, err := store.Get(ctx, id)
	s.observe(ctx, opGet, start, err)
	return e, err
}

// UpdateExpense applies a partial update. An empty patch still checks
// that the row exists and returns it unchanged.
func (s *Service) UpdateExpense(ctx context.Context, id int64, p model.Patch) (model.Expense, error) {
	store, err := s.current()
	if err != nil {
		return model.Expense{}, err
	}
	start := time.Now()
	var e model.Expense
	if p.Empty() {
		e, err = store.Get(ctx, id)
	} else {
		e, err = store.Update(ctx, id, p)
	}
	s.observe(ctx, opUpdate, start, err)
	return e, err
}

// DeleteExpense removes one expense or returns model.ErrNotFound.
func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	store, err := s.current()
	if err != nil {
		return err
	}
	start := time.Now()
	err = store.Delete(ctx, id)
	s.observe(ctx, opDelete, start, err)
	if err == nil {
		s.logger.Debug(ctx, "expense deleted", logger.Int64("id", id))
	}
	return err
}

// Ping reports whether storage is reachable.
func (s *Service) Ping(ctx context.Context) error {
	store, err := s.current()
	if err != nil {
		return err
	}
	return store.Ping(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
		"backend": scheme(s.databaseURL),
	}
	if !s.ownsStore && s.store != nil {
		stats["backend"] = "injected"
	}

	if s.started {
		ctx := context.Background()
		if n, err := s.store.Count(ctx); err == nil {
			stats["expenses"] = n
			metrics.UpdateExpensesStored(n)
		}
	}

	return stats
}

func (s *Service) current() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// observe records latency and outcome of one storage call.
func (s *Service) observe(ctx context.Context, op string, start time.Time, err error) {
	latencyMs := float64(time.Since(start).Microseconds()) / 1000
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, model.ErrNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
		s.logger.Error(ctx, "storage operation failed",
			logger.String("operation", op),
			logger.Error(err),
		)
	}
	metrics.RecordExpenseOperation(op, outcome, latencyMs)
}

func (s *Service) refreshStored(ctx context.Context) {
	n, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Warn(ctx, "failed to count expenses", logger.Error(err))
		return
	}
	metrics.UpdateExpensesStored(n)
}

// startMetricsUpdater refreshes the stored-rows gauge until Stop.
func (s *Service) startMetricsUpdater() {
	store, stopCh := s.store, s.stopCh
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(metrics.RefreshInterval())
		defer ticker.Stop()

		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if n, err := store.Count(ctx); err == nil {
					metrics.UpdateExpensesStored(n)
				}
				cancel()
			}
		}
	}()
}

// scheme returns the backend name of a database url without credentials.
func scheme(url string) string {
	if name, _, ok := strings.Cut(url, "://"); ok {
		return name
	}
	return "unknown"
}
