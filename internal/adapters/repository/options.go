package repository

import "time"

const (
	defaultMaxOpenConns    = 50
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
)

// pool holds connection pool sizing for SQL backends.
type pool struct {
	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
}

func defaultPool() pool {
	return pool{
		maxOpenConns:    defaultMaxOpenConns,
		maxIdleConns:    defaultMaxIdleConns,
		connMaxLifetime: defaultConnMaxLifetime,
	}
}

// Option applies a configuration option to Open.
type Option func(*pool)

// WithMaxOpenConns caps open connections. Ignored by sqlite, which always
// runs on a single connection.
func WithMaxOpenConns(n int) Option {
	return func(p *pool) {
		if n > 0 {
			p.maxOpenConns = n
		}
	}
}

// WithMaxIdleConns caps idle connections kept in the pool.
func WithMaxIdleConns(n int) Option {
	return func(p *pool) {
		if n >= 0 {
			p.maxIdleConns = n
		}
	}
}

// WithConnMaxLifetime sets how long a connection may be reused.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(p *pool) {
		if d > 0 {
			p.connMaxLifetime = d
		}
	}
}
