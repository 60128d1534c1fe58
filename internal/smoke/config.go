// Package smoke drives a running expenses service end to end: health,
// the create/read/update/delete scenario, and a concurrent load pass.
package smoke

import (
	"fmt"
	"time"
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL string        // Base URL of the service
	Creates int           // Expenses created by the load pass
	Deletes int           // Of those, how many are deleted before verification
	Workers int           // Concurrent requests in flight
	Timeout time.Duration // HTTP request timeout
	Verbose bool          // Enable verbose logging
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: url must not be empty", ErrInvalidConfig)
	case c.Creates < 0 || c.Deletes < 0:
		return fmt.Errorf("%w: creates and deletes must not be negative", ErrInvalidConfig)
	case c.Deletes > c.Creates:
		return fmt.Errorf("%w: deletes (%d) exceed creates (%d)", ErrInvalidConfig, c.Deletes, c.Creates)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Expense mirrors the service's JSON shape.
type Expense struct {
	ID          int64   `json:"id"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}

// Stats holds run statistics.
type Stats struct {
	RunID        string
	Created      int
	Deleted      int
	CleanedUp    int
	Failed       int
	ListedBefore int
	ListedAfter  int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}
