package repository

import (
	"errors"

	"github.com/okian/expenses/internal/domain/model"
)

// Sentinel kinds for storage errors.
var (
	ErrNotFound       = model.ErrNotFound
	ErrUnsupportedURL = errors.New("unsupported database url")
	ErrClosed         = errors.New("store closed")
)
