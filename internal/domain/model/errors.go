package model

import "errors"

// Sentinel kinds for expense errors.
var (
	ErrInvalidInput = errors.New("invalid expense data")
	ErrNotFound     = errors.New("expense not found")
)
