// Package repo holds the in-memory repositories for work orders and catalog
// records. Every accessor returns deep copies, so callers can never mutate
// stored state except through the repository itself.
package repo

import "errors"

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("not found")
