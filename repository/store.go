package repository

import "context"

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Store exposes the repositories bound to a single session.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
}

// Transactor runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back when it returns an error or panics; a panic is
// re-raised after the rollback.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(Store) error) error
}

// ClampLimit bounds a page size to the range storage adapters accept.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
