// Package sqlite implements the repositories on database/sql with the
// modernc SQLite driver. Timestamps are stored as unix microseconds.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/fastygo/directory/domain"
	"github.com/fastygo/directory/repository"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type store struct {
	users *userRepository
	posts *postRepository
}

func newStore(q querier, now func() time.Time) *store {
	return &store{
		users: &userRepository{q: q, now: now},
		posts: &postRepository{q: q, now: now},
	}
}

func (s *store) Users() repository.UserRepository { return s.users }
func (s *store) Posts() repository.PostRepository { return s.posts }

// Transactor opens one SQLite transaction per WithinTx call.
type Transactor struct {
	db  *sql.DB
	now func() time.Time
}

// Option customises a Transactor.
type Option func(*Transactor)

// WithClock overrides the time source used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(t *Transactor) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTransactor returns a SQLite-backed repository.Transactor.
func NewTransactor(db *sql.DB, opts ...Option) *Transactor {
	t := &Transactor{db: db, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithinTx runs fn against repositories bound to a fresh transaction.
func (t *Transactor) WithinTx(ctx context.Context, fn func(repository.Store) error) (err error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	if err = fn(newStore(tx, t.now)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", mapError(err))
	}
	return nil
}

// Store returns repositories that run each statement outside a transaction.
func (t *Transactor) Store() repository.Store {
	return newStore(t.db, t.now)
}

// mapError translates constraint violations into domain errors.
func mapError(err error) error {
	var sqErr *sqlite.Error
	if !errors.As(err, &sqErr) {
		return err
	}
	msg := sqErr.Error()
	switch sqErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		switch {
		case strings.Contains(msg, "users.email"):
			return domain.ErrEmailTaken.Wrap(err)
		case strings.Contains(msg, "users.username"):
			return domain.ErrUsernameTaken.Wrap(err)
		}
		return domain.WrapError(domain.ErrCodeConflict, "unique constraint violated", err)
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return domain.ErrAuthorNotFound.Wrap(err)
	}
	return err
}

func toMicros(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

func fromMicros(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}

func direction(order domain.SortOrder) string {
	if order == domain.SortAsc {
		return "ASC"
	}
	return "DESC"
}

var _ repository.Transactor = (*Transactor)(nil)
