package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/directory/domain"
	"github.com/fastygo/directory/repository"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"

	constraintUserEmail    = "users_email_key"
	constraintUserUsername = "users_username_key"
	constraintPostAuthor   = "posts_user_id_fkey"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type store struct {
	users *userRepository
	posts *postRepository
}

func newStore(q querier) *store {
	return &store{users: &userRepository{q: q}, posts: &postRepository{q: q}}
}

func (s *store) Users() repository.UserRepository { return s.users }
func (s *store) Posts() repository.PostRepository { return s.posts }

// Transactor opens one pgx transaction per WithinTx call.
type Transactor struct {
	pool *pgxpool.Pool
}

// NewTransactor returns a Postgres-backed repository.Transactor.
func NewTransactor(pool *pgxpool.Pool) *Transactor {
	return &Transactor{pool: pool}
}

// WithinTx runs fn against repositories bound to a fresh transaction.
func (t *Transactor) WithinTx(ctx context.Context, fn func(repository.Store) error) (err error) {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	if err = fn(newStore(tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", mapError(err))
	}
	return nil
}

// mapError translates constraint violations into domain errors and leaves
// everything else untouched.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintUserEmail:
			return domain.ErrEmailTaken.Wrap(err)
		case constraintUserUsername:
			return domain.ErrUsernameTaken.Wrap(err)
		}
		return domain.WrapError(domain.ErrCodeConflict, "unique constraint violated", err)
	case codeForeignKeyViolation:
		if pgErr.ConstraintName == constraintPostAuthor {
			return domain.ErrAuthorNotFound.Wrap(err)
		}
	}
	return err
}

func direction(order domain.SortOrder) string {
	if order == domain.SortAsc {
		return "ASC"
	}
	return "DESC"
}

var _ repository.Transactor = (*Transactor)(nil)
