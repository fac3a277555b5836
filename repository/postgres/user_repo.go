package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fastygo/directory/domain"
	"github.com/fastygo/directory/repository"
)

const userColumns = `id, email, username, full_name, is_active, created_at, updated_at`

// userSortColumns whitelists ORDER BY expressions.
var userSortColumns = map[domain.SortField]string{
	domain.SortByCreatedAt: "created_at",
	domain.SortByEmail:     "LOWER(email)",
	domain.SortByUsername:  "username",
}

type userRepository struct {
	q querier
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO users (email, username, full_name, is_active)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + userColumns

	created, err := scanUser(r.q.QueryRow(ctx, query,
		user.Email,
		user.Username,
		user.FullName,
		user.IsActive,
	))
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", mapError(err))
	}
	return created, nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return r.findOne(ctx, query, email)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.findOne(ctx, query, username)
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`
	return r.exists(ctx, query, email)
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`
	return r.exists(ctx, query, username)
}

func (r *userRepository) FindAll(ctx context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	column, ok := userSortColumns[filter.SortField]
	if !ok {
		column = userSortColumns[domain.SortByCreatedAt]
	}
	dir := direction(filter.SortOrder)

	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY %s %s, id %s LIMIT $1 OFFSET $2`,
		userColumns, column, dir, dir)

	rows, err := r.q.Query(ctx, query, repository.ClampLimit(filter.Limit), max(filter.Offset, 0))
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	return users, total, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, id int64, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	UPDATE users
	SET email = $2,
		username = $3,
		full_name = $4,
		is_active = $5,
		updated_at = GREATEST(NOW(), created_at)
	WHERE id = $1
	RETURNING ` + userColumns

	updated, err := scanUser(r.q.QueryRow(ctx, query,
		id,
		user.Email,
		user.Username,
		user.FullName,
		user.IsActive,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", mapError(err))
	}
	return updated, nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *userRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

func (r *userRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var found bool
	if err := r.q.QueryRow(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("check user existence: %w", err)
	}
	return found, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.FullName,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
