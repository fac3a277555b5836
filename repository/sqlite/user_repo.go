package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fastygo/directory/domain"
	"github.com/fastygo/directory/repository"
)

const userColumns = `id, email, username, full_name, is_active, created_at, updated_at`

// email carries COLLATE NOCASE in the schema, so ordering on it is case-insensitive.
var userSortColumns = map[domain.SortField]string{
	domain.SortByCreatedAt: "created_at",
	domain.SortByEmail:     "email",
	domain.SortByUsername:  "username",
}

type userRepository struct {
	q   querier
	now func() time.Time
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, domain.ErrInvalidPayload
	}

	now := toMicros(r.now())
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO users (email, username, full_name, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.Email, user.Username, nullString(user.FullName), user.IsActive, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", mapError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)`, email)
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)`, username)
}

func (r *userRepository) FindAll(ctx context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	var total int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	column, ok := userSortColumns[filter.SortField]
	if !ok {
		column = userSortColumns[domain.SortByCreatedAt]
	}
	dir := direction(filter.SortOrder)

	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY %s %s, id %s LIMIT ? OFFSET ?`,
		userColumns, column, dir, dir)

	rows, err := r.q.QueryContext(ctx, query, repository.ClampLimit(filter.Limit), max(filter.Offset, 0))
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, total, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, id int64, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, domain.ErrInvalidPayload
	}

	result, err := r.q.ExecContext(ctx,
		`UPDATE users
		 SET email = ?, username = ?, full_name = ?, is_active = ?, updated_at = MAX(?, created_at)
		 WHERE id = ?`,
		user.Email, user.Username, nullString(user.FullName), user.IsActive, toMicros(r.now()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", mapError(err))
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	} else if n == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *userRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return n > 0, nil
}

func (r *userRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

func (r *userRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var found bool
	if err := r.q.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("check user existence: %w", err)
	}
	return found, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*domain.User, error) {
	var (
		user             domain.User
		fullName         sql.NullString
		created, updated int64
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Username, &fullName, &user.IsActive, &created, &updated); err != nil {
		return nil, err
	}
	if fullName.Valid {
		user.FullName = &fullName.String
	}
	user.CreatedAt = fromMicros(created)
	user.UpdatedAt = fromMicros(updated)
	return &user, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
