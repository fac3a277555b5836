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

const postColumns = `id, title, content, is_published, user_id, created_at, updated_at`

const postFilter = `WHERE (?1 = 0 OR user_id = ?1) AND (?2 IS NULL OR is_published = ?2)`

type postRepository struct {
	q   querier
	now func() time.Time
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if post == nil {
		return nil, domain.ErrInvalidPayload
	}

	now := toMicros(r.now())
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO posts (title, content, is_published, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		post.Title, post.Content, post.IsPublished, post.UserID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", mapError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *postRepository) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := scanPost(r.q.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("query post: %w", err)
	}
	return post, nil
}

func (r *postRepository) FindAll(ctx context.Context, filter repository.PostFilter) ([]domain.Post, int, error) {
	var total int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts `+postFilter,
		filter.UserID, filter.Published).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	query := `SELECT ` + postColumns + ` FROM posts ` + postFilter +
		` ORDER BY created_at DESC, id DESC LIMIT ?3 OFFSET ?4`

	rows, err := r.q.QueryContext(ctx, query,
		filter.UserID,
		filter.Published,
		repository.ClampLimit(filter.Limit),
		max(filter.Offset, 0),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]domain.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *post)
	}
	return posts, total, rows.Err()
}

func (r *postRepository) Update(ctx context.Context, id int64, post *domain.Post) (*domain.Post, error) {
	if post == nil {
		return nil, domain.ErrInvalidPayload
	}

	result, err := r.q.ExecContext(ctx,
		`UPDATE posts
		 SET title = ?, content = ?, is_published = ?, updated_at = MAX(?, created_at)
		 WHERE id = ?`,
		post.Title, post.Content, post.IsPublished, toMicros(r.now()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", mapError(err))
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	} else if n == 0 {
		return nil, domain.ErrPostNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *postRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	return n > 0, nil
}

func scanPost(row scanner) (*domain.Post, error) {
	var (
		post             domain.Post
		created, updated int64
	)
	if err := row.Scan(&post.ID, &post.Title, &post.Content, &post.IsPublished, &post.UserID, &created, &updated); err != nil {
		return nil, err
	}
	post.CreatedAt = fromMicros(created)
	post.UpdatedAt = fromMicros(updated)
	return &post, nil
}
