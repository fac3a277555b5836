package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fastygo/directory/domain"
	"github.com/fastygo/directory/repository"
)

const postColumns = `id, title, content, is_published, user_id, created_at, updated_at`

const postFilter = `WHERE ($1::bigint = 0 OR user_id = $1) AND ($2::boolean IS NULL OR is_published = $2)`

type postRepository struct {
	q querier
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if post == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO posts (title, content, is_published, user_id)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + postColumns

	created, err := scanPost(r.q.QueryRow(ctx, query, post.Title, post.Content, post.IsPublished, post.UserID))
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", mapError(err))
	}
	return created, nil
}

func (r *postRepository) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	const query = `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("query post: %w", err)
	}
	return post, nil
}

func (r *postRepository) FindAll(ctx context.Context, filter repository.PostFilter) ([]domain.Post, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM posts `+postFilter,
		filter.UserID, filter.Published).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	query := `SELECT ` + postColumns + ` FROM posts ` + postFilter +
		` ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`

	rows, err := r.q.Query(ctx, query,
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
			return nil, 0, err
		}
		posts = append(posts, *post)
	}
	return posts, total, rows.Err()
}

func (r *postRepository) Update(ctx context.Context, id int64, post *domain.Post) (*domain.Post, error) {
	if post == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	UPDATE posts
	SET title = $2,
		content = $3,
		is_published = $4,
		updated_at = GREATEST(NOW(), created_at)
	WHERE id = $1
	RETURNING ` + postColumns

	updated, err := scanPost(r.q.QueryRow(ctx, query, id, post.Title, post.Content, post.IsPublished))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	return updated, nil
}

func (r *postRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var post domain.Post
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.IsPublished,
		&post.UserID,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &post, nil
}
