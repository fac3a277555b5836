package repository

import (
	"context"

	"github.com/fastygo/directory/domain"
)

// PostFilter selects one page of posts, newest first.
type PostFilter struct {
	UserID    int64
	Published *bool
	Offset    int
	Limit     int
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) (*domain.Post, error)
	FindByID(ctx context.Context, id int64) (*domain.Post, error)
	FindAll(ctx context.Context, filter PostFilter) ([]domain.Post, int, error)
	Update(ctx context.Context, id int64, post *domain.Post) (*domain.Post, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
