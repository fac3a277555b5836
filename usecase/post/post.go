// Package post implements the post use cases.
package post

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/directory/domain"
	"github.com/fastygo/directory/pkg/validation"
	"github.com/fastygo/directory/repository"
)

type CreateInput struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Content     string `json:"content" validate:"required"`
	UserID      int64  `json:"user_id" validate:"gt=0"`
	IsPublished bool   `json:"is_published"`
}

type UpdateInput struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=255"`
	Content     *string `json:"content" validate:"omitnil,min=1"`
	IsPublished *bool   `json:"is_published"`
}

type ListInput struct {
	Page      int   `json:"page" validate:"min=1"`
	PageSize  int   `json:"page_size" validate:"min=1,max=100"`
	UserID    int64 `json:"user_id" validate:"min=0"`
	Published *bool `json:"published"`
}

type Response struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	UserID      int64     `json:"user_id"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListResponse struct {
	Items    []Response `json:"items"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

func ToResponse(p *domain.Post) *Response {
	if p == nil {
		return nil
	}
	return &Response{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		UserID:      p.UserID,
		IsPublished: p.IsPublished,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type UseCase struct {
	tx     repository.Transactor
	logger *zap.Logger
}

func New(tx repository.Transactor, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{tx: tx, logger: logger}
}

// Create stores a post for an existing author.
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (*Response, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var created *domain.Post
	err := uc.tx.WithinTx(ctx, func(s repository.Store) error {
		if _, err := s.Users().FindByID(ctx, in.UserID); err != nil {
			if domain.IsDomainError(err, domain.ErrCodeNotFound) {
				return domain.ErrAuthorNotFound
			}
			return err
		}

		var err error
		created, err = s.Posts().Create(ctx, domain.NewPost(in.UserID, in.Title, in.Content, in.IsPublished))
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToResponse(created), nil
}

func (uc *UseCase) Get(ctx context.Context, id int64) (*Response, error) {
	var found *domain.Post
	err := uc.tx.WithinTx(ctx, func(s repository.Store) error {
		var err error
		found, err = s.Posts().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToResponse(found), nil
}

// List returns posts newest first, optionally narrowed to one author or to
// published or draft posts.
func (uc *UseCase) List(ctx context.Context, in ListInput) (*ListResponse, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	filter := repository.PostFilter{
		UserID:    in.UserID,
		Published: in.Published,
		Offset:    (in.Page - 1) * in.PageSize,
		Limit:     in.PageSize,
	}

	var (
		posts []domain.Post
		total int
	)
	err := uc.tx.WithinTx(ctx, func(s repository.Store) error {
		var err error
		posts, total, err = s.Posts().FindAll(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]Response, 0, len(posts))
	for i := range posts {
		items = append(items, *ToResponse(&posts[i]))
	}
	return &ListResponse{Items: items, Total: total, Page: in.Page, PageSize: in.PageSize}, nil
}

func (uc *UseCase) Update(ctx context.Context, id int64, in UpdateInput) (*Response, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var updated *domain.Post
	err := uc.tx.WithinTx(ctx, func(s repository.Store) error {
		current, err := s.Posts().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if in.Title != nil {
			current.Title = *in.Title
		}
		if in.Content != nil {
			current.Content = *in.Content
		}
		if in.IsPublished != nil {
			if *in.IsPublished {
				current.Publish()
			} else {
				current.Unpublish()
			}
		}
		updated, err = s.Posts().Update(ctx, id, current)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToResponse(updated), nil
}

func (uc *UseCase) Delete(ctx context.Context, id int64) error {
	return uc.tx.WithinTx(ctx, func(s repository.Store) error {
		deleted, err := s.Posts().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrPostNotFound
		}
		return nil
	})
}
