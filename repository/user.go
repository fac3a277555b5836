package repository

import (
	"context"

	"github.com/fastygo/directory/domain"
)

// UserFilter selects one page of users.
type UserFilter struct {
	Offset    int
	Limit     int
	SortField domain.SortField
	SortOrder domain.SortOrder
}

// UserFilterFrom converts validated list criteria into a storage filter.
func UserFilterFrom(c domain.ListCriteria) UserFilter {
	return UserFilter{
		Offset:    c.Offset(),
		Limit:     c.Limit(),
		SortField: c.SortField(),
		SortOrder: c.SortOrder(),
	}
}

// UserRepository persists users. Lookups return domain.ErrUserNotFound when
// nothing matches; unique violations surface as domain.ErrEmailTaken or
// domain.ErrUsernameTaken.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	// FindAll returns the requested page and the total number of users.
	FindAll(ctx context.Context, filter UserFilter) ([]domain.User, int, error)
	Update(ctx context.Context, id int64, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
