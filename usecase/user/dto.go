package user

import (
	"time"

	"github.com/fastygo/directory/domain"
)

// CreateInput is the payload for creating a user.
type CreateInput struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Username string  `json:"username" validate:"required,min=3,max=50"`
	FullName *string `json:"full_name" validate:"omitnil,max=255"`
}

// UpdateInput carries the fields of a partial update. Nil fields are left
// unchanged.
type UpdateInput struct {
	Email    *string `json:"email" validate:"omitnil,email,max=255"`
	Username *string `json:"username" validate:"omitnil,min=3,max=50"`
	FullName *string `json:"full_name" validate:"omitnil,max=255"`
	IsActive *bool   `json:"is_active"`
}

// ListInput selects a page of users.
type ListInput struct {
	Page     int    `json:"page" validate:"min=1"`
	PageSize int    `json:"page_size" validate:"min=1,max=100"`
	Sort     string `json:"sort" validate:"omitempty,oneof=created_at email username"`
	Order    string `json:"order" validate:"omitempty,oneof=asc desc"`
}

// Response is the public representation of a user.
type Response struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  *string   `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListResponse is one page of users.
type ListResponse struct {
	Items    []Response `json:"items"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// ToResponse maps a stored user to its public form.
func ToResponse(u *domain.User) *Response {
	if u == nil {
		return nil
	}
	return &Response{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FullName:  u.FullName,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
