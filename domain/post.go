package domain

import "time"

// Post is a piece of content authored by a user.
type Post struct {
	ID          int64
	UserID      int64
	Title       string
	Content     string
	IsPublished bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewPost(userID int64, title, content string, published bool) *Post {
	return &Post{
		UserID:      userID,
		Title:       title,
		Content:     content,
		IsPublished: published,
	}
}

func (p *Post) Publish() {
	if p == nil {
		return
	}
	p.IsPublished = true
}

func (p *Post) Unpublish() {
	if p == nil {
		return
	}
	p.IsPublished = false
}

// Equal follows the same identity rule as User.Equal.
func (p *Post) Equal(other *Post) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.ID == 0 || other.ID == 0 {
		return p == other
	}
	return p.ID == other.ID
}
