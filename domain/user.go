package domain

import (
	"strings"
	"time"
)

// User represents a registered identity in the directory.
type User struct {
	ID        int64
	Email     string
	Username  string
	FullName  *string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser builds an active, not yet persisted user.
func NewUser(email, username string, fullName *string) *User {
	return &User{
		Email:    NormalizeEmail(email),
		Username: username,
		FullName: cloneString(fullName),
		IsActive: true,
	}
}

// Activate marks the user as active.
func (u *User) Activate() {
	if u == nil {
		return
	}
	u.IsActive = true
}

// Deactivate marks the user as inactive.
func (u *User) Deactivate() {
	if u == nil {
		return
	}
	u.IsActive = false
}

// UpdateProfile overwrites the full name when one is supplied. A nil value
// leaves the current name untouched.
func (u *User) UpdateProfile(fullName *string) {
	if u == nil || fullName == nil {
		return
	}
	u.FullName = cloneString(fullName)
}

func (u *User) CanLogin() bool {
	return u != nil && u.IsActive
}

// Equal reports identity equality: two users are equal when they share an ID,
// whatever their other fields hold. Unsaved users (ID 0) are only equal to
// themselves.
func (u *User) Equal(other *User) bool {
	if u == nil || other == nil {
		return u == other
	}
	if u.ID == 0 || other.ID == 0 {
		return u == other
	}
	return u.ID == other.ID
}

// NormalizeEmail trims and lower-cases an address. Emails are compared
// case-insensitively across the directory.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
