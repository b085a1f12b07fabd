package model

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrAdminChallenge = errors.New("admin display name must match the admin email")
	ErrInvalidToken   = errors.New("invalid identity token")
	ErrNotAdmin       = errors.New("operation requires an admin identity")
)

type UserID string

// User is the signed-in shopper or admin. IsAdmin is derived from the
// email at every login and is never read back from storage as an
// authorization input.
type User struct {
	ID        UserID
	Email     string
	Name      string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type UserRepository interface {
	NextID() (UserID, error)
	FindByEmail(email string) (*User, error)
	Store(user *User) error
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
