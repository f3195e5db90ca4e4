package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func New(email, passwordHash string, now time.Time) *User {
	return &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
}

type Repository interface {
	// CreateWithProfile stores the user and its empty profile atomically.
	// A duplicate email yields an apperror conflict.
	CreateWithProfile(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
}
