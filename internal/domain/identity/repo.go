package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrPhoneTaken   = errors.New("phone number already registered")
)

// Repository is the persistence contract for user accounts.
type Repository interface {
	// Create inserts the user, returning ErrPhoneTaken when the phone is
	// already registered.
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
	PhoneInUse(ctx context.Context, phone string) (bool, error)
	Update(ctx context.Context, u *User) error
}
