package repository

import (
	"context"
	"errors"

	"github.com/shopora/user-service/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned by Create when the email is already registered.
	ErrEmailTaken = errors.New("email already taken")
)

// UserRepository defines the persistence operations the account lifecycle
// needs. Implementations must reject Create on a duplicate email and keep
// address order stable across reads.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// SetActivated flips the activation flag to true. Activation is
	// monotonic; there is no way back to false.
	SetActivated(ctx context.Context, id string) error
	SetProfilePhoto(ctx context.Context, id, photoURL string) error
	AppendAddress(ctx context.Context, id string, addr entity.Address) error
}
