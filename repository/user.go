package repository

import (
	"context"

	"github.com/fastygo/daybook/domain"
)

// UserRepository stores accounts. Lookups of unknown users return domain.ErrUserNotFound.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail expects an already normalised (trimmed, lower-cased) address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create fails with domain.ErrEmailTaken when the address is registered.
	Create(ctx context.Context, user *domain.User) error
	// Upsert writes email and profile metadata; an existing password hash is never changed.
	Upsert(ctx context.Context, user *domain.User) error
}
