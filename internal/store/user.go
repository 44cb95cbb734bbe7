package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The user must already carry a
	// hashed password. Returns ErrEmailExists if the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies an existing user's profile fields (name, email, role,
	// active flag). Returns ErrUserNotFound if the user does not exist and
	// ErrEmailExists when updating to an email already in use.
	Update(ctx context.Context, user *domain.User) error

	// UpdatePassword replaces the user's password hash.
	// Returns ErrUserNotFound if the user does not exist.
	UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error

	// Delete removes a user from the store by their ID.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
