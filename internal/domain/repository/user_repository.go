package repository

import (
	"context"

	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
)

// UserRepository defines the credential store.
// Emails are looked up in their normalized (lower-case) form.
type UserRepository interface {
	// Create fails with apperr.ErrEmailTaken when the email is registered.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetForUpdate is GetByID that also locks the row for the enclosing transaction.
	GetForUpdate(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetMany returns the users found among ids, keyed by id.
	GetMany(ctx context.Context, ids []string) (map[string]*entity.User, error)
	Delete(ctx context.Context, id string) error
}
