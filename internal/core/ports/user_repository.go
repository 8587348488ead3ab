package ports

import (
	"context"

	"github.com/taskflow/taskflow-api/internal/core/domain"
)

// UserRepository defines the interface for credential persistence.
// Lookups return domain.ErrUserNotFound when no user matches; Create returns
// domain.ErrEmailTaken when the unique email index rejects the insert.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}
