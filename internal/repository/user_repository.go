package repository

import (
	"context"

	"github.com/spec-kit/streetlight-service/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	// Create stores the account and assigns its ID. Returns ErrEmailExists on conflict.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}
