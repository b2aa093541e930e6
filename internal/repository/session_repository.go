package repository

import (
	"context"
	"time"

	"github.com/spec-kit/streetlight-service/internal/domain"
)

// SessionRepository stores active sessions keyed by session id.
type SessionRepository interface {
	Save(ctx context.Context, session *domain.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Delete removes the session; deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error
}
