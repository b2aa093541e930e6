package repository

import (
	"context"
	"time"

	"github.com/spec-kit/streetlight-service/internal/domain"
)

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	// Create stores the complaint and assigns its ID.
	Create(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	// UpdateStatus atomically sets status and updated_at, and admin notes when notes is non-nil.
	// updated_at is advanced past the stored value if at is not strictly later.
	// The status held immediately before this write is returned alongside the result.
	UpdateStatus(ctx context.Context, id string, status domain.ComplaintStatus, notes *string, at time.Time) (*domain.Complaint, domain.ComplaintStatus, error)
	ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int, error)
	CountByUser(ctx context.Context) (map[string]int, error)
	Count(ctx context.Context) (int, error)
}
