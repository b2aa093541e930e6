package repository

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/spec-kit/streetlight-service/internal/domain"
)

// updateTick is the minimum step between consecutive updated_at values of one
// complaint, matching Postgres timestamp precision.
const updateTick = time.Microsecond

type memoryComplaintRepository struct {
	mu      sync.RWMutex
	nextID  int64
	order   []string
	records map[string]*domain.Complaint
}

// NewMemoryComplaintRepository returns a process-local complaint store.
func NewMemoryComplaintRepository() ComplaintRepository {
	return &memoryComplaintRepository{records: make(map[string]*domain.Complaint)}
}

func (r *memoryComplaintRepository) Create(_ context.Context, complaint *domain.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	complaint.ID = strconv.FormatInt(r.nextID, 10)
	r.records[complaint.ID] = complaint.Clone()
	r.order = append(r.order, complaint.ID)
	return nil
}

func (r *memoryComplaintRepository) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return stored.Clone(), nil
}

func (r *memoryComplaintRepository) UpdateStatus(_ context.Context, id string, status domain.ComplaintStatus, notes *string, at time.Time) (*domain.Complaint, domain.ComplaintStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.records[id]
	if !ok {
		return nil, "", ErrNotFound
	}

	next := stored.Clone()
	next.Status = status
	if !at.After(stored.UpdatedAt) {
		at = stored.UpdatedAt.Add(updateTick)
	}
	next.UpdatedAt = at
	if notes != nil {
		value := *notes
		next.AdminNotes = &value
	}
	r.records[id] = next
	return next.Clone(), stored.Status, nil
}

func (r *memoryComplaintRepository) ListWithFilter(_ context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Complaint, 0, len(r.order))
	for _, id := range r.order {
		stored := r.records[id]
		if !filter.Matches(stored) {
			continue
		}
		result = append(result, *stored.Clone())
	}
	SortByUpdatedDesc(result)
	return result, nil
}

func (r *memoryComplaintRepository) CountByStatus(_ context.Context) (map[domain.ComplaintStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[domain.ComplaintStatus]int, len(domain.ComplaintStatuses))
	for _, status := range domain.ComplaintStatuses {
		counts[status] = 0
	}
	for _, stored := range r.records {
		counts[stored.Status]++
	}
	return counts, nil
}

func (r *memoryComplaintRepository) CountByUser(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, stored := range r.records {
		counts[stored.UserID]++
	}
	return counts, nil
}

func (r *memoryComplaintRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}
