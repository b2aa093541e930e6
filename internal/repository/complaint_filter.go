package repository

import (
	"sort"
	"strings"

	"github.com/spec-kit/streetlight-service/internal/domain"
)

// ComplaintFilter captures the read views over the complaint set.
type ComplaintFilter struct {
	UserID *string
	Status *domain.ComplaintStatus
	Search string
}

// Matches reports whether the complaint passes every set criterion.
// Search is a case-insensitive substring match over address and description.
func (f ComplaintFilter) Matches(c *domain.Complaint) bool {
	if f.UserID != nil && c.UserID != *f.UserID {
		return false
	}
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(c.Location.Address), term) &&
			!strings.Contains(strings.ToLower(c.Description), term) {
			return false
		}
	}
	return true
}

// SortByUpdatedDesc orders complaints most recently updated first, ties broken by id.
func SortByUpdatedDesc(complaints []domain.Complaint) {
	sort.SliceStable(complaints, func(i, j int) bool {
		a, b := complaints[i], complaints[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		if len(a.ID) != len(b.ID) {
			return len(a.ID) > len(b.ID)
		}
		return a.ID > b.ID
	})
}
