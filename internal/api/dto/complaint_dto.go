package dto

import (
	"time"

	"github.com/spec-kit/streetlight-service/internal/domain"
)

// CoordinatesPayload carries latitude and longitude in degrees.
type CoordinatesPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LocationPayload identifies the faulty streetlight.
type LocationPayload struct {
	Address     string             `json:"address"`
	Coordinates CoordinatesPayload `json:"coordinates"`
}

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Location    LocationPayload `json:"location"`
	Description string          `json:"description"`
}

// UpdateStatusRequest payload. Notes are optional.
type UpdateStatusRequest struct {
	Status domain.ComplaintStatus `json:"status"`
	Notes  *string                `json:"notes,omitempty"`
}

// ComplaintResponse is the public view of a complaint.
type ComplaintResponse struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"user_id"`
	UserName    string                 `json:"user_name"`
	Location    LocationPayload        `json:"location"`
	Description string                 `json:"description"`
	Status      domain.ComplaintStatus `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	AdminNotes  *string                `json:"admin_notes,omitempty"`
}

// StatsResponse counts complaints per status.
type StatsResponse struct {
	Total    int                            `json:"total"`
	ByStatus map[domain.ComplaintStatus]int `json:"by_status"`
}

// NewComplaintResponse maps a domain complaint.
func NewComplaintResponse(c *domain.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ID:       c.ID,
		UserID:   c.UserID,
		UserName: c.UserName,
		Location: LocationPayload{
			Address:     c.Location.Address,
			Coordinates: CoordinatesPayload{Lat: c.Location.Coordinates.Lat, Lng: c.Location.Coordinates.Lng},
		},
		Description: c.Description,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		AdminNotes:  c.AdminNotes,
	}
}

// NewComplaintList maps a slice, never returning nil.
func NewComplaintList(items []domain.Complaint) []ComplaintResponse {
	out := make([]ComplaintResponse, 0, len(items))
	for i := range items {
		out = append(out, NewComplaintResponse(&items[i]))
	}
	return out
}
