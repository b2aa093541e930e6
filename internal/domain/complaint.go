package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "pending"
	ComplaintStatusInProgress ComplaintStatus = "in-progress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
	ComplaintStatusRejected   ComplaintStatus = "rejected"
)

// ComplaintStatuses lists every status in display order.
var ComplaintStatuses = []ComplaintStatus{
	ComplaintStatusPending,
	ComplaintStatusInProgress,
	ComplaintStatusResolved,
	ComplaintStatusRejected,
}

// Valid reports whether s is one of the known statuses.
func (s ComplaintStatus) Valid() bool {
	for _, candidate := range ComplaintStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// Coordinates are WGS84 degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Location describes where the faulty streetlight is.
type Location struct {
	Address     string
	Coordinates Coordinates
}

// Complaint is the aggregate for a reported streetlight issue.
type Complaint struct {
	ID          string
	UserID      string
	UserName    string
	Location    Location
	Description string
	Status      ComplaintStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	AdminNotes  *string
}

// Clone returns a deep copy so callers cannot alias stored state.
func (c *Complaint) Clone() *Complaint {
	if c == nil {
		return nil
	}
	out := *c
	if c.AdminNotes != nil {
		notes := *c.AdminNotes
		out.AdminNotes = &notes
	}
	return &out
}
