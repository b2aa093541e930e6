package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/streetlight-service/internal/domain"
	"github.com/spec-kit/streetlight-service/internal/events"
	"github.com/spec-kit/streetlight-service/internal/repository"
	apperrors "github.com/spec-kit/streetlight-service/pkg/util"
)

// ComplaintService is the registry of complaints. Every operation takes the
// acting user and enforces ownership and role checks itself.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// ComplaintDependencies bundles repositories for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	UserRepo      repository.UserRepository
	Dispatcher    events.Dispatcher
	Clock         func() time.Time
}

// ComplaintCreateInput describes complaint creation payload.
type ComplaintCreateInput struct {
	Address     string
	Lat         float64
	Lng         float64
	Description string
}

// ComplaintQuery narrows a listing. Zero value lists everything in scope.
type ComplaintQuery struct {
	Status *domain.ComplaintStatus
	Search string
}

// UserSummary is one row of the admin user directory.
type UserSummary struct {
	User            domain.PublicUser
	CreatedAt       time.Time
	ComplaintsCount int
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		now:        clock,
	}
}

// Create files a new pending complaint owned by actor.
func (s *ComplaintService) Create(ctx context.Context, actor *domain.User, input ComplaintCreateInput) (*domain.Complaint, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("user not authenticated")
	}
	if err := validateCreateInput(&input); err != nil {
		return nil, err
	}

	now := s.now()
	complaint := &domain.Complaint{
		UserID:   actor.ID,
		UserName: actor.Name,
		Location: domain.Location{
			Address:     input.Address,
			Coordinates: domain.Coordinates{Lat: input.Lat, Lng: input.Lng},
		},
		Description: input.Description,
		Status:      domain.ComplaintStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintCreated,
		ComplaintID: complaint.ID,
		Actor:       actorOf(actor),
		Payload: events.ComplaintCreatedPayload{
			OwnerID:   complaint.UserID,
			OwnerName: complaint.UserName,
			Address:   complaint.Location.Address,
			Summary:   stringPreview(complaint.Description, 120),
		},
	})
	return complaint, nil
}

// ListMine returns the actor's own complaints, newest update first. Anonymous callers get an empty list.
func (s *ComplaintService) ListMine(ctx context.Context, actor *domain.User, query ComplaintQuery) ([]domain.Complaint, error) {
	if actor == nil {
		return []domain.Complaint{}, nil
	}
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	ownerID := actor.ID
	return s.complaints.ListWithFilter(ctx, repository.ComplaintFilter{
		UserID: &ownerID,
		Status: query.Status,
		Search: query.Search,
	})
}

// ListAll returns every complaint. Admin only.
func (s *ComplaintService) ListAll(ctx context.Context, actor *domain.User, query ComplaintQuery) ([]domain.Complaint, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	return s.complaints.ListWithFilter(ctx, repository.ComplaintFilter{
		Status: query.Status,
		Search: query.Search,
	})
}

// Get returns one complaint to its owner or an admin.
func (s *ComplaintService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Complaint, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("user not authenticated")
	}
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, id)
	}
	if complaint.UserID != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("complaint belongs to another user")
	}
	return complaint, nil
}

// UpdateStatus moves a complaint to any status. Notes replace the stored admin
// notes only when non-empty; nil or empty notes leave them untouched.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor *domain.User, id string, status domain.ComplaintStatus, notes *string) (*domain.Complaint, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": status})
	}
	if notes != nil && strings.TrimSpace(*notes) == "" {
		notes = nil
	}

	updated, previous, err := s.complaints.UpdateStatus(ctx, id, status, notes, s.now())
	if err != nil {
		return nil, notFoundOr(err, id)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintStatusChanged,
		ComplaintID: updated.ID,
		Actor:       actorOf(actor),
		Payload: events.ComplaintStatusChangedPayload{
			OwnerID:    updated.UserID,
			OwnerName:  updated.UserName,
			Address:    updated.Location.Address,
			OldStatus:  previous,
			NewStatus:  updated.Status,
			AdminNotes: updated.AdminNotes,
		},
	})
	return updated, nil
}

// Stats counts complaints per status. Admin only.
func (s *ComplaintService) Stats(ctx context.Context, actor *domain.User) (map[domain.ComplaintStatus]int, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.complaints.CountByStatus(ctx)
}

// UserSummaries lists accounts with their complaint counts. Admin only.
func (s *ComplaintService) UserSummaries(ctx context.Context, actor *domain.User) ([]UserSummary, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.complaints.CountByUser(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, UserSummary{
			User:            users[i].Public(),
			CreatedAt:       users[i].CreatedAt,
			ComplaintsCount: counts[users[i].ID],
		})
	}
	return summaries, nil
}

func requireAdmin(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthenticated("user not authenticated")
	}
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

func validateCreateInput(input *ComplaintCreateInput) error {
	input.Address = strings.TrimSpace(input.Address)
	input.Description = strings.TrimSpace(input.Description)

	details := map[string]any{}
	if input.Address == "" {
		details["address"] = "required"
	}
	if input.Description == "" {
		details["description"] = "required"
	}
	if math.IsNaN(input.Lat) || input.Lat < -90 || input.Lat > 90 {
		details["lat"] = "must be between -90 and 90"
	}
	if math.IsNaN(input.Lng) || input.Lng < -180 || input.Lng > 180 {
		details["lng"] = "must be between -180 and 180"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid complaint", details)
	}
	return nil
}

func validateQuery(query ComplaintQuery) error {
	if query.Status != nil && !query.Status.Valid() {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": *query.Status})
	}
	return nil
}

func notFoundOr(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("complaint", map[string]any{"id": id})
	}
	return err
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func actorOf(user *domain.User) events.Actor {
	return events.Actor{UserID: user.ID, Role: user.Role}
}

// stringPreview shortens body to at most max runes, marking the cut with "...".
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
