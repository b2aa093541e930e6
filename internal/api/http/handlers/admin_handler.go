package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/streetlight-service/internal/api/dto"
	"github.com/spec-kit/streetlight-service/internal/auth"
	"github.com/spec-kit/streetlight-service/internal/domain"
	"github.com/spec-kit/streetlight-service/internal/service"
	apperrors "github.com/spec-kit/streetlight-service/pkg/util"
)

// AdminHandler exposes the administrator views of the registry.
type AdminHandler struct {
	service *service.ComplaintService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(complaintService *service.ComplaintService) *AdminHandler {
	return &AdminHandler{service: complaintService}
}

// ListComplaints GET /admin/complaints.
func (h *AdminHandler) ListComplaints(c *fiber.Ctx) error {
	complaints, err := h.service.ListAll(c.UserContext(), auth.CurrentUser(c), parseComplaintQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintList(complaints)})
}

// Stats GET /admin/complaints/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	counts, err := h.service.Stats(c.UserContext(), auth.CurrentUser(c))
	if err != nil {
		return err
	}
	resp := dto.StatsResponse{ByStatus: make(map[domain.ComplaintStatus]int, len(domain.ComplaintStatuses))}
	for _, status := range domain.ComplaintStatuses {
		resp.ByStatus[status] = counts[status]
		resp.Total += counts[status]
	}
	return c.JSON(fiber.Map{"data": resp})
}

// UpdateStatus PATCH /admin/complaints/:id/status.
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	complaint, err := h.service.UpdateStatus(c.UserContext(), auth.CurrentUser(c), c.Params("id"), req.Status, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	summaries, err := h.service.UserSummaries(c.UserContext(), auth.CurrentUser(c))
	if err != nil {
		return err
	}
	items := make([]dto.UserSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, dto.UserSummaryResponse{
			PublicUser:      s.User,
			CreatedAt:       s.CreatedAt,
			ComplaintsCount: s.ComplaintsCount,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
