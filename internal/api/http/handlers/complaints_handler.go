package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/streetlight-service/internal/api/dto"
	"github.com/spec-kit/streetlight-service/internal/auth"
	"github.com/spec-kit/streetlight-service/internal/domain"
	"github.com/spec-kit/streetlight-service/internal/service"
	apperrors "github.com/spec-kit/streetlight-service/pkg/util"
)

// ComplaintsHandler manages the signed-in user's complaint endpoints.
type ComplaintsHandler struct {
	service *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService}
}

// Create POST /complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.ComplaintCreateInput{
		Address:     req.Location.Address,
		Lat:         req.Location.Coordinates.Lat,
		Lng:         req.Location.Coordinates.Lng,
		Description: req.Description,
	}
	complaint, err := h.service.Create(c.UserContext(), auth.CurrentUser(c), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// ListMine GET /complaints.
func (h *ComplaintsHandler) ListMine(c *fiber.Ctx) error {
	complaints, err := h.service.ListMine(c.UserContext(), auth.CurrentUser(c), parseComplaintQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintList(complaints)})
}

// Get GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	complaint, err := h.service.Get(c.UserContext(), auth.CurrentUser(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

func parseComplaintQuery(c *fiber.Ctx) service.ComplaintQuery {
	query := service.ComplaintQuery{Search: strings.TrimSpace(c.Query("q"))}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := domain.ComplaintStatus(raw)
		query.Status = &status
	}
	return query
}
