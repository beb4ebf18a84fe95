package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pqrs-service/internal/api/dto"
	"github.com/spec-kit/pqrs-service/internal/auth"
	"github.com/spec-kit/pqrs-service/internal/domain"
	"github.com/spec-kit/pqrs-service/internal/service"
	apperrors "github.com/spec-kit/pqrs-service/pkg/util"
)

// StaffCasesHandler serves the authenticated case-management endpoints.
type StaffCasesHandler struct {
	cases *service.CaseService
}

// NewStaffCasesHandler constructs handler.
func NewStaffCasesHandler(cases *service.CaseService) *StaffCasesHandler {
	return &StaffCasesHandler{cases: cases}
}

// ListCases GET /api/staff/cases.
func (h *StaffCasesHandler) ListCases(c *fiber.Ctx) error {
	filter := parseCaseListQuery(c)
	cases, err := h.cases.ListCases(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.CaseResponse, 0, len(cases))
	for i := range cases {
		items = append(items, dto.NewCaseResponse(&cases[i]))
	}
	return c.JSON(fiber.Map{"data": dto.CaseListResponse{Cases: items, Count: len(items)}})
}

// GetCase GET /api/staff/cases/:id.
func (h *StaffCasesHandler) GetCase(c *fiber.Ctx) error {
	found, history, responses, err := h.cases.GetCase(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseDetailResponse(found, history, responses)})
}

// ChangeStatus PATCH /api/staff/cases/:id/status.
func (h *StaffCasesHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	updated, err := h.cases.ChangeStatus(c.Context(), c.Params("id"), domain.CaseStatus(req.Status), req.Note, principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseResponse(updated)})
}

// Respond POST /api/staff/cases/:id/responses.
func (h *StaffCasesHandler) Respond(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.RespondRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	updated, response, err := h.cases.Respond(c.Context(), c.Params("id"), req.Body, principal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"case": dto.NewCaseResponse(updated),
		"response": dto.StaffResponseBody{
			ID:        response.ID,
			Body:      response.Body,
			StaffName: response.StaffName,
			Notified:  response.Notified,
			CreatedAt: response.CreatedAt,
		},
	}})
}

// Archive POST /api/staff/cases/:id/archive.
func (h *StaffCasesHandler) Archive(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	updated, err := h.cases.Archive(c.Context(), c.Params("id"), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseResponse(updated)})
}

// Assign PATCH /api/staff/cases/:id/assignment.
func (h *StaffCasesHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.AssignCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	updated, err := h.cases.AssignCase(c.Context(), c.Params("id"), req.ResponsibleArea, req.AssigneeID, principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseResponse(updated)})
}

func parseCaseListQuery(c *fiber.Ctx) service.CaseListFilter {
	filter := service.CaseListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.CaseStatus(strings.TrimSpace(part)))
		}
	}
	if categoryStr := c.Query("category"); categoryStr != "" {
		for _, part := range strings.Split(categoryStr, ",") {
			filter.Categories = append(filter.Categories, domain.CaseCategory(strings.TrimSpace(part)))
		}
	}
	if lightStr := c.Query("traffic_light"); lightStr != "" {
		for _, part := range strings.Split(lightStr, ",") {
			filter.TrafficLights = append(filter.TrafficLights, domain.TrafficLight(strings.TrimSpace(part)))
		}
	}
	if assignee := c.Query("assignee_id"); assignee != "" {
		filter.AssigneeID = &assignee
	}
	if area := c.Query("area"); area != "" {
		filter.Area = &area
	}
	if search := c.Query("q"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("filed_from")); from != nil {
		filter.FiledFrom = from
	}
	if to := parseTime(c.Query("filed_to")); to != nil {
		filter.FiledTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
