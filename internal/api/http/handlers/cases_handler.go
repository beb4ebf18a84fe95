package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pqrs-service/internal/api/dto"
	"github.com/spec-kit/pqrs-service/internal/domain"
	"github.com/spec-kit/pqrs-service/internal/service"
	apperrors "github.com/spec-kit/pqrs-service/pkg/util"
)

// CasesHandler serves the public, unauthenticated intake and tracking
// endpoints. Submitters never log in; the tracking code is their credential.
type CasesHandler struct {
	cases *service.CaseService
}

// NewCasesHandler constructs handler.
func NewCasesHandler(cases *service.CaseService) *CasesHandler {
	return &CasesHandler{cases: cases}
}

// CreateCase POST /api/pqrs.
func (h *CasesHandler) CreateCase(c *fiber.Ctx) error {
	var req dto.CreateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	input := service.CaseCreateInput{
		Category:       domain.CaseCategory(req.Category),
		Subject:        req.Subject,
		Description:    req.Description,
		SubmitterName:  req.SubmitterName,
		SubmitterEmail: req.SubmitterEmail,
		SubmitterPhone: req.SubmitterPhone,
	}
	if req.Attachment != nil {
		input.Attachment = &service.AttachmentInput{
			FileName:   req.Attachment.FileName,
			SizeBytes:  req.Attachment.SizeBytes,
			StorageKey: req.Attachment.StorageKey,
		}
	}

	created, err := h.cases.CreateCase(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCaseResponse(created)})
}

// TrackCase GET /api/pqrs/track/:code.
func (h *CasesHandler) TrackCase(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return apperrors.NewValidationError("tracking code required", nil)
	}

	found, history, responses, err := h.cases.LookupByTrackingCode(c.Context(), code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTrackingLookupResponse(found, history, responses)})
}
