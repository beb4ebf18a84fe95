package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pqrs-service/internal/api/dto"
	"github.com/spec-kit/pqrs-service/internal/service"
)

// DashboardHandler serves management statistics.
type DashboardHandler struct {
	stats *service.StatsService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(stats *service.StatsService) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

// Overview GET /api/staff/dashboard.
func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.stats.GetOverview(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOverviewResponse(overview)})
}

// MonthlyEvolution GET /api/staff/dashboard/monthly.
func (h *DashboardHandler) MonthlyEvolution(c *fiber.Ctx) error {
	months := parseInt(c.Query("months"), 6)
	series, err := h.stats.MonthlyEvolution(c.Context(), months)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMonthPoints(series)})
}

// TopAreas GET /api/staff/dashboard/areas.
func (h *DashboardHandler) TopAreas(c *fiber.Ctx) error {
	limit := parseInt(c.Query("limit"), 10)
	areas, err := h.stats.TopAreas(c.Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDistributionSlices(areas)})
}

// ResolutionByCategory GET /api/staff/dashboard/resolution.
func (h *DashboardHandler) ResolutionByCategory(c *fiber.Ctx) error {
	rows, err := h.stats.ResolutionByCategory(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCategoryResolutions(rows)})
}
