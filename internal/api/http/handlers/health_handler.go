package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pqrs-service/internal/persistence"
)

// HealthHandler reports service liveness and dependency readiness.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
}

// NewHealthHandler constructs handler.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		postgres:    postgres,
		redis:       redis,
	}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready GET /health/ready. Postgres down means not ready; redis down only
// degrades logout revocation, so it is reported but does not fail the probe.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	status := http.StatusOK
	deps := fiber.Map{}

	if err := h.postgres.Ping(c.Context()); err != nil {
		deps["postgres"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		deps["postgres"] = "ok"
	}

	if err := h.redis.Ping(c.Context()); err != nil {
		deps["redis"] = err.Error()
	} else {
		deps["redis"] = "ok"
	}

	return c.Status(status).JSON(fiber.Map{
		"service":      h.serviceName,
		"version":      h.version,
		"dependencies": deps,
	})
}
