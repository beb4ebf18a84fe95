package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pqrs-service/internal/api/http/handlers"
	"github.com/spec-kit/pqrs-service/internal/auth"
	"github.com/spec-kit/pqrs-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Cases          *handlers.CasesHandler
	StaffCases     *handlers.StaffCasesHandler
	Dashboard      *handlers.DashboardHandler
	Staff          *handlers.StaffHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Intake and tracking are public; everything
// under /api/staff requires an authenticated staff principal.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	public := app.Group("/api/pqrs")
	public.Post("", cfg.Cases.CreateCase)
	public.Get("/track/:code", cfg.Cases.TrackCase)

	staff := app.Group("/api/staff")
	staff.Post("/auth/login", cfg.Staff.Login)
	staff.Post("/auth/password-reset", cfg.Staff.RequestPasswordReset)
	staff.Post("/auth/password-reset/confirm", cfg.Staff.ConfirmPasswordReset)

	protected := staff.Group("", cfg.AuthMiddleware.Handle, auth.RequireStaffRole())
	protected.Post("/auth/logout", cfg.Staff.Logout)
	protected.Post("/auth/password", cfg.Staff.ChangePassword)

	protected.Get("/cases", cfg.StaffCases.ListCases)
	protected.Get("/cases/:id", cfg.StaffCases.GetCase)
	protected.Patch("/cases/:id/status", cfg.StaffCases.ChangeStatus)
	protected.Post("/cases/:id/responses", cfg.StaffCases.Respond)
	protected.Post("/cases/:id/archive", cfg.StaffCases.Archive)
	protected.Patch("/cases/:id/assignment", cfg.StaffCases.Assign)

	dashboard := protected.Group("/dashboard",
		auth.RequireStaffRole(domain.StaffRoleAdmin, domain.StaffRoleSupervisor))
	dashboard.Get("", cfg.Dashboard.Overview)
	dashboard.Get("/monthly", cfg.Dashboard.MonthlyEvolution)
	dashboard.Get("/areas", cfg.Dashboard.TopAreas)
	dashboard.Get("/resolution", cfg.Dashboard.ResolutionByCategory)

	members := protected.Group("/members", auth.RequireStaffRole(domain.StaffRoleAdmin))
	members.Post("", cfg.Staff.CreateStaff)
	members.Get("", cfg.Staff.ListStaff)
	members.Get("/:id", cfg.Staff.GetStaff)
	members.Patch("/:id", cfg.Staff.UpdateStaff)
}
