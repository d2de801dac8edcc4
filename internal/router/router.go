package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/opencivic/records-portal/internal/handler"
	"github.com/opencivic/records-portal/internal/middleware"
	"github.com/opencivic/records-portal/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  Unauthenticated
// operations live under /v1/auth; the optional rate limiter guards the
// credential endpoints against brute force.  /v1/me requires a token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout works with either a refresh_token body or a bearer token, so
	// it stays outside the JWT middleware.
	g.POST("/logout", a.Logout)

	auth := protected(e, jwtSecret)
	auth.GET("/me", a.Me)
}

// RegisterRequests wires the citizen/staff request endpoints.  Assignment
// is restricted to admins here; finer-grained rules (visibility, status
// permissions) are enforced inside the handlers.
func RegisterRequests(e *echo.Echo, h *handler.RequestHandler, jwtSecret string) {
	auth := protected(e, jwtSecret)
	auth.POST("/requests", h.Create)
	auth.GET("/requests", h.List)
	auth.GET("/requests/:id", h.Get)
	auth.POST("/requests/:id/assign", h.Assign, middleware.RequireRole(model.RoleAdmin))
	auth.PUT("/requests/:id/status", h.UpdateStatus,
		middleware.RequireRole(model.RoleStaff, model.RoleAdmin))
}

// RegisterMessages wires the per-request conversation thread.
func RegisterMessages(e *echo.Echo, h *handler.MessageHandler, jwtSecret string) {
	auth := protected(e, jwtSecret)
	auth.POST("/messages", h.Post)
	auth.GET("/messages/:request_id", h.List)
}

// RegisterNotifications wires the caller's notification feed.
func RegisterNotifications(e *echo.Echo, h *handler.NotificationHandler, jwtSecret string) {
	auth := protected(e, jwtSecret)
	auth.GET("/notifications", h.List)
	auth.PUT("/notifications/:id/read", h.MarkRead)
}

// RegisterDashboard wires the stat endpoints.  The optional cache
// middleware is applied here because these aggregate queries are the
// heaviest reads in the service.
func RegisterDashboard(e *echo.Echo, h *handler.DashboardHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	auth := protected(e, jwtSecret)
	mws := []echo.MiddlewareFunc{}
	if cache != nil {
		mws = append(mws, cache)
	}
	auth.GET("/dashboard/stats", h.Stats, mws...)
	auth.GET("/analytics/dashboard", h.Analytics,
		append([]echo.MiddlewareFunc{middleware.RequireRole(model.RoleAdmin)}, mws...)...)
}

// RegisterExports wires the download endpoints.
func RegisterExports(e *echo.Echo, h *handler.ExportHandler, jwtSecret string) {
	auth := protected(e, jwtSecret)
	auth.GET("/export/request/:id/pdf", h.RequestPDF)
	auth.GET("/export/requests/csv", h.RequestsCSV, middleware.RequireRole(model.RoleAdmin))
}

// RegisterAdmin wires the admin console under /v1/admin.  Every route in
// the group requires the admin role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := protected(e, jwtSecret).Group("/admin")
	g.Use(middleware.RequireRole(model.RoleAdmin))

	g.GET("/users", h.ListUsers)
	g.POST("/users", h.CreateUser)
	g.PUT("/users/:id/role", h.UpdateUser)
	g.PUT("/users/:id/email", h.UpdateUser)
	g.DELETE("/users/:id", h.DeactivateUser)
	g.POST("/create-staff", h.CreateStaff)
	g.GET("/staff-members", h.StaffMembers)

	g.GET("/requests-master-list", h.MasterList)
	g.GET("/unassigned-requests", h.Unassigned)
	g.DELETE("/requests/:id", h.DeleteRequest)
	g.POST("/requests/:id/cancel", h.CancelRequest)

	g.GET("/email-templates", h.ListTemplates)
	g.PUT("/email-templates/:kind", h.UpdateTemplate)
	g.POST("/test-email", h.TestEmail)
	g.GET("/email-config", h.EmailConfig)
}

// protected returns a /v1 group with JWT authentication and the baseline
// role gate applied.
func protected(e *echo.Echo, jwtSecret string) *echo.Group {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleUser, model.RoleStaff, model.RoleAdmin))
	return auth
}
