// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4" // Echo web framework for routing

	"github.com/fadl/dashboard-api/internal/handler"
	"github.com/fadl/dashboard-api/internal/middleware"
	"github.com/fadl/dashboard-api/internal/token"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check used by
// load balancers and monitoring systems.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints and the protected surface.
// The credential endpoints under /auth carry their own rate limiting inside
// the handler; everything under /v1 requires a valid Bearer access token,
// verified by the JWT middleware which injects the subject as user_id and
// as the trusted x-user-id header.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, verifier *token.Issuer) {
	g := e.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// logout never requires a valid token; it is idempotent and always 200
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(verifier))
	auth.GET("/me", a.Me)
}
