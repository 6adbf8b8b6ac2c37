package main

import (
	"net/http"

	"support-assistant/internal/auth"
	"support-assistant/internal/httpapi"
	"support-assistant/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authManager *auth.Manager) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/", h.Home)
	r.POST("/calculate", h.Calculate)
	r.POST("/text", h.Text)
	r.POST("/support", h.Support)

	// Admin surface is only mounted when a JWT secret is configured.
	if authManager != nil {
		admin := r.Group("/v1/admin")
		admin.Use(auth.RequireAccessToken(authManager))
		admin.Use(rbac.RequireAnyRole(rbac.RoleAdmin, rbac.RoleSupport))
		{
			admin.GET("/audit", h.AdminRecentEvents)
		}
	}
}
