package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1.
// Health-check остается открытым, остальные группы закрыты API-ключом.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	auth := APIKeyAuthMiddleware(h.cfg, h.logger)

	// Маршруты для отчетов об инцидентах
	incidents := api.Group("/incidents", auth)
	{
		incidents.POST("", h.createIncident)
		incidents.GET("", h.listIncidents)
		incidents.POST("/import", h.importIncidents)
		incidents.GET("/stats", h.getStats)
		incidents.GET("/:id", h.getIncident)
		incidents.POST("/:id/verify", h.verifyIncident)
		incidents.POST("/:id/dispute", h.disputeIncident)
		incidents.POST("/:id/resolve", h.resolveIncident)
	}

	// Маршруты аналитической панели
	analytics := api.Group("/analytics", auth)
	{
		analytics.GET("/dashboard", h.getDashboard)
		analytics.GET("/heatmap", h.getHeatmap)
		analytics.GET("/export/:format", h.exportAnalytics)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
