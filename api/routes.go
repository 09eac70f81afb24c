package api

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.Engine, h *Handler) {
	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/messages", h.MessagesHandler)
		apiGroup.POST("/notify", h.NotifyHandler)
		apiGroup.GET("/health", h.HealthCheckHandler)
	}
}
