package configuration

import (
	"agripay/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	configurations := r.Group("/configurations")
	configurations.Use(middleware.AuthMiddleware())
	{
		configurations.GET("/active", middleware.RateLimitByUser(3, 10), handler.GetActive)
		configurations.GET("/:id", middleware.RateLimitByUser(3, 10), handler.GetById)
		configurations.POST("", middleware.RateLimitByUser(0.1, 1), handler.Create)
		configurations.PUT("/active", middleware.RateLimitByUser(0.1, 1), handler.UpdateActive)
		configurations.DELETE("/active", middleware.RateLimitByUser(0.05, 1), handler.DeleteActive)
	}
}
