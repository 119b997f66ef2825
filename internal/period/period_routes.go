package period

import (
	"agripay/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	periods := r.Group("/periods")
	periods.Use(middleware.AuthMiddleware())
	{
		periods.GET("", middleware.RateLimitByUser(3, 10), handler.GetAll)
		periods.GET("/:id", middleware.RateLimitByUser(3, 10), handler.GetById)
		periods.POST("", middleware.RateLimitByUser(0.5, 2), handler.Create)
		periods.DELETE("/:id", middleware.RateLimitByUser(0.1, 1), handler.Delete)
	}
}
