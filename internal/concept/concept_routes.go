package concept

import (
	"agripay/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	concepts := r.Group("/concepts")
	concepts.Use(middleware.AuthMiddleware())
	{
		concepts.GET("", handler.GetAll)
		concepts.GET("/:id", handler.GetById)
		concepts.POST("", handler.Create)
		concepts.PUT("/:id", handler.Update)
		concepts.DELETE("/:id", handler.Delete)
	}
}
