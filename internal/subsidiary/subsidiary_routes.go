package subsidiary

import (
	"agripay/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	subs := r.Group("/subsidiaries")
	subs.Use(middleware.AuthMiddleware())
	{
		subs.GET("", handler.GetAll)
		subs.GET("/:id", handler.GetById)
	}
}
