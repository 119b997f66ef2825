package calendar

import (
	"agripay/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	days := r.Group("/calendar")
	days.Use(middleware.AuthMiddleware())
	{
		days.GET("", handler.GetRange)
		days.GET("/:date", handler.GetDay)
		days.PUT("/:date", handler.SetWorkingDay)
		days.POST("/:date/events", handler.AddEvent)
		days.DELETE("/events/:eventId", handler.RemoveEvent)
	}
}
