package payroll

import (
	"agripay/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	payrolls := r.Group("/payrolls")
	payrolls.Use(middleware.AuthMiddleware())
	{
		payrolls.GET("", middleware.RateLimitByUser(3, 10), handler.GetAll)
		payrolls.GET("/:id", middleware.RateLimitByUser(5, 20), handler.GetById)
		payrolls.GET("/:id/summary", middleware.RateLimitByUser(2, 5), handler.Summary)
		payrolls.POST("", middleware.RateLimitByUser(0.5, 2), handler.Create)
		payrolls.POST("/:id/launch", middleware.RateLimitByUser(0.1, 1), handler.Launch)
		payrolls.PUT("/:id/calculated", middleware.RateLimitByUser(0.5, 2), handler.MarkCalculated)
		payrolls.POST("/:id/approve", middleware.RateLimitByUser(0.5, 2), handler.Approve)
		payrolls.POST("/:id/payslips", middleware.RateLimitByUser(0.1, 1), handler.RequestPayslips)
		payrolls.POST("/:id/cancel", middleware.RateLimitByUser(0.5, 2), handler.Cancel)
		payrolls.DELETE("/:id", middleware.RateLimitByUser(0.1, 1), handler.Delete)
	}
}
