package app

import (
	"database/sql"

	"agripay/internal/calendar"
	"agripay/internal/concept"
	"agripay/internal/configuration"
	"agripay/internal/jobs"
	"agripay/internal/messaging/kafka"
	"agripay/internal/middleware"
	"agripay/internal/payroll"
	"agripay/internal/period"
	"agripay/internal/subsidiary"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	calendarRepo := calendar.NewRepository(gormDB)
	conceptRepo := concept.NewRepository(gormDB)
	configurationRepo := configuration.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	payrollRepo := payroll.NewRepository(gormDB)
	periodRepo := period.NewRepository(gormDB)
	subsidiaryRepo := subsidiary.NewRepository(gormDB)

	// --- Services ---
	assigner := configuration.NewAssigner(configurationRepo, conceptRepo)
	launcher := jobs.NewOutboxLauncher(outboxRepo)

	calendarService := calendar.NewService(db, calendarRepo)
	conceptService := concept.NewService(db, conceptRepo)
	configurationService := configuration.NewService(db, configurationRepo, assigner)
	periodService := period.NewService(db, periodRepo, subsidiaryRepo)
	subsidiaryService := subsidiary.NewService(subsidiaryRepo)
	payrollService := payroll.NewService(db, payrollRepo, subsidiaryRepo, periodRepo, configurationRepo, launcher)
	summarizer := payroll.NewSummaryAggregator(payrollRepo, subsidiaryRepo, periodRepo, conceptRepo, rdb)

	// --- Handlers ---
	calendarHandler := calendar.NewHandler(calendarService)
	conceptHandler := concept.NewHandler(conceptService)
	configurationHandler := configuration.NewHandler(configurationService)
	payrollHandler := payroll.NewHandler(payrollService, summarizer)
	periodHandler := period.NewHandler(periodService)
	subsidiaryHandler := subsidiary.NewHandler(subsidiaryService)

	// --- Routes ---
	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))
	router.Use(middleware.RateLimitByIP(rate.Limit(50), 100))

	api := router.Group("/api/v1")
	api.Use(middleware.Idempotency(rdb))
	{
		calendar.RegisterRoutes(api, calendarHandler)
		concept.RegisterRoutes(api, conceptHandler)
		configuration.RegisterRoutes(api, configurationHandler)
		payroll.RegisterRoutes(api, payrollHandler)
		period.RegisterRoutes(api, periodHandler)
		subsidiary.RegisterRoutes(api, subsidiaryHandler)
	}

	return nil
}
