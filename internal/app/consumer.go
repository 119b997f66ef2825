package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"agripay/internal/batch"
	"agripay/internal/configuration"
	"agripay/internal/events"
	"agripay/internal/jobs"
	"agripay/internal/messaging/kafka"
	"agripay/internal/messaging/kafka/consumer"
	"agripay/internal/payroll"
	"agripay/internal/period"
	"agripay/internal/shared/connection"
	"agripay/internal/subsidiary"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}
	engineURL := os.Getenv("BATCH_ENGINE_URL")
	if engineURL == "" {
		return fmt.Errorf("BATCH_ENGINE_URL is required")
	}

	payrollRepo := payroll.NewRepository(gormDB)
	periodRepo := period.NewRepository(gormDB)
	subsidiaryRepo := subsidiary.NewRepository(gormDB)
	configurationRepo := configuration.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	launcher := jobs.NewOutboxLauncher(outboxRepo)
	payrollService := payroll.NewService(sqlDB, payrollRepo, subsidiaryRepo, periodRepo, configurationRepo, launcher)

	engine := batch.NewHTTPEngine(engineURL)

	calculationReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.PayrollCalculationRequestedTopic,
		GroupID:        "agripay-payroll-calculation",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer calculationReader.Close()

	payslipReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.PayrollPayslipsRequestedTopic,
		GroupID:        "agripay-payroll-payslips",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer payslipReader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeCalculationRequested(ctx, calculationReader, engine, payrollService, logger)
	go consumer.ConsumePayslipsRequested(ctx, payslipReader, engine, payrollService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
