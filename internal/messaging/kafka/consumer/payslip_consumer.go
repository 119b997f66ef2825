package consumer

import (
	"context"
	"encoding/json"

	"agripay/internal/batch"
	"agripay/internal/events"
	"agripay/internal/payroll"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func ConsumePayslipsRequested(
	ctx context.Context,
	reader *kafkago.Reader,
	engine batch.Engine,
	payrollService payroll.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.payroll_payslips")
	log.Info("payroll payslips consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("payroll payslips consumer stopped")
				return
			}
			log.Error("fetch payslips message failed", zap.Error(err))
			continue
		}

		var event events.PayrollPayslipsRequestedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode payslips_requested event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := engine.GeneratePayslips(ctx, event.CompanyID, event.PayrollID); err != nil {
			log.Error("payslip generation failed",
				zap.String("payroll_id", event.PayrollID),
				zap.String("company_id", event.CompanyID),
				zap.Error(err),
			)
			continue
		}

		if err := payrollService.MarkPayslipsGenerated(ctx, event.CompanyID, event.PayrollID); err != nil {
			log.Error("mark payslips generated failed",
				zap.String("payroll_id", event.PayrollID),
				zap.String("company_id", event.CompanyID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit payslips message failed", zap.Error(err))
			continue
		}

		log.Info("payslips generated",
			zap.String("payroll_id", event.PayrollID),
			zap.String("company_id", event.CompanyID),
		)
	}
}
