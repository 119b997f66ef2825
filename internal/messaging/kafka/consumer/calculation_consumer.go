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

// ConsumeCalculationRequested drives the external batch engine from
// calculation-requested events and records the result on the payroll.
// The message is committed only after both steps succeed, so a crash
// mid-run replays the event; the engine tolerates reruns.
func ConsumeCalculationRequested(
	ctx context.Context,
	reader *kafkago.Reader,
	engine batch.Engine,
	payrollService payroll.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.payroll_calculation")
	log.Info("payroll calculation consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("payroll calculation consumer stopped")
				return
			}
			log.Error("fetch calculation message failed", zap.Error(err))
			continue
		}

		var event events.PayrollCalculationRequestedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode calculation_requested event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		result, err := engine.Calculate(ctx, event.CompanyID, event.PayrollID)
		if err != nil {
			log.Error("batch calculation failed",
				zap.String("payroll_id", event.PayrollID),
				zap.String("company_id", event.CompanyID),
				zap.Error(err),
			)
			continue
		}

		_, err = payrollService.MarkCalculated(ctx, event.CompanyID, event.PayrollID, payroll.MarkCalculatedRequest{
			ActualEmployees: result.ProcessedEmployees,
			ActualTareos:    result.ProcessedTareos,
		})
		if err != nil {
			log.Error("mark payroll calculated failed",
				zap.String("payroll_id", event.PayrollID),
				zap.String("company_id", event.CompanyID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit calculation message failed", zap.Error(err))
			continue
		}

		log.Info("payroll calculated from calculation_requested event",
			zap.String("payroll_id", event.PayrollID),
			zap.String("company_id", event.CompanyID),
			zap.Int("processed_employees", result.ProcessedEmployees),
			zap.Int("processed_tareos", result.ProcessedTareos),
		)
	}
}
