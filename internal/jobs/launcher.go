package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agripay/internal/events"
	"agripay/internal/messaging/kafka"
	"agripay/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	JobPayrollCalculation = "payroll_calculation"
	JobPayslipGeneration  = "payslip_generation"
)

// Launcher dispatches a named background job with string/int64 params.
// The outbox implementation is at-least-once: callers invoke it at most
// once per state transition and consumers tolerate duplicates.
//
//go:generate mockgen -source=launcher.go -destination=mock/launcher_mock.go -package=mock
type Launcher interface {
	Launch(ctx context.Context, jobName string, params map[string]any) error
}

type outboxLauncher struct {
	outbox kafka.OutboxRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewOutboxLauncher(outbox kafka.OutboxRepository, logger ...*zap.Logger) Launcher {
	l := zap.L().Named("jobs.launcher")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("jobs.launcher")
	}
	return &outboxLauncher{
		outbox: outbox,
		logger: l,
		now:    time.Now,
	}
}

// Launch inserts a pending outbox row in its own statement, never inside
// a caller's transaction: a dispatch failure must not roll back the
// state change that requested the job.
func (l *outboxLauncher) Launch(ctx context.Context, jobName string, params map[string]any) error {
	payrollID := stringParam(params, "payroll_id")
	companyID := stringParam(params, "company_id")
	requestedBy := stringParam(params, "requested_by")
	if requestedBy == "" {
		requestedBy = contextutil.GetUserID(ctx)
	}
	if payrollID == "" || companyID == "" {
		return fmt.Errorf("job %s requires payroll_id and company_id params", jobName)
	}

	var (
		topic     string
		eventType string
		payload   []byte
		err       error
	)

	switch jobName {
	case JobPayrollCalculation:
		topic, eventType = events.PayrollCalculationRequestedTopic, "payroll_calculation_requested"
		payload, err = json.Marshal(events.PayrollCalculationRequestedEvent{
			EventType:    eventType,
			PayrollID:    payrollID,
			CompanyID:    companyID,
			RequestedBy:  requestedBy,
			DispatchedAt: l.now().UTC(),
		})
	case JobPayslipGeneration:
		topic, eventType = events.PayrollPayslipsRequestedTopic, "payroll_payslips_requested"
		payload, err = json.Marshal(events.PayrollPayslipsRequestedEvent{
			EventType:    eventType,
			PayrollID:    payrollID,
			CompanyID:    companyID,
			RequestedBy:  requestedBy,
			DispatchedAt: l.now().UTC(),
		})
	default:
		return fmt.Errorf("unknown job name: %s", jobName)
	}
	if err != nil {
		return err
	}

	event := kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "payroll",
		AggregateID:   payrollID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := l.outbox.Create(ctx, event); err != nil {
		return fmt.Errorf("enqueue %s job: %w", jobName, err)
	}

	contextutil.GetLogger(ctx, l.logger).Info("job dispatched",
		zap.String("job", jobName),
		zap.String("payroll_id", payrollID),
		zap.String("company_id", companyID),
		zap.String("outbox_id", event.ID),
	)
	return nil
}

func stringParam(params map[string]any, key string) string {
	switch v := params[key].(type) {
	case string:
		return v
	case int64:
		return fmt.Sprintf("%d", v)
	default:
		return ""
	}
}
