package events

import "time"

const PayrollPayslipsRequestedTopic = "agripay.payroll.payslips.requested.v1"

type PayrollPayslipsRequestedEvent struct {
	EventType    string    `json:"event_type"`
	PayrollID    string    `json:"payroll_id"`
	CompanyID    string    `json:"company_id"`
	RequestedBy  string    `json:"requested_by"`
	DispatchedAt time.Time `json:"dispatched_at"`
}
