// Package batch declares the contract with the external batch engine
// that computes payroll details from attendance records. The engine
// itself runs elsewhere; this package ships only the interface the
// consumers drive it through.
package batch

import "context"

type CalculationResult struct {
	ProcessedEmployees int
	ProcessedTareos    int
}

//go:generate mockgen -source=engine.go -destination=mock/engine_mock.go -package=mock
type Engine interface {
	// Calculate computes and persists the detail rows of a payroll and
	// returns how many employees and tareos were processed. It must be
	// safe to invoke more than once for the same payroll.
	Calculate(ctx context.Context, companyID, payrollID string) (CalculationResult, error)

	// GeneratePayslips renders payslip documents for a calculated
	// payroll and stores their URLs on the detail rows.
	GeneratePayslips(ctx context.Context, companyID, payrollID string) error
}
