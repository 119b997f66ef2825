package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// httpEngine talks to the external batch engine over its HTTP API. The
// engine owns the computation; this client only relays the contract.
type httpEngine struct {
	baseURL string
	client  *http.Client
}

func NewHTTPEngine(baseURL string) Engine {
	return &httpEngine{
		baseURL: baseURL,
		client: &http.Client{
			// Calculation runs are synchronous on the engine side and
			// bounded by subsidiary headcount.
			Timeout: 10 * time.Minute,
		},
	}
}

type engineRequest struct {
	CompanyID string `json:"company_id"`
	PayrollID string `json:"payroll_id"`
}

type calculationResponse struct {
	ProcessedEmployees int `json:"processed_employees"`
	ProcessedTareos    int `json:"processed_tareos"`
}

func (e *httpEngine) Calculate(ctx context.Context, companyID, payrollID string) (CalculationResult, error) {
	var result calculationResponse
	err := e.post(ctx, "/v1/calculations", engineRequest{CompanyID: companyID, PayrollID: payrollID}, &result)
	if err != nil {
		return CalculationResult{}, err
	}
	return CalculationResult{
		ProcessedEmployees: result.ProcessedEmployees,
		ProcessedTareos:    result.ProcessedTareos,
	}, nil
}

func (e *httpEngine) GeneratePayslips(ctx context.Context, companyID, payrollID string) error {
	return e.post(ctx, "/v1/payslips", engineRequest{CompanyID: companyID, PayrollID: payrollID}, nil)
}

func (e *httpEngine) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("batch engine %s returned status %d", path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
