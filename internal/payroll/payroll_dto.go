package payroll

type CreatePayrollRequest struct {
	SubsidiaryID string `json:"subsidiaryId" binding:"required,uuid"`
	PeriodID     string `json:"periodId" binding:"required,uuid"`
}

type MarkCalculatedRequest struct {
	ActualEmployees int `json:"actualEmployees" binding:"min=0"`
	ActualTareos    int `json:"actualTareos" binding:"min=0"`
}

type CreatePayrollResponse struct {
	ID                 string `json:"id"`
	Code               string `json:"code"`
	Status             string `json:"status"`
	EstimatedEmployees int    `json:"estimatedEmployees"`
	EstimatedTareos    int    `json:"estimatedTareos"`
	CreatedAt          string `json:"createdAt"`
	UpdatedAt          string `json:"updatedAt"`
}

type PayrollResponse struct {
	ID                  string  `json:"id"`
	Code                string  `json:"code"`
	SubsidiaryID        string  `json:"subsidiaryId"`
	PeriodID            string  `json:"periodId"`
	ConfigurationID     string  `json:"configurationId"`
	Status              string  `json:"status"`
	Year                int     `json:"year"`
	Month               int     `json:"month"`
	WeekStart           int     `json:"weekStart"`
	WeekEnd             int     `json:"weekEnd"`
	EstimatedEmployees  int     `json:"estimatedEmployees"`
	EstimatedTareos     int     `json:"estimatedTareos"`
	ActualEmployees     int     `json:"actualEmployees"`
	ActualTareos        int     `json:"actualTareos"`
	LaunchedAt          *string `json:"launchedAt,omitempty"`
	CalculatedAt        *string `json:"calculatedAt,omitempty"`
	ApprovedAt          *string `json:"approvedAt,omitempty"`
	CancelledAt         *string `json:"cancelledAt,omitempty"`
	PayslipsGeneratedAt *string `json:"payslipsGeneratedAt,omitempty"`
	CreatedAt           string  `json:"createdAt"`
	UpdatedAt           string  `json:"updatedAt"`
}

type PayrollListEntry struct {
	ID                 string `json:"id"`
	Code               string `json:"code"`
	Status             string `json:"status"`
	Year               int    `json:"year"`
	Month              int    `json:"month"`
	EstimatedEmployees int    `json:"estimatedEmployees"`
	EstimatedTareos    int    `json:"estimatedTareos"`
	EmployeesProcessed int64  `json:"employeesProcessed"`
	TareosProcessed    int64  `json:"tareosProcessed"`
	HasPayslips        bool   `json:"hasPayslips"`
	CreatedAt          string `json:"createdAt"`
}

type SummaryConceptEntry struct {
	Code        string `json:"code"`
	DisplayName string `json:"displayName"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
}

type PayrollSummary struct {
	ID                           string                `json:"id"`
	Code                         string                `json:"code"`
	SubsidiaryName               string                `json:"subsidiaryName"`
	Year                         int                   `json:"year"`
	Month                        int                   `json:"month"`
	PeriodLabel                  string                `json:"periodLabel"`
	TotalEmployees               int                   `json:"totalEmployees"`
	TotalIncome                  string                `json:"totalIncome"`
	TotalDeductions              string                `json:"totalDeductions"`
	TotalEmployerContributions   string                `json:"totalEmployerContributions"`
	TotalNet                     string                `json:"totalNet"`
	TotalHealth                  string                `json:"totalHealth"`
	TotalRetirement              string                `json:"totalRetirement"`
	TotalRemuneration            string                `json:"totalRemuneration"`
	TotalBonus                   string                `json:"totalBonus"`
	IncomeConcepts               []SummaryConceptEntry `json:"incomeConcepts"`
	DeductionConcepts            []SummaryConceptEntry `json:"deductionConcepts"`
	EmployerContributionConcepts []SummaryConceptEntry `json:"employerContributionConcepts"`
}
