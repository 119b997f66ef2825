package period

type CreatePeriodRequest struct {
	SubsidiaryID string `json:"subsidiaryId" binding:"required,uuid"`
	StartDate    string `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
}

type PeriodResponse struct {
	ID              string `json:"id"`
	SubsidiaryID    string `json:"subsidiaryId"`
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	Number          int    `json:"number"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	DeclarationDate string `json:"declarationDate"`
}
