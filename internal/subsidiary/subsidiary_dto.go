package subsidiary

type SubsidiaryResponse struct {
	ID                  string `json:"id"`
	Code                string `json:"code"`
	Name                string `json:"name"`
	PaymentIntervalDays int    `json:"payment_interval_days"`
	DeclarationDay      int    `json:"declaration_day"`
}
