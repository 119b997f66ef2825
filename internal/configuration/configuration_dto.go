package configuration

type CreateConfigurationRequest struct {
	ConceptCodes []string `json:"concept_codes" binding:"required,min=1"`
}

type UpdateConfigurationRequest struct {
	ConceptCodes []string `json:"concept_codes" binding:"required,min=1"`
}

type AssignmentResponse struct {
	ID          string `json:"id"`
	ConceptCode string `json:"concept_code"`
	Category    string `json:"category"`
	Value       string `json:"value"`
}

type ConfigurationResponse struct {
	ID          string               `json:"id"`
	Code        string               `json:"code"`
	CreatedAt   string               `json:"created_at"`
	Assignments []AssignmentResponse `json:"assignments"`
}
