package concept

type CreateConceptRequest struct {
	Code     string   `json:"code" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	Category string   `json:"category" binding:"required"`
	Tags     []string `json:"tags"`
	Value    string   `json:"value" binding:"required"`
	Priority int      `json:"priority"`
}

type UpdateConceptRequest struct {
	Name     string   `json:"name" binding:"required"`
	Category string   `json:"category" binding:"required"`
	Tags     []string `json:"tags"`
	Value    string   `json:"value" binding:"required"`
	Priority int      `json:"priority"`
}

type ConceptResponse struct {
	ID       string   `json:"id"`
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Value    string   `json:"value"`
	Priority int      `json:"priority"`
}
