package dtos

type JobCreationRequest struct {
	ClientName         string `json:"clientName" binding:"required"`
	CompanyName        string `json:"companyName" binding:"required"`
	Position           string `json:"position" binding:"required"`
	JobDescription     string `json:"jobDescription"`
	JobApplicationLink string `json:"jobApplicationLink"`
	BaseResume         string `json:"baseResume"`
}

// JobUpdateRequest carries partial updates; nil means "leave unchanged".
type JobUpdateRequest struct {
	ClientName         *string `json:"clientName"`
	CompanyName        *string `json:"companyName"`
	Position           *string `json:"position"`
	JobDescription     *string `json:"jobDescription"`
	JobApplicationLink *string `json:"jobApplicationLink"`
	BaseResume         *string `json:"baseResume"`
	Status             *string `json:"status"`
}

// ErrorResponse is the error envelope every handler returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Details any    `json:"details,omitempty"`
}
