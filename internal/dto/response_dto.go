package dto

// ErrorResponse is the uniform error envelope returned by every handler.
type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
