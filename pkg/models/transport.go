package models

// VerifyURLRequest asks the service to fetch and verify a remote image
type VerifyURLRequest struct {
	ImageURL           string `json:"image_url" binding:"required,url"`
	ExpectedCertNumber string `json:"expected_cert_number,omitempty"`
	ExpectedText       string `json:"expected_text,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status     string `json:"status"`
	Recognizer string `json:"recognizer"`
	Timestamp  string `json:"timestamp"`
}
