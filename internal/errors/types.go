package errors

// represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`             // error code (e.g., "unauthorized", "fetch_failed")
	Message string `json:"message"`           // user-friendly message
	Details string `json:"details,omitempty"` // optional details (sanitized in production)
}

// 402 envelope returned when a caller has no extractions left
type QuotaResponse struct {
	Error          string `json:"error"`
	RequiresSignup bool   `json:"requiresSignup,omitempty"`
	Upgrade        bool   `json:"upgrade,omitempty"`
	Message        string `json:"message"`
}

type ErrorInfo struct {
	category  string
	sanitized string
}
