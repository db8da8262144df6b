package api

// GenerateResponse is the success payload of POST /v1/generate.
type GenerateResponse struct {
	Success  bool     `json:"success"`
	Content  string   `json:"content"`
	Provider string   `json:"provider"`
	Model    string   `json:"model"`
	Tokens   int      `json:"tokens"`
	Attempts int      `json:"attempts"`
	Errors   []string `json:"errors,omitempty"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ResetRequest names the provider whose status should be restored.
type ResetRequest struct {
	Provider string `json:"provider"`
}

// HealthResponse reports service liveness and upstream reachability.
type HealthResponse struct {
	Status    string          `json:"status"`
	Providers map[string]bool `json:"providers"`
}
