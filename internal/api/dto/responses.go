package dto

// ErrorResponse is the JSON body for all rejection and failure responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the liveness check body.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// AnalyzeResponse is the body of the analyze-only debug endpoint.
type AnalyzeResponse struct {
	Context  string  `json:"context"`
	Duration float64 `json:"duration"`
}

// PromptResponse is the body of the prompt-only debug endpoint.
type PromptResponse struct {
	Context      string  `json:"context"`
	Duration     float64 `json:"duration"`
	SunoPrompt   string  `json:"suno_prompt"`
	Tags         string  `json:"tags"`
	NegativeTags string  `json:"negative_tags"`
}
