package apimodels

type AskRequest struct {
	// Question is the natural-language question to answer from the graph
	Question string `json:"question"`

	// Optional parameters to control generation
	Options AskOptions `json:"options,omitempty"`
}

type AskOptions struct {
	// Model overrides the configured model (e.g. "gpt-4o-mini")
	Model string `json:"model,omitempty"`

	// MaxTokens limits the generated answer length
	MaxTokens int64 `json:"maxTokens,omitempty"`

	// Temperature controls randomness (0.0-1.0)
	Temperature float64 `json:"temperature,omitempty"`
}
