package llm

import (
	"context"

	"github.com/sozercan/cypherchat/internal/prompt"
)

type Provider interface {
	// Generate sends the request to the text-generation service and returns
	// its raw, untrusted answer. Failures are qerr.KindGenerationService.
	Generate(ctx context.Context, req *prompt.Request, opts ...Option) (*Result, error)
}

type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

type Option func(*Options)

type Options struct {
	Model       string
	MaxTokens   int64
	Temperature float64
	ToolMode    bool
}

func WithModel(model string) Option {
	return func(o *Options) {
		if model != "" {
			o.Model = model
		}
	}
}

func WithMaxTokens(n int64) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxTokens = n
		}
	}
}

func WithTemperature(t float64) Option {
	return func(o *Options) {
		if t > 0 {
			o.Temperature = t
		}
	}
}

// FunctionResponse represents the structured response from a function call
type FunctionResponse struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Result is the generation service's answer mapped out of the SDK types.
// Content holds the candidate query text, taken from the emit_cypher tool
// call when the model used one.
type Result struct {
	Content      string
	Model        string
	FunctionCall *FunctionResponse
	Usage        Usage
}
