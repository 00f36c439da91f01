package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"

	"github.com/sozercan/cypherchat/internal/config"
	"github.com/sozercan/cypherchat/internal/prompt"
	"github.com/sozercan/cypherchat/internal/qerr"
	"github.com/sozercan/cypherchat/internal/tools"
)

// OpenAI talks to any OpenAI-compatible chat completion API: OpenAI itself,
// Azure OpenAI, or Ollama's /v1 endpoint.
type OpenAI struct {
	client *openai.Client
	cfg    *config.LLMConfig
}

func NewOpenAI(cfg *config.LLMConfig) (*OpenAI, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("LLM endpoint cannot be empty")
	}

	// Retries stay off unless configured; the pipeline is one-shot.
	opts := []option.RequestOption{
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(cfg.MaxRetries),
	}

	switch cfg.Provider {
	case config.ProviderAzure:
		opts = append(opts,
			azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
			azure.WithAPIKey(cfg.APIKey),
		)
	case config.ProviderOllama:
		apiKey := cfg.APIKey
		if apiKey == "" {
			// Ollama ignores the key but the SDK always sends one.
			apiKey = "ollama"
		}
		opts = append(opts,
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL(cfg.Endpoint)),
		)
	default: // "openai"
		opts = append(opts,
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(baseURL(cfg.Endpoint)),
		)
	}
	client := openai.NewClient(opts...)

	slog.Info("Created LLM client", "provider", cfg.Provider, "endpoint", cfg.Endpoint, "model", cfg.Model)
	return &OpenAI{
		client: client,
		cfg:    cfg,
	}, nil
}

// baseURL makes sure relative API paths resolve under the endpoint's path.
func baseURL(endpoint string) string {
	return strings.TrimRight(endpoint, "/") + "/"
}

func (o *OpenAI) Generate(ctx context.Context, req *prompt.Request, opts ...Option) (*Result, error) {
	const op = "llm.generate"

	// Apply options
	options := &Options{
		Model:       o.cfg.Model,
		Temperature: o.cfg.Temperature,
		MaxTokens:   o.cfg.MaxTokens,
		ToolMode:    o.cfg.ToolMode,
	}
	for _, opt := range opts {
		opt(options)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	for _, m := range req.Messages() {
		switch m.Role {
		case prompt.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case prompt.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.F(options.Model),
		Messages:    openai.F(messages),
		Temperature: openai.F(options.Temperature),
		MaxTokens:   openai.F(options.MaxTokens),
	}
	if options.ToolMode {
		params.Tools = openai.F(tools.Definitions)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		slog.Error("LLM request failed", "model", options.Model, "error", err)
		return nil, qerr.GenerationService(op, err)
	}
	if len(resp.Choices) == 0 {
		return nil, qerr.GenerationService(op, errors.New("response contains no choices"))
	}

	// Process the response
	response := &Result{
		Model: resp.Model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		toolCall := msg.ToolCalls[0]
		response.FunctionCall = &FunctionResponse{
			Name:      toolCall.Function.Name,
			Arguments: toolCall.Function.Arguments,
		}
		content, err := tools.DecodeEmitCypher(toolCall.Function.Name, toolCall.Function.Arguments)
		if err != nil {
			return nil, qerr.GenerationService(op, err)
		}
		response.Content = content
	} else {
		response.Content = msg.Content
	}

	slog.Debug("LLM response received", "model", response.Model, "tokens", response.Usage.TotalTokens)
	return response, nil
}
