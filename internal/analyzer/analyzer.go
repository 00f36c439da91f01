package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sozercan/cypherchat/apimodels"
	"github.com/sozercan/cypherchat/internal/cypher"
	"github.com/sozercan/cypherchat/internal/graphstore"
	"github.com/sozercan/cypherchat/internal/llm"
	"github.com/sozercan/cypherchat/internal/metrics"
	"github.com/sozercan/cypherchat/internal/prompt"
	"github.com/sozercan/cypherchat/internal/qerr"
	"github.com/sozercan/cypherchat/internal/schema"
)

// QueryExecutor runs a validated query. *graphstore.Executor implements it.
type QueryExecutor interface {
	Execute(ctx context.Context, q cypher.Query) (*graphstore.QueryResult, error)
}

type Analyzer struct {
	schema      *schema.Descriptor
	examples    []schema.Example
	llmProvider llm.Provider
	validator   *cypher.Validator
	executor    QueryExecutor
	metrics     *metrics.Metrics
}

type Option func(*Analyzer)

// WithMetrics records request outcomes and stage timings.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Analyzer) {
		a.metrics = m
	}
}

// WithValidator replaces the default structural validator.
func WithValidator(v *cypher.Validator) Option {
	return func(a *Analyzer) {
		if v != nil {
			a.validator = v
		}
	}
}

func New(desc *schema.Descriptor, examples []schema.Example, llmProvider llm.Provider, executor QueryExecutor, opts ...Option) *Analyzer {
	a := &Analyzer{
		schema:      desc,
		examples:    examples,
		llmProvider: llmProvider,
		validator:   cypher.NewValidator(),
		executor:    executor,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type requestIDKey struct{}

// WithRequestID attaches a request ID used to correlate log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID attached to ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (a *Analyzer) logger(ctx context.Context) (context.Context, *slog.Logger) {
	id := RequestID(ctx)
	if id == "" {
		id = uuid.NewString()
		ctx = WithRequestID(ctx, id)
	}
	return ctx, slog.With("request_id", id)
}

// Translate turns a question into a validated query without running it.
// The generated text is never trusted: only what passes the validator is
// returned.
func (a *Analyzer) Translate(ctx context.Context, req apimodels.AskRequest) (cypher.Query, *llm.Result, error) {
	ctx, log := a.logger(ctx)

	query, result, err := a.translate(ctx, log, req)
	a.metrics.ObserveRequest(metrics.OperationTranslate, outcome(err))
	return query, result, err
}

func (a *Analyzer) translate(ctx context.Context, log *slog.Logger, req apimodels.AskRequest) (cypher.Query, *llm.Result, error) {
	promptReq, err := prompt.Build(req.Question, a.schema, a.examples)
	if err != nil {
		return cypher.Query{}, nil, err
	}
	log.Info("Generating query", "question", promptReq.UserQuestion)

	start := time.Now()
	result, err := a.llmProvider.Generate(ctx, promptReq,
		llm.WithModel(req.Options.Model),
		llm.WithMaxTokens(req.Options.MaxTokens),
		llm.WithTemperature(req.Options.Temperature),
	)
	a.metrics.ObserveStage(metrics.StageGenerate, time.Since(start))
	if err != nil {
		log.Error("Query generation failed", "error", err)
		return cypher.Query{}, nil, err
	}

	start = time.Now()
	query, err := a.validator.Extract(result.Content)
	a.metrics.ObserveStage(metrics.StageValidate, time.Since(start))
	if err != nil {
		a.metrics.ObserveRejected()
		log.Warn("Generated query rejected", "text", qerr.RejectedText(err), "raw", result.Content, "error", err)
		return cypher.Query{}, result, err
	}

	log.Debug("Generated query accepted", "query", query.String(), "model", result.Model, "tokens", result.Usage.TotalTokens)
	return query, result, nil
}

// Analyze answers a question end to end: build the prompt, generate, validate,
// execute and return the query with its records. Nothing reaches the store
// unless validation succeeded.
func (a *Analyzer) Analyze(ctx context.Context, req apimodels.AskRequest) (*apimodels.AskResponse, error) {
	ctx, log := a.logger(ctx)
	startTime := time.Now()

	resp, err := a.analyze(ctx, log, req)
	a.metrics.ObserveRequest(metrics.OperationAnalyze, outcome(err))
	if err != nil {
		return nil, err
	}

	log.Info("Question answered", "records", len(resp.Results), "duration", time.Since(startTime))
	return resp, nil
}

func (a *Analyzer) analyze(ctx context.Context, log *slog.Logger, req apimodels.AskRequest) (*apimodels.AskResponse, error) {
	query, _, err := a.translate(ctx, log, req)
	if err != nil {
		return nil, err
	}
	if a.executor == nil {
		return nil, qerr.Execution("analyzer.analyze", errors.New("no graph store configured"))
	}

	start := time.Now()
	result, err := a.executor.Execute(ctx, query)
	a.metrics.ObserveStage(metrics.StageExecute, time.Since(start))
	if err != nil {
		log.Error("Query execution failed", "query", query.String(), "error", err)
		return nil, err
	}
	a.metrics.ObserveRecords(result.Len())

	return &apimodels.AskResponse{
		Query:   query.String(),
		Results: result.Records(),
	}, nil
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	return qerr.KindOf(err).String()
}
