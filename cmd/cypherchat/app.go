package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sozercan/cypherchat/internal/analyzer"
	"github.com/sozercan/cypherchat/internal/config"
	"github.com/sozercan/cypherchat/internal/cypher"
	"github.com/sozercan/cypherchat/internal/graphstore"
	"github.com/sozercan/cypherchat/internal/llm"
	"github.com/sozercan/cypherchat/internal/metrics"
	"github.com/sozercan/cypherchat/internal/schema"
)

// app holds the process-scoped components shared by the subcommands.
type app struct {
	cfg      *config.Config
	schema   *schema.Descriptor
	examples []schema.Example
	store    *graphstore.Neo4jStore
	registry *prometheus.Registry
	analyzer *analyzer.Analyzer
}

// loadCatalog reads the schema and examples and checks that every example
// would itself pass validation.
func loadCatalog(cfg *config.Config) (*schema.Descriptor, []schema.Example, error) {
	desc, examples, err := schema.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, nil, err
	}
	if err := cypher.CheckExamples(desc, examples); err != nil {
		return nil, nil, fmt.Errorf("catalog examples do not conform to the schema: %w", err)
	}
	return desc, examples, nil
}

func newValidator(cfg config.CypherConfig, desc *schema.Descriptor) *cypher.Validator {
	var opts []cypher.Option
	if cfg.ReadOnly {
		opts = append(opts, cypher.ReadOnly())
	}
	if cfg.EnforceSchema {
		opts = append(opts, cypher.WithSchema(desc))
	}
	return cypher.NewValidator(opts...)
}

func newStore(ctx context.Context, cfg *config.Config) (*graphstore.Neo4jStore, error) {
	store, err := graphstore.NewNeo4jStore(cfg.Neo4j)
	if err != nil {
		return nil, err
	}
	if cfg.Neo4j.VerifyOnStart {
		if err := store.Verify(ctx); err != nil {
			store.Close(context.WithoutCancel(ctx))
			return nil, fmt.Errorf("neo4j is not reachable at %s: %w", cfg.Neo4j.URI, err)
		}
	}
	return store, nil
}

// newApp wires the pipeline. withStore is false for commands that never
// execute queries.
func newApp(ctx context.Context, cfg *config.Config, withStore bool) (*app, error) {
	desc, examples, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	llmProvider, err := llm.NewOpenAI(&cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	a := &app{
		cfg:      cfg,
		schema:   desc,
		examples: examples,
		registry: prometheus.NewRegistry(),
	}

	var executor analyzer.QueryExecutor
	if withStore {
		a.store, err = newStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		executor = graphstore.NewExecutor(a.store, cfg.Neo4j.QueryTimeout)
	}

	a.analyzer = analyzer.New(desc, examples, llmProvider, executor,
		analyzer.WithValidator(newValidator(cfg.Cypher, desc)),
		analyzer.WithMetrics(metrics.NewMetrics(a.registry)),
	)
	return a, nil
}

func (a *app) Close(ctx context.Context) {
	if a.store == nil {
		return
	}
	if err := a.store.Close(ctx); err != nil {
		slog.Warn("Failed to close Neo4j driver", "error", err)
	}
}
