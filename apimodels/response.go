package apimodels

import "github.com/sozercan/cypherchat/internal/schema"

type AskResponse struct {
	// The validated query that was executed
	Query string `json:"query"`

	// Records in store order, one map per record keyed by column name
	Results []map[string]any `json:"results"`
}

type TranslateResponse struct {
	Query string `json:"query"`

	// Model that generated the query
	Model string `json:"model,omitempty"`

	// Tokens used in generation
	TokensUsed int64 `json:"tokensUsed,omitempty"`
}

type SchemaResponse struct {
	Triples  []schema.Triple `json:"triples"`
	Patterns []string        `json:"patterns"`
	Labels   []string        `json:"labels"`

	// Relationship types in first-seen order
	RelationshipTypes []string `json:"relationshipTypes"`

	// Few-shot examples sent with every prompt
	Examples []schema.Example `json:"examples"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
