// Package cypher narrows untrusted generated text into a single Cypher query
// that may be handed to the graph store.
//
// The check is a whitelist over tokens, not a grammar. A completion that
// starts with MATCH and contains RETURN is accepted even when it is
// semantically wrong or expensive, e.g. an unbounded variable-length
// traversal or a cartesian product. Nothing here bounds the cost of such a
// query; the store's transaction timeout is the only limit.
//
// Rejected text is never rewritten into something that would pass.
package cypher

import (
	"fmt"
	"strings"

	"github.com/sozercan/cypherchat/internal/qerr"
	"github.com/sozercan/cypherchat/internal/schema"
)

const (
	MatchKeyword      = "MATCH"
	ProjectionKeyword = "RETURN"
	Terminator        = ";"
)

// writeKeywords are rejected by a ReadOnly validator. CALL is included
// because procedures and subqueries may write.
var writeKeywords = []string{"CREATE", "MERGE", "DELETE", "DETACH", "SET", "REMOVE", "DROP", "LOAD", "FOREACH", "CALL"}

// Query is a candidate query that passed validation. The zero value is not
// a valid query; only a Validator produces non-zero values.
type Query struct {
	text string
}

func (q Query) String() string {
	return q.text
}

func (q Query) IsZero() bool {
	return q.text == ""
}

// Validator extracts and validates candidate queries.
type Validator struct {
	schema   *schema.Descriptor
	readOnly bool
}

type Option func(*Validator)

// WithSchema rejects queries that mention labels or relationship types the
// descriptor does not declare.
func WithSchema(d *schema.Descriptor) Option {
	return func(v *Validator) {
		v.schema = d
	}
}

// ReadOnly rejects queries containing write or procedure clauses.
func ReadOnly() Option {
	return func(v *Validator) {
		v.readOnly = true
	}
}

func NewValidator(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var defaultValidator = NewValidator()

// Extract runs the structural checks only.
func Extract(raw string) (Query, error) {
	return defaultValidator.Extract(raw)
}

// Extract keeps the first non-empty line of raw, cuts it at the first
// statement terminator, trims it and validates what is left.
func (v *Validator) Extract(raw string) (Query, error) {
	const op = "cypher.extract"

	line := firstNonEmptyLine(raw)
	if i := strings.Index(line, Terminator); i >= 0 {
		line = line[:i]
	}
	candidate := strings.TrimSpace(line)
	if candidate == "" {
		return Query{}, qerr.InvalidQuery(op, raw, "generated text contains no query")
	}

	tokens, err := tokenize(candidate)
	if err != nil {
		return Query{}, qerr.InvalidQuery(op, candidate, "malformed query: "+err.Error())
	}

	first := tokens[0]
	if first.kind != tokWord || first.pos != 0 || first.text != MatchKeyword {
		return Query{}, qerr.InvalidQuery(op, candidate, "query must start with "+MatchKeyword)
	}

	if !hasKeyword(tokens, ProjectionKeyword, true) {
		return Query{}, qerr.InvalidQuery(op, candidate, "query has no "+ProjectionKeyword+" clause")
	}

	if v.readOnly {
		for _, kw := range writeKeywords {
			if hasClause(tokens, kw) {
				return Query{}, qerr.InvalidQuery(op, candidate, fmt.Sprintf("%s clause is not allowed", kw))
			}
		}
	}

	if v.schema != nil {
		if err := conforms(tokens, v.schema); err != nil {
			return Query{}, qerr.InvalidQuery(op, candidate, err.Error())
		}
	}

	return Query{text: candidate}, nil
}

func firstNonEmptyLine(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}

// hasKeyword reports whether kw appears as a bare word token. Words that
// follow '.', '$' or ':' are property keys, parameters or labels and do not
// count.
func hasKeyword(tokens []token, kw string, caseSensitive bool) bool {
	for i, t := range tokens {
		if t.kind != tokWord {
			continue
		}
		match := t.text == kw
		if !caseSensitive {
			match = strings.EqualFold(t.text, kw)
		}
		if !match {
			continue
		}
		if i > 0 {
			prev := tokens[i-1]
			if prev.isPunct(".") || prev.isPunct("$") || prev.isPunct(":") {
				continue
			}
		}
		return true
	}
	return false
}

// hasClause reports whether kw appears, in any case, where a clause can
// start: first, or right after a closing bracket, a word or a literal.
// Aliases (AS set), map keys (load: 1), list items (a, set) and variables
// used for property access (set.name) are not clauses.
func hasClause(tokens []token, kw string) bool {
	for i, t := range tokens {
		if t.kind != tokWord || !strings.EqualFold(t.text, kw) {
			continue
		}
		if i+1 < len(tokens) && (tokens[i+1].isPunct(":") || tokens[i+1].isPunct(".")) {
			continue
		}
		if i == 0 {
			return true
		}
		prev := tokens[i-1]
		switch prev.kind {
		case tokWord:
			if strings.EqualFold(prev.text, "AS") {
				continue
			}
			return true
		case tokString, tokQuotedIdent:
			return true
		case tokPunct:
			if prev.isPunct(")") || prev.isPunct("]") || prev.isPunct("}") {
				return true
			}
		}
	}
	return false
}
