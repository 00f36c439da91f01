package prompt

import (
	"fmt"
	"strings"

	"github.com/sozercan/cypherchat/internal/qerr"
	"github.com/sozercan/cypherchat/internal/schema"
)

// SystemInstruction is sent as the system message of every request.
const SystemInstruction = "Create a valid Neo4j Cypher query."

const rules = `You are a Neo4j Cypher query expert. Generate a precise Cypher MATCH query based on the user's question.

STRICT RULES:
1. Only return the Cypher query (no explanations, no comments).
2. Start the response with MATCH.
3. Ensure the query is syntactically correct for Neo4j.
4. Do not include any additional text, headers, or formatting.`

// Roles used in Message.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn sent to the text-generation service.
type Message struct {
	Role    string
	Content string
}

// Request is everything needed to ask the generator for one query.
// It is built per question and never shared.
type Request struct {
	SystemInstruction string
	Schema            *schema.Descriptor
	Examples          []schema.Example
	UserQuestion      string
}

// Build validates the question and assembles a Request. Schema and
// examples keep the order they are given in.
func Build(question string, desc *schema.Descriptor, examples []schema.Example) (*Request, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, qerr.InvalidInput("prompt.build", "question must not be empty")
	}
	if desc == nil {
		return nil, fmt.Errorf("prompt.build: schema is required")
	}

	ex := make([]schema.Example, len(examples))
	copy(ex, examples)

	return &Request{
		SystemInstruction: SystemInstruction,
		Schema:            desc,
		Examples:          ex,
		UserQuestion:      question,
	}, nil
}

// Render produces the user prompt text. The output depends only on the
// request's fields.
func (r *Request) Render() string {
	var b strings.Builder

	b.WriteString(rules)
	b.WriteString("\n\n### Schema\n")
	for _, t := range r.Schema.Triples() {
		fmt.Fprintf(&b, "- `%s`\n", t.Pattern())
	}

	if len(r.Examples) > 0 {
		b.WriteString("\n### Examples\n")
		for _, ex := range r.Examples {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", ex.Question, ex.Query)
		}
	}

	b.WriteString("\n### User Question:\n")
	b.WriteString(r.UserQuestion)
	b.WriteString("\n")

	return b.String()
}

// Messages returns the ordered chat turns for the request.
func (r *Request) Messages() []Message {
	return []Message{
		{Role: RoleSystem, Content: r.SystemInstruction},
		{Role: RoleUser, Content: r.Render()},
	}
}
