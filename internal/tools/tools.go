package tools

import (
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
)

// EmitCypherName is the function the model calls in tool mode.
const EmitCypherName = "emit_cypher"

// Define the function the LLM answers through when tool mode is enabled.
// The argument is still untrusted text and goes through the extractor.
var Definitions = []openai.ChatCompletionToolParam{
	{
		Type: openai.F(openai.ChatCompletionToolTypeFunction),
		Function: openai.F(openai.FunctionDefinitionParam{
			Name:        openai.String(EmitCypherName),
			Description: openai.String("Return the single Neo4j Cypher query that answers the user's question"),
			Parameters: openai.F(openai.FunctionParameters{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]string{
						"type":        "string",
						"description": "One Cypher query on a single line, starting with MATCH and containing RETURN",
					},
				},
				"required": []string{"query"},
			}),
		}),
	},
}

type emitCypherArgs struct {
	Query string `json:"query"`
}

// DecodeEmitCypher pulls the query text out of an emit_cypher call.
func DecodeEmitCypher(name, arguments string) (string, error) {
	if name != EmitCypherName {
		return "", fmt.Errorf("unexpected tool call %q", name)
	}
	var args emitCypherArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments for %s: %w", EmitCypherName, err)
	}
	return args.Query, nil
}
