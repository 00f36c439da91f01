package cypher

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/cypherchat/internal/qerr"
	"github.com/sozercan/cypherchat/internal/schema"
)

func TestExtractAccepts(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain query",
			raw:  "MATCH (g) RETURN g",
			want: "MATCH (g) RETURN g",
		},
		{
			name: "drops explanation lines",
			raw:  "MATCH (g) RETURN g\nExplanation: this finds genes",
			want: "MATCH (g) RETURN g",
		},
		{
			name: "drops comment after terminator",
			raw:  "MATCH (g) RETURN g; -- note",
			want: "MATCH (g) RETURN g",
		},
		{
			name: "skips leading blank lines and trims",
			raw:  "\n   \n  MATCH (d:Disease) RETURN d.name  \r\nmore text",
			want: "MATCH (d:Disease) RETURN d.name",
		},
		{
			name: "generated lung cancer query",
			raw:  "MATCH (g:Gene)-[:ASSOCIATED_WITH]->(d:Disease {name: \"Lung Cancer\"}) RETURN g.name;\n",
			want: `MATCH (g:Gene)-[:ASSOCIATED_WITH]->(d:Disease {name: "Lung Cancer"}) RETURN g.name`,
		},
		{
			name: "no space after MATCH",
			raw:  "MATCH(g:Gene) RETURN g",
			want: "MATCH(g:Gene) RETURN g",
		},
		{
			name: "escaped quote in string",
			raw:  `MATCH (d:Drug)-[:TREATS]->(x:Disease {name: 'Alzheimer\'s'}) RETURN d.name`,
			want: `MATCH (d:Drug)-[:TREATS]->(x:Disease {name: 'Alzheimer\'s'}) RETURN d.name`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Extract(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.String())
			assert.False(t, q.IsZero())
		})
	}
}

func TestExtractRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "only whitespace", raw: " \n\t\n"},
		{name: "prose before MATCH", raw: "Sure! Here's your query: MATCH (g) RETURN g"},
		{name: "no RETURN", raw: "MATCH (g) WHERE g.name = 'X'"},
		{name: "lowercase match", raw: "match (g) return g"},
		{name: "MATCH as prefix of a word", raw: "MATCHES (g) RETURN g"},
		{name: "OPTIONAL MATCH", raw: "OPTIONAL MATCH (g) RETURN g"},
		{name: "RETURN only inside a string", raw: "MATCH (g {name: 'RETURN'}) WITH g"},
		{name: "RETURN only as property", raw: "MATCH (g) WITH g.RETURN AS x"},
		{name: "RETURN as part of word", raw: "MATCH (g) RETURNING g"},
		{name: "RETURN on second line", raw: "MATCH (g)\nRETURN g"},
		{name: "RETURN after terminator", raw: "MATCH (g); RETURN g"},
		{name: "code fence", raw: "```cypher\nMATCH (g) RETURN g\n```"},
		{name: "unbalanced parenthesis", raw: "MATCH (g:Gene RETURN g"},
		{name: "terminator inside string cut", raw: `MATCH (g {name: "a;b"}) RETURN g`},
		{name: "unterminated string", raw: `MATCH (g {name: "TP53}) RETURN g`},
		{name: "mismatched brackets", raw: "MATCH (g]) RETURN g"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Extract(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, qerr.ErrInvalidQuery), "got %v", err)
			assert.True(t, q.IsZero())
		})
	}
}

func TestExtractCarriesRejectedText(t *testing.T) {
	_, err := Extract("MATCH (g) WHERE g.name = 'X'\nsecond line")
	require.Error(t, err)
	assert.Equal(t, "MATCH (g) WHERE g.name = 'X'", qerr.RejectedText(err))
	assert.Contains(t, err.Error(), "RETURN")
}

func TestExtractIsIdempotent(t *testing.T) {
	inputs := []string{
		"MATCH (g) RETURN g",
		"MATCH (g) RETURN g\nExplanation: this finds genes",
		"  MATCH (g) RETURN g; -- note",
		"MATCH (g:Gene)-[:ASSOCIATED_WITH]->(d:Disease {name: \"Lung Cancer\"}) RETURN g.name;\n",
	}

	for _, raw := range inputs {
		first, err := Extract(raw)
		require.NoError(t, err, raw)
		second, err := Extract(first.String())
		require.NoError(t, err, raw)
		assert.Equal(t, first, second, raw)
	}
}

// Every accepted query starts with MATCH and carries a RETURN word token.
func TestExtractAcceptedQueriesHoldContract(t *testing.T) {
	inputs := []string{
		"MATCH (g) RETURN g",
		"MATCH (g) RETURN g\nMATCH (x) DELETE x",
		"MATCH (a)-[r]->(b) RETURN type(r), count(*);;;",
		"Here it is\nMATCH (g) RETURN g",
		"MATCH (n) WITH n RETURN n.name AS name ORDER BY name LIMIT 5",
		"MATCH (n {k: 'v\\'RETURN'}) RETURN n",
	}

	for _, raw := range inputs {
		q, err := Extract(raw)
		if err != nil {
			assert.True(t, errors.Is(err, qerr.ErrInvalidQuery), raw)
			continue
		}
		tokens, tokErr := tokenize(q.String())
		require.NoError(t, tokErr)
		assert.Equal(t, MatchKeyword, tokens[0].text, raw)
		assert.True(t, hasKeyword(tokens, ProjectionKeyword, true), raw)
		assert.NotContains(t, q.String(), "\n", raw)
		assert.NotContains(t, q.String(), Terminator, raw)
	}
}

func TestReadOnlyValidator(t *testing.T) {
	v := NewValidator(ReadOnly())

	_, err := v.Extract("MATCH (g:Gene) RETURN g.name")
	assert.NoError(t, err)

	_, err = v.Extract("MATCH (g:Gene {name: 'CREATE'}) RETURN g.set")
	assert.NoError(t, err, "keywords in strings and property keys are not clauses")

	for _, raw := range []string{
		"MATCH (s:Symptom) RETURN s.name AS set",
		"MATCH (g:Gene) RETURN g {.name, load: g.score}",
		"MATCH (g:Gene) RETURN g.name AS Create, count(*) AS delete",
		"MATCH (g:Gene) WITH g, g.score AS merge RETURN g, merge",
		"MATCH (set:Gene) RETURN set.name",
	} {
		_, err := v.Extract(raw)
		assert.NoError(t, err, "aliases, map keys and variables are not clauses: %s", raw)
	}

	for _, raw := range []string{
		"MATCH (g:Gene) DETACH DELETE g RETURN count(g)",
		"MATCH (g:Gene {name: 'x'}) SET g.flag = true RETURN g",
		"MATCH (g:Gene) WITH g LIMIT 1 REMOVE g.flag RETURN g",
		"MATCH (g:Gene) RETURN g UNION MATCH (x) CREATE (y) RETURN y",
		"MATCH (g:Gene) WHERE g.x = 1 FOREACH (n IN [g] | SET n.y = 1) RETURN g",
		"MATCH (g:Gene) SET g.flag = true RETURN g",
		"MATCH (g:Gene) merge (x:Gene {name: 'A'}) RETURN x",
		"MATCH (g) CALL db.labels() YIELD label RETURN label",
	} {
		_, err := v.Extract(raw)
		assert.True(t, errors.Is(err, qerr.ErrInvalidQuery), raw)
	}

	_, err = Extract("MATCH (g:Gene) SET g.flag = true RETURN g")
	assert.NoError(t, err, "the default validator only checks structure")
}

func TestSchemaValidator(t *testing.T) {
	v := NewValidator(WithSchema(schema.Default()))

	_, err := v.Extract(`MATCH (g:Gene)-[:ASSOCIATED_WITH]->(d:Disease {name: "Lung Cancer"}) RETURN g.name`)
	assert.NoError(t, err)

	_, err = v.Extract(`MATCH (g:Gene {name: "APOE"})-[r]->(n) RETURN type(r), labels(n), n.name`)
	assert.NoError(t, err, "untyped patterns are allowed")

	_, err = v.Extract("MATCH (g:Gene)-[:CAUSES]->(d:Disease) RETURN d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CAUSES")

	_, err = v.Extract("MATCH (c:Compound) RETURN c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Compound")

	_, err = v.Extract("MATCH (g:Gene)-[:TREATS|CURES]-(d) RETURN d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CURES")

	_, err = v.Extract("MATCH p = (g:Gene)-[:REGULATES]->(x) RETURN [n IN nodes(p) WHERE n:Protein | n.name]")
	assert.NoError(t, err, "label predicates in a list comprehension are not relationship types")
}
