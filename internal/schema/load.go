package schema

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"
)

type catalogTriple struct {
	Source       string `mapstructure:"source"`
	Relationship string `mapstructure:"relationship"`
	Target       string `mapstructure:"target"`
	Direction    string `mapstructure:"direction"`
}

type catalogExample struct {
	Question string `mapstructure:"question"`
	Query    string `mapstructure:"query"`
}

type catalogFile struct {
	Schema   []catalogTriple  `mapstructure:"schema"`
	Examples []catalogExample `mapstructure:"examples"`
}

// Load reads a schema catalog (YAML, JSON or TOML, chosen by extension).
// An empty path yields the built-in Default schema and DefaultExamples.
//
//	schema:
//	  - {source: Gene, relationship: ASSOCIATED_WITH, target: Disease, direction: out}
//	examples:
//	  - question: Find genes related to Lung Cancer.
//	    query: MATCH (g:Gene)-[:ASSOCIATED_WITH]->(d:Disease {name: "Lung Cancer"}) RETURN g.name;
func Load(path string) (*Descriptor, []Example, error) {
	if path == "" {
		slog.Info("using built-in schema catalog")
		return Default(), DefaultExamples(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("reading schema catalog %s: %w", path, err)
	}

	var file catalogFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, nil, fmt.Errorf("decoding schema catalog %s: %w", path, err)
	}

	triples := make([]Triple, 0, len(file.Schema))
	for i, ct := range file.Schema {
		dir, err := ParseDirection(ct.Direction)
		if err != nil {
			return nil, nil, fmt.Errorf("schema entry %d: %w", i, err)
		}
		triples = append(triples, Triple{
			Source:       ct.Source,
			Relationship: ct.Relationship,
			Target:       ct.Target,
			Direction:    dir,
		})
	}

	desc, err := New(triples...)
	if err != nil {
		return nil, nil, fmt.Errorf("schema catalog %s: %w", path, err)
	}

	examples := make([]Example, 0, len(file.Examples))
	for i, ce := range file.Examples {
		if ce.Question == "" || ce.Query == "" {
			return nil, nil, fmt.Errorf("schema catalog %s: example %d needs both question and query", path, i)
		}
		examples = append(examples, Example{Question: ce.Question, Query: ce.Query})
	}

	slog.Info("schema catalog loaded", "path", path, "triples", desc.Len(), "examples", len(examples))
	return desc, examples, nil
}
