package graphstore

import (
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

func recordToMap(keys []string, values []any) map[string]any {
	m := make(map[string]any, len(keys))
	for i, key := range keys {
		if i < len(values) {
			m[key] = normalizeValue(values[i])
		} else {
			m[key] = nil
		}
	}
	return m
}

// normalizeValue maps driver types to JSON-friendly values. Nodes and
// relationships become their property maps, paths become the alternating
// list of those maps, temporal and spatial values become strings.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case dbtype.Node:
		return normalizeMap(x.Props)
	case dbtype.Relationship:
		return normalizeMap(x.Props)
	case dbtype.Path:
		out := make([]any, 0, len(x.Nodes)+len(x.Relationships))
		for i, n := range x.Nodes {
			out = append(out, normalizeMap(n.Props))
			if i < len(x.Relationships) {
				out = append(out, normalizeMap(x.Relationships[i].Props))
			}
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalizeValue(item)
		}
		return out
	case map[string]any:
		return normalizeMap(x)
	case time.Time:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return x
	}
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}
