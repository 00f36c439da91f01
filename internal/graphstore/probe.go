package graphstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saulfrancisco-ruizacevedo/gocypher"

	"github.com/sozercan/cypherchat/internal/schema"
)

// Coverage is how many stored relationships match one declared triple.
type Coverage struct {
	Triple schema.Triple `json:"triple"`
	Count  int64         `json:"count"`
}

// probeQuery builds MATCH (a:Source)-[r:REL]->(b:Target) RETURN count(r) AS total
// for a triple. Incoming triples are matched from the target side.
func probeQuery(t schema.Triple) (string, map[string]interface{}, error) {
	src, dst := t.Source, t.Target
	if t.Direction == schema.Incoming {
		src, dst = dst, src
	}

	qb := gocypher.NewQueryBuilder()
	if t.Direction == schema.Undirected {
		qb = qb.Match(gocypher.N("a", src), gocypher.R("r", t.Relationship), gocypher.N("b", dst))
	} else {
		qb = qb.Match(gocypher.N("a", src), gocypher.R("r", t.Relationship).To(), gocypher.N("b", dst))
	}
	return qb.Return("count(r) AS total").Build()
}

// ProbeSchema counts the stored relationships for each declared triple, in
// declaration order. A zero count usually means the descriptor and the data
// have drifted apart. The probe queries are built here, never generated, so
// they bypass the candidate query validator.
func ProbeSchema(ctx context.Context, sessions SessionFactory, desc *schema.Descriptor) ([]Coverage, error) {
	session, err := sessions.OpenSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening probe session: %w", err)
	}
	defer func() {
		if closeErr := session.Close(context.WithoutCancel(ctx)); closeErr != nil {
			slog.Warn("Failed to close probe session", "error", closeErr)
		}
	}()

	triples := desc.Triples()
	out := make([]Coverage, 0, len(triples))
	for _, t := range triples {
		query, params, err := probeQuery(t)
		if err != nil {
			return nil, fmt.Errorf("building probe for %s: %w", t.Pattern(), err)
		}

		rows, err := session.Run(ctx, query, params)
		if err != nil {
			return nil, fmt.Errorf("probing %s: %w", t.Pattern(), err)
		}

		cov := Coverage{Triple: t}
		if len(rows.Records) > 0 {
			if n, ok := rows.Records[0]["total"].(int64); ok {
				cov.Count = n
			}
		}
		out = append(out, cov)
	}
	return out, nil
}
