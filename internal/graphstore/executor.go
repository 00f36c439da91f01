// Package graphstore runs validated queries against the graph database and
// turns driver records into plain Go values.
package graphstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sozercan/cypherchat/internal/cypher"
	"github.com/sozercan/cypherchat/internal/qerr"
)

// Rows is a fully materialized result set.
type Rows struct {
	Columns []string
	Records []map[string]any
}

// Session is a scoped unit of work against the store. It is used by one
// request and closed once.
type Session interface {
	Run(ctx context.Context, query string, params map[string]any) (*Rows, error)
	Close(ctx context.Context) error
}

// SessionFactory opens sessions. Implementations hold the long-lived
// connection pool.
type SessionFactory interface {
	OpenSession(ctx context.Context) (Session, error)
}

// QueryResult is the outcome of one executed query. It is read-only.
type QueryResult struct {
	query   cypher.Query
	columns []string
	records []map[string]any
}

func (r *QueryResult) Query() cypher.Query {
	return r.query
}

func (r *QueryResult) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Records returns the records in store order. The slice is a copy; the maps
// are shared and must not be modified.
func (r *QueryResult) Records() []map[string]any {
	out := make([]map[string]any, len(r.records))
	copy(out, r.records)
	return out
}

func (r *QueryResult) Len() int {
	return len(r.records)
}

// Executor runs candidate queries, one session per call.
type Executor struct {
	sessions SessionFactory
	timeout  time.Duration
}

// NewExecutor wires the executor to a session factory. A zero timeout
// leaves the caller's context deadline as the only bound.
func NewExecutor(sessions SessionFactory, timeout time.Duration) *Executor {
	return &Executor{sessions: sessions, timeout: timeout}
}

// Execute runs q and materializes every record. Every failure, including
// a failure to open the session, is returned as qerr.KindExecution.
func (e *Executor) Execute(ctx context.Context, q cypher.Query) (*QueryResult, error) {
	const op = "graphstore.execute"

	if q.IsZero() {
		return nil, qerr.Execution(op, errors.New("empty query"))
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	session, err := e.sessions.OpenSession(ctx)
	if err != nil {
		slog.Error("Failed to open graph session", "error", err)
		return nil, qerr.Execution(op, err)
	}
	defer func() {
		// The caller's context may be done; closing must still happen.
		if closeErr := session.Close(context.WithoutCancel(ctx)); closeErr != nil {
			slog.Warn("Failed to close graph session", "error", closeErr)
		}
	}()

	start := time.Now()
	rows, err := session.Run(ctx, q.String(), nil)
	if err != nil {
		slog.Error("Graph query failed", "query", q.String(), "error", err)
		return nil, qerr.Execution(op, err)
	}

	slog.Debug("Graph query executed", "records", len(rows.Records), "duration", time.Since(start))
	return &QueryResult{
		query:   q,
		columns: rows.Columns,
		records: rows.Records,
	}, nil
}
