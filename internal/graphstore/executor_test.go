package graphstore

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/cypherchat/internal/cypher"
	"github.com/sozercan/cypherchat/internal/qerr"
	"github.com/sozercan/cypherchat/internal/schema"
)

type fakeSession struct {
	mu       sync.Mutex
	rows     *Rows
	runErr   error
	queries  []string
	closed   int
	// runFn overrides rows/runErr when set.
	runFn    func(query string) (*Rows, error)
	closeErr error
}

func (s *fakeSession) Run(ctx context.Context, query string, params map[string]any) (*Rows, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if s.runFn != nil {
		return s.runFn(query)
	}
	if s.runErr != nil {
		return nil, s.runErr
	}
	return s.rows, nil
}

func (s *fakeSession) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return s.closeErr
}

type fakeFactory struct {
	session *fakeSession
	openErr error
	opened  int
}

func (f *fakeFactory) OpenSession(ctx context.Context) (Session, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opened++
	return f.session, nil
}

func mustQuery(t *testing.T, raw string) cypher.Query {
	t.Helper()
	q, err := cypher.Extract(raw)
	require.NoError(t, err)
	return q
}

func TestExecuteMaterializesRecords(t *testing.T) {
	session := &fakeSession{rows: &Rows{
		Columns: []string{"g.name"},
		Records: []map[string]any{{"g.name": "TP53"}, {"g.name": "EGFR"}},
	}}
	factory := &fakeFactory{session: session}
	exec := NewExecutor(factory, time.Second)

	q := mustQuery(t, "MATCH (g:Gene) RETURN g.name")
	res, err := exec.Execute(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, q, res.Query())
	assert.Equal(t, []string{"g.name"}, res.Columns())
	assert.Equal(t, 2, res.Len())
	assert.Equal(t, []map[string]any{{"g.name": "TP53"}, {"g.name": "EGFR"}}, res.Records())
	assert.Equal(t, []string{"MATCH (g:Gene) RETURN g.name"}, session.queries)
	assert.Equal(t, 1, session.closed)
	assert.Equal(t, 1, factory.opened)
}

func TestExecuteStoreFailureReleasesSessionOnce(t *testing.T) {
	storeErr := errors.New("Neo.ClientError.Statement.SyntaxError: Invalid input 'RETURN'")
	session := &fakeSession{runErr: storeErr}
	exec := NewExecutor(&fakeFactory{session: session}, 0)

	res, err := exec.Execute(context.Background(), mustQuery(t, "MATCH (g) RETURN g"))
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, qerr.ErrExecution))
	assert.True(t, errors.Is(err, storeErr), "original store error is preserved")
	assert.Contains(t, err.Error(), "Invalid input 'RETURN'")
	assert.Equal(t, 1, session.closed)
}

func TestExecuteOpenFailureIsExecutionError(t *testing.T) {
	exec := NewExecutor(&fakeFactory{openErr: errors.New("connection refused")}, 0)

	_, err := exec.Execute(context.Background(), mustQuery(t, "MATCH (g) RETURN g"))
	assert.True(t, errors.Is(err, qerr.ErrExecution))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestExecuteClosesSessionWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	session := &fakeSession{runFn: func(string) (*Rows, error) {
		cancel()
		return nil, context.Canceled
	}}
	exec := NewExecutor(&fakeFactory{session: session}, 0)

	_, err := exec.Execute(ctx, mustQuery(t, "MATCH (g) RETURN g"))
	assert.True(t, errors.Is(err, qerr.ErrExecution))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, session.closed)
}

func TestExecuteRejectsZeroQuery(t *testing.T) {
	factory := &fakeFactory{session: &fakeSession{}}
	exec := NewExecutor(factory, 0)

	_, err := exec.Execute(context.Background(), cypher.Query{})
	assert.True(t, errors.Is(err, qerr.ErrExecution))
	assert.Equal(t, 0, factory.opened)
}

func TestExecuteEmptyResult(t *testing.T) {
	exec := NewExecutor(&fakeFactory{session: &fakeSession{rows: &Rows{Columns: []string{"n"}}}}, 0)

	res, err := exec.Execute(context.Background(), mustQuery(t, "MATCH (n:Nothing) RETURN n"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Len())
	assert.NotNil(t, res.Records())
	assert.Empty(t, res.Records())
}

func TestQueryResultIsReadOnly(t *testing.T) {
	exec := NewExecutor(&fakeFactory{session: &fakeSession{rows: &Rows{
		Columns: []string{"x"},
		Records: []map[string]any{{"x": 1}},
	}}}, 0)

	res, err := exec.Execute(context.Background(), mustQuery(t, "MATCH (n) RETURN n.x AS x"))
	require.NoError(t, err)

	records := res.Records()
	records[0] = map[string]any{"x": 2}
	cols := res.Columns()
	cols[0] = "y"

	assert.Equal(t, 1, res.Records()[0]["x"])
	assert.Equal(t, "x", res.Columns()[0])
}

func TestProbeSchema(t *testing.T) {
	desc, err := schema.New(
		schema.Triple{Source: "Gene", Relationship: "ASSOCIATED_WITH", Target: "Disease"},
		schema.Triple{Source: "Disease", Relationship: "TREATS", Target: "Drug", Direction: schema.Incoming},
	)
	require.NoError(t, err)

	session := &fakeSession{runFn: func(query string) (*Rows, error) {
		return &Rows{Columns: []string{"total"}, Records: []map[string]any{{"total": int64(7)}}}, nil
	}}

	coverage, err := ProbeSchema(context.Background(), &fakeFactory{session: session}, desc)
	require.NoError(t, err)
	require.Len(t, coverage, 2)
	assert.Equal(t, int64(7), coverage[0].Count)
	assert.Equal(t, "ASSOCIATED_WITH", coverage[0].Triple.Relationship)

	require.Len(t, session.queries, 2)
	assert.Contains(t, session.queries[0], "ASSOCIATED_WITH")
	assert.Contains(t, session.queries[0], "count(r)")
	assert.Contains(t, session.queries[1], "TREATS")
	assert.Equal(t, 1, session.closed)
}

func TestProbeSchemaStoreError(t *testing.T) {
	session := &fakeSession{runErr: errors.New("unavailable")}
	_, err := ProbeSchema(context.Background(), &fakeFactory{session: session}, schema.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
	assert.Equal(t, 1, session.closed)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestProbeSchemaLogsCloseFailure(t *testing.T) {
	logs := captureLogs(t)
	session := &fakeSession{
		rows:     &Rows{Columns: []string{"total"}, Records: []map[string]any{{"total": int64(1)}}},
		closeErr: errors.New("connection reset"),
	}

	coverage, err := ProbeSchema(context.Background(), &fakeFactory{session: session}, schema.Default())
	require.NoError(t, err)
	assert.Len(t, coverage, schema.Default().Len())
	assert.Equal(t, 1, session.closed)
	assert.Contains(t, logs.String(), "Failed to close probe session")
	assert.Contains(t, logs.String(), "connection reset")
}

func TestExecuteLogsCloseFailure(t *testing.T) {
	logs := captureLogs(t)
	session := &fakeSession{rows: &Rows{Columns: []string{"n"}}, closeErr: errors.New("connection reset")}

	_, err := NewExecutor(&fakeFactory{session: session}, 0).Execute(context.Background(), mustQuery(t, "MATCH (n) RETURN n"))
	require.NoError(t, err)
	assert.Equal(t, 1, session.closed)
	assert.Contains(t, logs.String(), "Failed to close graph session")
}
