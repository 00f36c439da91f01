package graphstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/sozercan/cypherchat/internal/config"
)

// Neo4jStore owns the process-wide Neo4j driver (a connection pool) and
// hands out read sessions. It is created once and injected into the
// Executor.
type Neo4jStore struct {
	driver       neo4j.DriverWithContext
	database     string
	queryTimeout time.Duration
}

// NewNeo4jStore creates the driver. No connection is made until the first
// session or Verify.
func NewNeo4jStore(cfg config.Neo4jConfig) (*Neo4jStore, error) {
	slog.Info("Creating Neo4j driver", "uri", cfg.URI, "database", cfg.Database)
	if cfg.URI == "" {
		return nil, fmt.Errorf("neo4j URI cannot be empty")
	}

	auth := neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		if cfg.MaxPoolSize > 0 {
			c.MaxConnectionPoolSize = cfg.MaxPoolSize
		}
		if cfg.ConnectTimeout > 0 {
			c.SocketConnectTimeout = cfg.ConnectTimeout
			c.ConnectionAcquisitionTimeout = cfg.ConnectTimeout
		}
	})
	if err != nil {
		return nil, fmt.Errorf("could not create Neo4j driver: %w", err)
	}

	return &Neo4jStore{
		driver:       driver,
		database:     cfg.Database,
		queryTimeout: cfg.QueryTimeout,
	}, nil
}

// Verify checks connectivity to the database.
func (s *Neo4jStore) Verify(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// Close releases the driver and its pooled connections.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// OpenSession opens a read-mode session on the configured database.
func (s *Neo4jStore) OpenSession(ctx context.Context) (Session, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	return &neo4jSession{session: session, timeout: s.queryTimeout}, nil
}

type neo4jSession struct {
	session neo4j.SessionWithContext
	timeout time.Duration
}

// Run executes an auto-commit query. Unlike managed transactions, auto-commit
// queries are not retried by the driver.
func (s *neo4jSession) Run(ctx context.Context, query string, params map[string]any) (*Rows, error) {
	var txConfig []func(*neo4j.TransactionConfig)
	if s.timeout > 0 {
		txConfig = append(txConfig, neo4j.WithTxTimeout(s.timeout))
	}

	result, err := s.session.Run(ctx, query, params, txConfig...)
	if err != nil {
		return nil, err
	}

	keys, err := result.Keys()
	if err != nil {
		return nil, err
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}

	rows := &Rows{
		Columns: keys,
		Records: make([]map[string]any, 0, len(records)),
	}
	for _, record := range records {
		rows.Records = append(rows.Records, recordToMap(record.Keys, record.Values))
	}
	return rows, nil
}

func (s *neo4jSession) Close(ctx context.Context) error {
	return s.session.Close(ctx)
}
