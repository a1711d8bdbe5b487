//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"tickethub/internal/platform/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance. Each store
// schema gets its own database inside the container, mirroring the separate
// identity/bus/air/train stores of a deployment.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB

	mu  sync.Mutex
	dbs map[postgres.Schema]*sql.DB
}

// NewPostgresContainer starts a new PostgreSQL container.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("tickethub"),
		tcpostgres.WithUsername("tickethub"),
		tcpostgres.WithPassword("tickethub"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := postgres.Open(ctx, dsn, postgres.PoolConfig{MaxOpenConns: 10})
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres: %v", err)
	}

	return &PostgresContainer{
		Container: container,
		DSN:       dsn,
		DB:        db,
		dbs:       make(map[postgres.Schema]*sql.DB),
	}
}

// Database returns a pool for the database holding schema, creating and
// migrating it on first use.
func (p *PostgresContainer) Database(t *testing.T, schema postgres.Schema) *sql.DB {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()

	if db, ok := p.dbs[schema]; ok {
		return db
	}

	ctx := context.Background()
	name := "store_" + string(schema)
	_, err := p.DB.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name))
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("failed to create database %s: %v", name, err)
	}

	dsn, err := withDatabase(p.DSN, name)
	if err != nil {
		t.Fatalf("failed to build dsn: %v", err)
	}
	db, err := postgres.Open(ctx, dsn, postgres.PoolConfig{MaxOpenConns: 10})
	if err != nil {
		t.Fatalf("failed to open %s: %v", name, err)
	}
	if err := postgres.Migrate(ctx, db, schema); err != nil {
		t.Fatalf("failed to migrate %s: %v", name, err)
	}
	p.dbs[schema] = db
	return db
}

// TruncateTables empties tables in db and resets their sequences.
func TruncateTables(ctx context.Context, db *sql.DB, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	quoted := make([]string, 0, len(tables))
	for _, table := range tables {
		quoted = append(quoted, pq.QuoteIdentifier(table))
	}
	_, err := db.ExecContext(ctx, "TRUNCATE "+strings.Join(quoted, ", ")+" RESTART IDENTITY CASCADE")
	return err
}

func withDatabase(dsn, name string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	u.Path = "/" + name
	return u.String(), nil
}
