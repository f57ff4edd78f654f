package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"brokerage-portal/internal/common/config"

	_ "github.com/lib/pq"
)

const (
	defaultMaxOpen  = 10
	defaultMaxIdle  = 2
	connMaxLifetime = 30 * time.Minute
)

// PostgresClient wraps the pool backing the JSONB document store.
type PostgresClient struct {
	DB *sql.DB
}

func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	return newPostgres(db, cfg), nil
}

func newPostgres(db *sql.DB, cfg config.PostgresConfig) *PostgresClient {
	maxOpen, maxIdle := cfg.MaxConnections, cfg.MaxIdle
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpen
	}
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = defaultMaxIdle
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(connMaxLifetime)
	return &PostgresClient{DB: db}
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}

func (c *PostgresClient) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

// EnsureDocumentTable creates the collection table and the GIN index that
// serves JSONB containment filters.
func (c *PostgresClient) EnsureDocumentTable(ctx context.Context, table string) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_body_gin ON %s USING GIN (body jsonb_path_ops)`, table, table),
	}
	for _, stmt := range stmts {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("prepare table %s: %w", table, err)
		}
	}
	return nil
}
