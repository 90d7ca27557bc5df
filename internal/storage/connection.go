package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver registration
)

const (
	// postgresDriver is the database/sql driver name registered by lib/pq.
	postgresDriver = "postgres"

	// connectTimeout bounds the connectivity check performed by NewConnection.
	connectTimeout = 10 * time.Second
)

var (
	// ErrNoDatabaseConnection is returned when a store is constructed without a database connection.
	ErrNoDatabaseConnection = errors.New("no database connection")

	// ErrConnectionFailed is returned when the database cannot be reached.
	ErrConnectionFailed = errors.New("database connection failed")
)

// Connection wraps a pooled *sql.DB configured from Config.
//
// All stores in this package share a single Connection so the pool limits
// configured via DATABASE_MAX_* apply process-wide.
type Connection struct {
	DB *sql.DB
}

// NewConnection opens a PostgreSQL connection pool and verifies connectivity.
//
// Pool sizing comes from cfg (DATABASE_MAX_OPEN_CONNS and friends). The
// initial ping is bounded by connectTimeout so a wrong DATABASE_URL fails
// fast instead of hanging startup.
func NewConnection(cfg *Config) (*Connection, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrConnectionFailed)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	db, err := sql.Open(postgresDriver, cfg.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrConnectionFailed, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("%w: failed to ping database: %w", ErrConnectionFailed, err)
	}

	return &Connection{DB: db}, nil
}

// BeginTx starts a transaction with the given options.
func (c *Connection) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return c.DB.BeginTx(ctx, opts)
}

// ExecContext executes a query that returns no rows.
func (c *Connection) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.DB.ExecContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (c *Connection) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.DB.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a query that returns at most one row.
func (c *Connection) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return c.DB.QueryRowContext(ctx, query, args...)
}

// HealthCheck verifies the database is reachable.
// Used by the health endpoint to report database status.
func (c *Connection) HealthCheck(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return nil
}

// Close closes the connection pool. Safe to call multiple times.
func (c *Connection) Close() error {
	if c.DB == nil {
		return nil
	}

	if err := c.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	return nil
}
