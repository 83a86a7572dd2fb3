package signature

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PgxPool is the subset of *pgxpool.Pool used by PostgresStore
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresStore is a PostgreSQL implementation of the SignatureRepository interface
type PostgresStore struct {
	pool   PgxPool
	logger *zap.Logger
}

// NewPostgresStore connects to PostgreSQL and creates the table if needed
func NewPostgresStore(ctx context.Context, connString string, logger *zap.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS signatures (
			name TEXT PRIMARY KEY,
			body TEXT NOT NULL
		)
	`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return NewPostgresStoreWithPool(pool, logger), nil
}

// NewPostgresStoreWithPool wraps an existing pool whose table already exists
func NewPostgresStoreWithPool(pool PgxPool, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: logger}
}

// Load returns every stored signature
func (s *PostgresStore) Load(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, body FROM signatures`)
	if err != nil {
		return nil, fmt.Errorf("failed to query signatures: %w", err)
	}
	defer rows.Close()

	signatures := map[string]string{}
	for rows.Next() {
		var name, body string
		if err := rows.Scan(&name, &body); err != nil {
			return nil, fmt.Errorf("failed to scan signature row: %w", err)
		}
		signatures[name] = body
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read signature rows: %w", err)
	}
	return signatures, nil
}

// Save replaces the stored signatures in one transaction
func (s *PostgresStore) Save(ctx context.Context, signatures map[string]string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM signatures`); err != nil {
		return fmt.Errorf("failed to clear signatures: %w", err)
	}

	for name, body := range signatures {
		if _, err := tx.Exec(ctx, `INSERT INTO signatures (name, body) VALUES ($1, $2)`, name, body); err != nil {
			return fmt.Errorf("failed to insert signature %q: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit signatures: %w", err)
	}

	s.logger.Debug("Signatures written",
		zap.String("driver", "postgres"),
		zap.Int("count", len(signatures)))
	return nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
