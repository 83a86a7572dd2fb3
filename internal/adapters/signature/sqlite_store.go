package signature

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the SignatureRepository interface
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore opens the database and creates the table if needed
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS signatures (
			name TEXT PRIMARY KEY,
			body TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteStore{sqlStore{db: db, logger: logger, driver: "sqlite3"}}, nil
}

// Load returns every stored signature
func (s *SQLiteStore) Load(ctx context.Context) (map[string]string, error) {
	return s.load(ctx)
}

// Save replaces the stored signatures
func (s *SQLiteStore) Save(ctx context.Context, signatures map[string]string) error {
	return s.save(ctx, signatures)
}
