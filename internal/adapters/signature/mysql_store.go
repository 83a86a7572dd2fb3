package signature

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the SignatureRepository interface
type MySQLStore struct {
	sqlStore
}

// NewMySQLStore connects to MySQL and creates the table if needed
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS signatures (
			name VARCHAR(255) NOT NULL PRIMARY KEY,
			body TEXT NOT NULL
		) CHARACTER SET utf8mb4
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{sqlStore{db: db, logger: logger, driver: "mysql"}}, nil
}

// Load returns every stored signature
func (s *MySQLStore) Load(ctx context.Context) (map[string]string, error) {
	return s.load(ctx)
}

// Save replaces the stored signatures
func (s *MySQLStore) Save(ctx context.Context, signatures map[string]string) error {
	return s.save(ctx, signatures)
}
