package signature

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// sqlStore holds the queries shared by the database/sql backends. Both
// drivers use '?' placeholders.
type sqlStore struct {
	db     *sql.DB
	logger *zap.Logger
	driver string
}

func (s *sqlStore) load(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, body FROM signatures`)
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

// save replaces the table contents in one transaction
func (s *sqlStore) save(ctx context.Context, signatures map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM signatures`); err != nil {
		return fmt.Errorf("failed to clear signatures: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO signatures (name, body) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for name, body := range signatures {
		if _, err := stmt.ExecContext(ctx, name, body); err != nil {
			return fmt.Errorf("failed to insert signature %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit signatures: %w", err)
	}

	s.logger.Debug("Signatures written",
		zap.String("driver", s.driver),
		zap.Int("count", len(signatures)))
	return nil
}

// Close closes the database connection
func (s *sqlStore) Close() error {
	return s.db.Close()
}
