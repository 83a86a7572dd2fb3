package signature

import (
	"context"
	"fmt"
)

// UnavailableStore stands in for a backend that could not be opened. Every
// call fails with the original cause, so the signature store starts degraded
// instead of taking the session down with it.
type UnavailableStore struct {
	cause error
}

// NewUnavailableStore creates a repository that always fails with cause
func NewUnavailableStore(cause error) *UnavailableStore {
	return &UnavailableStore{cause: cause}
}

// Load always fails
func (s *UnavailableStore) Load(ctx context.Context) (map[string]string, error) {
	return nil, fmt.Errorf("signature backend unavailable: %w", s.cause)
}

// Save always fails
func (s *UnavailableStore) Save(ctx context.Context, signatures map[string]string) error {
	return fmt.Errorf("signature backend unavailable: %w", s.cause)
}
