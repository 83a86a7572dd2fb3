package signature

import (
	"context"
	"sync"
)

// MemoryStore keeps signatures in process memory only
type MemoryStore struct {
	mu         sync.RWMutex
	signatures map[string]string
}

// NewMemoryStore creates a new in-memory signature repository
func NewMemoryStore(initial map[string]string) *MemoryStore {
	return &MemoryStore{signatures: copyMap(initial)}
}

// Load returns a copy of the stored mapping
func (s *MemoryStore) Load(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMap(s.signatures), nil
}

// Save replaces the stored mapping
func (s *MemoryStore) Save(ctx context.Context, signatures map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signatures = copyMap(signatures)
	return nil
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
