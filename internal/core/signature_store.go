package core

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// SignatureStore caches the signature mapping held by a SignatureRepository.
// Every mutation writes the whole mapping and then reloads it, so after a
// successful call the cache matches what the repository returned.
type SignatureStore struct {
	repo   SignatureRepository
	logger *zap.Logger

	mu         sync.Mutex
	signatures map[string]string
	// degraded holds the read error that emptied the cache; mutations are
	// refused while it is set so a malformed backing store is never overwritten
	degraded *StorageReadError
}

// NewSignatureStore creates a store with an empty cache. Call Load to fill it.
func NewSignatureStore(repo SignatureRepository, logger *zap.Logger) *SignatureStore {
	return &SignatureStore{
		repo:       repo,
		logger:     logger,
		signatures: make(map[string]string),
	}
}

// OpenSignatureStore creates a store and loads it. A read failure is returned
// alongside a usable, degraded store.
func OpenSignatureStore(ctx context.Context, repo SignatureRepository, logger *zap.Logger) (*SignatureStore, error) {
	store := NewSignatureStore(repo, logger)
	_, err := store.Load(ctx)
	return store, err
}

// Load reloads the mapping from the repository
func (s *SignatureStore) Load(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reloadLocked(ctx)
}

// Upsert sets name to the trimmed body, persists and reloads
func (s *SignatureStore) Upsert(ctx context.Context, name, body string) (map[string]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "signature name", Reason: "cannot be empty"}
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &ValidationError{Field: "signature content", Reason: "cannot be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.degraded != nil {
		return nil, s.degraded
	}

	next := cloneSignatures(s.signatures)
	next[name] = body
	confirmed, err := s.persistLocked(ctx, next)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Signature saved", zap.String("name", name))
	return confirmed, nil
}

// Delete removes name, persists and reloads
func (s *SignatureStore) Delete(ctx context.Context, name string) (map[string]string, error) {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.degraded != nil {
		return nil, s.degraded
	}
	if _, ok := s.signatures[name]; !ok {
		return nil, &NotFoundError{Name: name}
	}

	next := cloneSignatures(s.signatures)
	delete(next, name)
	confirmed, err := s.persistLocked(ctx, next)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Signature deleted", zap.String("name", name))
	return confirmed, nil
}

// Get returns the cached body for name
func (s *SignatureStore) Get(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, ok := s.signatures[name]
	return body, ok
}

// Names returns the cached signature names in sorted order
func (s *SignatureStore) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.signatures))
	for name := range s.signatures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns a copy of the cached mapping
func (s *SignatureStore) All() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneSignatures(s.signatures)
}

// Degraded returns the read error that disabled mutations, or nil
func (s *SignatureStore) Degraded() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.degraded == nil {
		return nil
	}
	return s.degraded
}

func (s *SignatureStore) persistLocked(ctx context.Context, next map[string]string) (map[string]string, error) {
	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.Error("Failed to save signatures", zap.Error(err))
		return nil, &StorageWriteError{Err: err}
	}
	return s.reloadLocked(ctx)
}

func (s *SignatureStore) reloadLocked(ctx context.Context) (map[string]string, error) {
	loaded, err := s.repo.Load(ctx)
	if err != nil {
		readErr := &StorageReadError{Err: err}
		s.signatures = make(map[string]string)
		s.degraded = readErr
		s.logger.Error("Failed to load signatures, continuing without them", zap.Error(err))
		return cloneSignatures(s.signatures), readErr
	}

	if loaded == nil {
		loaded = make(map[string]string)
	}
	s.signatures = loaded
	s.degraded = nil
	s.logger.Debug("Signatures loaded", zap.Int("count", len(loaded)))

	return cloneSignatures(loaded), nil
}

func cloneSignatures(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for name, body := range src {
		dst[name] = body
	}
	return dst
}
