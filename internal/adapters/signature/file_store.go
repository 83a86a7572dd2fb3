package signature

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FileStore persists signatures as a single JSON or YAML document. The format
// follows the file extension; anything other than .yaml or .yml is JSON.
type FileStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileStore creates a new file backed signature repository
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// String returns the backing file path
func (s *FileStore) String() string {
	return s.path
}

func (s *FileStore) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(s.path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads the signature mapping. A missing or empty file is an empty mapping.
func (s *FileStore) Load(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("Signature file does not exist yet", zap.String("path", s.path))
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read signature file: %w", err)
	}

	signatures := map[string]string{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return signatures, nil
	}

	if s.isYAML() {
		err = yaml.Unmarshal(data, &signatures)
	} else {
		err = json.Unmarshal(data, &signatures)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse signature file %s: %w", s.path, err)
	}

	// A literal null document decodes into a nil map
	if signatures == nil {
		signatures = map[string]string{}
	}
	return signatures, nil
}

// Save replaces the file contents atomically with the given mapping
func (s *FileStore) Save(ctx context.Context, signatures map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if signatures == nil {
		signatures = map[string]string{}
	}

	var (
		data []byte
		err  error
	)
	if s.isYAML() {
		data, err = yaml.Marshal(signatures)
	} else {
		data, err = json.MarshalIndent(signatures, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode signatures: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create signature directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary signature file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write signature file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set signature file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close signature file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace signature file: %w", err)
	}

	s.logger.Debug("Signatures written",
		zap.String("path", s.path),
		zap.Int("count", len(signatures)))
	return nil
}
