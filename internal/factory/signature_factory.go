package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/llm-email-assistant/internal/adapters/signature"
	"github.com/mikey/llm-email-assistant/internal/config"
	"github.com/mikey/llm-email-assistant/internal/core"
	"go.uber.org/zap"
)

// SignatureFactory creates signature repositories based on configuration
type SignatureFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSignatureFactory creates a new signature factory
func NewSignatureFactory(cfg *config.Config, logger *zap.Logger) *SignatureFactory {
	return &SignatureFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSignatureRepository creates the configured signature backend. Backends
// holding connections also implement io.Closer.
func (f *SignatureFactory) CreateSignatureRepository(ctx context.Context) (core.SignatureRepository, error) {
	sigCfg := f.cfg.GetSignatures()

	f.logger.Debug("Creating signature repository", zap.String("type", sigCfg.Type))

	switch sigCfg.Type {
	case "file", "":
		return signature.NewFileStore(sigCfg.Path, f.logger), nil
	case "memory":
		return signature.NewMemoryStore(nil), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(sigCfg.SQLitePath), 0700); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return signature.NewSQLiteStore(sigCfg.SQLitePath, f.logger)
	case "mysql":
		if sigCfg.MySQLDSN == "" {
			return nil, fmt.Errorf("signatures.mysql_dsn is required for the mysql backend")
		}
		return signature.NewMySQLStore(sigCfg.MySQLDSN, f.logger)
	case "postgres":
		if sigCfg.PostgresDSN == "" {
			return nil, fmt.Errorf("signatures.postgres_dsn is required for the postgres backend")
		}
		return signature.NewPostgresStore(ctx, sigCfg.PostgresDSN, f.logger)
	case "redis":
		return signature.NewRedisStore(ctx, sigCfg.RedisURL, sigCfg.RedisKey, f.logger)
	default:
		return nil, fmt.Errorf("unsupported signature store type: %s", sigCfg.Type)
	}
}
