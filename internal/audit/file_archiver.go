package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// fileArchiver writes payloads to a local directory. The default backend for
// single-node deployments and local development.
type fileArchiver struct {
	dir    string
	logger zerolog.Logger
}

// NewFileArchiver creates an archiver writing under dir, creating it if
// needed.
func NewFileArchiver(dir string, logger zerolog.Logger) (Archiver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory %s: %w", dir, err)
	}

	return &fileArchiver{
		dir:    dir,
		logger: logger.With().Str("component", "file-archiver").Logger(),
	}, nil
}

func (a *fileArchiver) Archive(ctx context.Context, key string, payload []byte) error {
	path := filepath.Join(a.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create archive subdirectory: %w", err)
	}

	if err := os.WriteFile(path, payload, 0o644); err != nil {
		a.logger.Error().Err(err).Str("key", key).Msg("failed to write archive file")
		return fmt.Errorf("failed to write archive file %s: %w", key, err)
	}

	a.logger.Debug().Str("key", key).Int("bytes", len(payload)).Msg("callback payload archived")
	return nil
}
