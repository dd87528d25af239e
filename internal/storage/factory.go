package storage

import (
	"GoDrop/config"
	"fmt"
)

// NewFromConfig builds the configured storage backend.
func NewFromConfig(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case config.StorageBackendLocal:
		return NewLocalStorage(cfg.LocalDir)
	case config.StorageBackendMinio:
		return NewMinioStorage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}
