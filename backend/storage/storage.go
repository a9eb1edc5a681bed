// Package storage provides the string-keyed slots progress snapshots are
// persisted in.
package storage

import (
	"context"
	"errors"
	"fmt"

	"progresstracker/backend/config"
	"progresstracker/backend/utils"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned by Get when nothing is stored under the key.
	ErrNotFound = errors.New("storage: key not found")
	// ErrUnavailable means the backend cannot be reached or is disabled.
	ErrUnavailable = errors.New("storage: backend unavailable")
)

// Storage is a synchronous string key/value slot store. A single writer per
// key is assumed; concurrent writers to one key get last-write-wins.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// New builds the backend named by cfg.StorageBackend. When the backend
// cannot be initialised it logs the failure and returns Unavailable, so
// callers keep working in memory.
func New(cfg *config.Config, db *gorm.DB, logger *utils.Logger) Storage {
	st, err := open(cfg, db)
	if err != nil {
		logger.Error("progress storage unavailable, falling back to in-memory state",
			"backend", cfg.StorageBackend, "error", err)
		return Unavailable{}
	}
	logger.Info("progress storage ready", "backend", cfg.StorageBackend)
	return st
}

func open(cfg *config.Config, db *gorm.DB) (Storage, error) {
	switch cfg.StorageBackend {
	case "database":
		if db == nil {
			return nil, fmt.Errorf("database backend: %w", ErrUnavailable)
		}
		return NewGormStorage(db)
	case "file":
		return NewFileStorage(cfg.StorageDir)
	case "redis":
		return NewRedisStorage(cfg.RedisAddr, cfg.RedisPrefix)
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// Unavailable models disabled storage: every call fails with ErrUnavailable.
type Unavailable struct{}

func (Unavailable) Get(context.Context, string) (string, error) { return "", ErrUnavailable }
func (Unavailable) Set(context.Context, string, string) error   { return ErrUnavailable }
func (Unavailable) Delete(context.Context, string) error        { return ErrUnavailable }
