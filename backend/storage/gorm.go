package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"progresstracker/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStorage stores snapshots in the progress_snapshots table.
type GormStorage struct {
	DB *gorm.DB
}

func NewGormStorage(db *gorm.DB) (*GormStorage, error) {
	if err := db.AutoMigrate(&models.ProgressSnapshot{}); err != nil {
		return nil, fmt.Errorf("migrate progress snapshots: %w", errors.Join(ErrUnavailable, err))
	}
	return &GormStorage{DB: db}, nil
}

func (g *GormStorage) Get(ctx context.Context, key string) (string, error) {
	var snap models.ProgressSnapshot
	err := g.DB.WithContext(ctx).Where("snapshot_key = ?", key).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load snapshot %q: %w", key, errors.Join(ErrUnavailable, err))
	}
	return snap.Value, nil
}

func (g *GormStorage) Set(ctx context.Context, key, value string) error {
	snap := models.ProgressSnapshot{Key: key, Value: value, UpdatedAt: time.Now()}
	err := g.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "snapshot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&snap).Error
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", key, errors.Join(ErrUnavailable, err))
	}
	return nil
}

func (g *GormStorage) Delete(ctx context.Context, key string) error {
	err := g.DB.WithContext(ctx).Where("snapshot_key = ?", key).Delete(&models.ProgressSnapshot{}).Error
	if err != nil {
		return fmt.Errorf("delete snapshot %q: %w", key, errors.Join(ErrUnavailable, err))
	}
	return nil
}
