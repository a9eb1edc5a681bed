package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"default:user"` // user, admin
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}

// ProgressSnapshot is one serialized LearningProgress stored under Key.
type ProgressSnapshot struct {
	Key       string `gorm:"column:snapshot_key;primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}
