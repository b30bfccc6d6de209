package model

import (
	"time"

	"github.com/google/uuid"
)

// Package is a published exam bundle a user can attempt.
type Package struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title           string            `gorm:"not null" json:"title"`
	Description     string            `gorm:"type:text" json:"description,omitempty"`
	DurationMinutes int               `gorm:"not null;default:0" json:"duration_minutes"`
	IsActive        bool              `gorm:"not null;default:true" json:"is_active"`
	Questions       []PackageQuestion `gorm:"foreignKey:PackageID" json:"questions,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (Package) TableName() string { return "exam_packages" }
