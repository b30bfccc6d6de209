package model

import (
	"time"

	"github.com/google/uuid"
)

// Subject is the top-level knowledge area a question belongs to (e.g. "Math").
type Subject struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subject) TableName() string { return "exam_subjects" }
