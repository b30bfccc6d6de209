package model

import (
	"time"

	"github.com/google/uuid"
)

// Session statuses. A session only ever moves in_progress -> completed or
// in_progress -> abandoned; terminal states are never left.
const (
	SessionStatusInProgress = "in_progress"
	SessionStatusCompleted  = "completed"
	SessionStatusAbandoned  = "abandoned"
)

// Session is one timed attempt by a user on an exam package. It acts as a
// stopwatch and, once submitted, the final score record.
type Session struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	PackageID uuid.UUID       `gorm:"type:uuid;not null;index" json:"package_id"`
	Package   Package         `gorm:"foreignKey:PackageID" json:"package,omitempty"`
	Status    string          `gorm:"not null;default:'in_progress';index" json:"status"`
	StartTime time.Time       `gorm:"not null;autoCreateTime" json:"start_time"`
	EndTime   *time.Time      `json:"end_time,omitempty"`
	Score     *float64        `json:"score,omitempty"`
	Answers   []SessionAnswer `gorm:"foreignKey:SessionID" json:"answers,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Session) TableName() string { return "exam_sessions" }
