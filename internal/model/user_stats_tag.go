package model

import (
	"time"

	"github.com/google/uuid"
)

// UserStatsTag is the same rollup shape as UserStatsSubject, keyed by tag.
// One question can feed several tag rows (many-to-many).
type UserStatsTag struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID                 uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_tag" json:"user_id"`
	TagID                  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_tag" json:"tag_id"`
	TotalQuestionsAnswered int       `gorm:"not null;default:0" json:"total_questions_answered"`
	TotalCorrect           int       `gorm:"not null;default:0" json:"total_correct"`
	TotalWrong             int       `gorm:"not null;default:0" json:"total_wrong"`
	AccuracyRate           float64   `gorm:"not null;default:0" json:"accuracy_rate"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (UserStatsTag) TableName() string { return "exam_user_stats_tag" }
