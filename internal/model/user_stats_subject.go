package model

import (
	"time"

	"github.com/google/uuid"
)

// UserStatsSubject tracks a user's accuracy within one subject. AccuracyRate
// is the pooled ratio total_correct/total_questions_answered*100, always
// recomputable from the counters.
type UserStatsSubject struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID                 uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_subject" json:"user_id"`
	SubjectID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_subject" json:"subject_id"`
	TotalQuestionsAnswered int       `gorm:"not null;default:0" json:"total_questions_answered"`
	TotalCorrect           int       `gorm:"not null;default:0" json:"total_correct"`
	TotalWrong             int       `gorm:"not null;default:0" json:"total_wrong"`
	AccuracyRate           float64   `gorm:"not null;default:0" json:"accuracy_rate"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (UserStatsSubject) TableName() string { return "exam_user_stats_subject" }
