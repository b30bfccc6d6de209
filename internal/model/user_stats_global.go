package model

import (
	"time"

	"github.com/google/uuid"
)

// UserStatsGlobal is the per-user dashboard rollup across all completed exams.
// AverageScore is the running mean of per-attempt scores, not a per-question
// ratio. Written incrementally on submit and rebuilt by reconciliation.
type UserStatsGlobal struct {
	UserID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	TotalExamsTaken        int        `gorm:"not null;default:0" json:"total_exams_taken"`
	TotalQuestionsAnswered int        `gorm:"not null;default:0" json:"total_questions_answered"`
	TotalCorrectAnswers    int        `gorm:"not null;default:0" json:"total_correct_answers"`
	TotalWrongAnswers      int        `gorm:"not null;default:0" json:"total_wrong_answers"`
	AverageScore           float64    `gorm:"not null;default:0" json:"average_score"`
	LastActiveAt           *time.Time `json:"last_active_at,omitempty"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

func (UserStatsGlobal) TableName() string { return "exam_user_stats_global" }
