package dto

import (
	"time"

	"github.com/google/uuid"
)

type GlobalStatsDTO struct {
	UserID                 uuid.UUID  `json:"user_id"`
	TotalExamsTaken        int        `json:"total_exams_taken"`
	TotalQuestionsAnswered int        `json:"total_questions_answered"`
	TotalCorrectAnswers    int        `json:"total_correct_answers"`
	TotalWrongAnswers      int        `json:"total_wrong_answers"`
	AverageScore           float64    `json:"average_score"`
	LastActiveAt           *time.Time `json:"last_active_at,omitempty"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

type SubjectStatsDTO struct {
	SubjectID              uuid.UUID `json:"subject_id"`
	SubjectName            string    `json:"subject_name"`
	TotalQuestionsAnswered int       `json:"total_questions_answered"`
	TotalCorrect           int       `json:"total_correct"`
	TotalWrong             int       `json:"total_wrong"`
	AccuracyRate           float64   `json:"accuracy_rate"`
	UpdatedAt              time.Time `json:"updated_at"`
}

type TagStatsDTO struct {
	TagID                  uuid.UUID `json:"tag_id"`
	TagName                string    `json:"tag_name"`
	TotalQuestionsAnswered int       `json:"total_questions_answered"`
	TotalCorrect           int       `json:"total_correct"`
	TotalWrong             int       `json:"total_wrong"`
	AccuracyRate           float64   `json:"accuracy_rate"`
	UpdatedAt              time.Time `json:"updated_at"`
}

type LeaderboardEntryDTO struct {
	Rank            int       `json:"rank"`
	UserID          uuid.UUID `json:"user_id"`
	AverageScore    float64   `json:"average_score"`
	TotalExamsTaken int       `json:"total_exams_taken"`
}

// ReconcileResultDTO summarizes one reconciliation run.
type ReconcileResultDTO struct {
	UsersProcessed int `json:"users_processed"`
	UsersFailed    int `json:"users_failed"`
}
