package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SessionAnswer is one row of a session's answer sheet: exactly one per
// (session, question), pre-created at start with the package's question order.
// IsCorrect stays nil until the session is submitted and is immutable after.
type SessionAnswer struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SessionID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"session_id"`
	QuestionID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"question_id"`
	Question         Question       `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	QuestionOrder    int            `gorm:"not null" json:"question_order"`
	SelectedOptionID *uuid.UUID     `gorm:"type:uuid" json:"selected_option_id,omitempty"`
	TextAnswer       datatypes.JSON `gorm:"type:jsonb" json:"text_answer,omitempty"`
	IsCorrect        *bool          `json:"is_correct,omitempty"`
	IsDoubtful       bool           `gorm:"not null;default:false" json:"is_doubtful"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (SessionAnswer) TableName() string { return "exam_session_answers" }
