package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionOption is one multiple-choice alternative. Exactly one option per
// multiple-choice question is marked correct.
type QuestionOption struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (QuestionOption) TableName() string { return "exam_question_options" }
