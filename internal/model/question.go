package model

import (
	"time"

	"github.com/google/uuid"
)

// Question types. Essay questions carry no answer key and are never auto-graded correct.
const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeEssay          = "essay"
)

type Question struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SubjectID uuid.UUID        `gorm:"type:uuid;not null;index" json:"subject_id"`
	Subject   Subject          `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Type      string           `gorm:"not null;default:'multiple_choice'" json:"type"`
	Content   string           `gorm:"type:text;not null" json:"content"`
	IsActive  bool             `gorm:"not null;default:true" json:"is_active"`
	Options   []QuestionOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (Question) TableName() string { return "exam_questions" }
