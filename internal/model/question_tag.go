package model

import "github.com/google/uuid"

// QuestionTag links a question to a tag (many-to-many).
type QuestionTag struct {
	QuestionID uuid.UUID `gorm:"type:uuid;primaryKey" json:"question_id"`
	TagID      uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"tag_id"`
}

func (QuestionTag) TableName() string { return "exam_question_tags" }
