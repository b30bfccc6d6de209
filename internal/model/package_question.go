package model

import "github.com/google/uuid"

// PackageQuestion assigns a question to a package at a fixed display order.
// The order is snapshotted into each session's answer sheet at start time.
type PackageQuestion struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PackageID     uuid.UUID `gorm:"type:uuid;not null;index" json:"package_id"`
	QuestionID    uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	QuestionOrder int       `gorm:"not null" json:"question_order"`
}

func (PackageQuestion) TableName() string { return "exam_package_questions" }
