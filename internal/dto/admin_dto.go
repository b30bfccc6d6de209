package dto

import (
	"time"

	"github.com/google/uuid"
)

// PackageQuestionAssignment places an existing question at a position in a package.
type PackageQuestionAssignment struct {
	QuestionID    uuid.UUID `json:"question_id" binding:"required"`
	QuestionOrder int       `json:"question_order" binding:"required,min=1"`
}

type CreatePackageRequest struct {
	Title           string                      `json:"title" binding:"required"`
	Description     string                      `json:"description"`
	DurationMinutes int                         `json:"duration_minutes" binding:"required,min=1"`
	Questions       []PackageQuestionAssignment `json:"questions" binding:"required,min=1,dive"`
}

type PackageResponseDTO struct {
	ID              uuid.UUID                   `json:"id"`
	Title           string                      `json:"title"`
	Description     string                      `json:"description,omitempty"`
	DurationMinutes int                         `json:"duration_minutes"`
	IsActive        bool                        `json:"is_active"`
	Questions       []PackageQuestionAssignment `json:"questions,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
}
