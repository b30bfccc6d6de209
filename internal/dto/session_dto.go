package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StartSessionRequest opens a new attempt on an exam package.
type StartSessionRequest struct {
	PackageID uuid.UUID `json:"package_id" binding:"required"`
}

type StartSessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
}

// OptionalUUID distinguishes an absent field from an explicit JSON null.
// Absent leaves the stored value alone; null clears it.
type OptionalUUID struct {
	Set   bool
	Value *uuid.UUID
}

func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o OptionalUUID) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

// SaveAnswerRequest auto-saves one answer row. Only the fields present in the
// payload are written; absent fields keep their stored value, and an explicit
// null clears the selection or text back to blank.
type SaveAnswerRequest struct {
	SessionID        uuid.UUID      `json:"session_id" binding:"required"`
	QuestionID       uuid.UUID      `json:"question_id" binding:"required"`
	SelectedOptionID OptionalUUID   `json:"selected_option_id"`
	TextAnswer       datatypes.JSON `json:"text_answer,omitempty"`
	IsDoubtful       *bool          `json:"is_doubtful,omitempty"`
}

type SubmitSessionResponse struct {
	Score          float64 `json:"score"`
	TotalCorrect   int     `json:"total_correct"`
	TotalQuestions int     `json:"total_questions"`
}

// OptionDTO deliberately omits correctness; the answer key never leaves the server.
type OptionDTO struct {
	ID      uuid.UUID `json:"id"`
	Content string    `json:"content"`
}

type AnswerQuestionDTO struct {
	Content string      `json:"content"`
	Type    string      `json:"type"`
	Options []OptionDTO `json:"options"`
}

type SessionAnswerDTO struct {
	QuestionID       uuid.UUID         `json:"question_id"`
	QuestionOrder    int               `json:"question_order"`
	IsDoubtful       bool              `json:"is_doubtful"`
	SelectedOptionID *uuid.UUID        `json:"selected_option_id"`
	TextAnswer       datatypes.JSON    `json:"text_answer,omitempty"`
	Question         AnswerQuestionDTO `json:"question"`
}

type SessionInfoDTO struct {
	ID              uuid.UUID  `json:"id"`
	Status          string     `json:"status"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	Score           *float64   `json:"score,omitempty"`
	PackageTitle    string     `json:"package_title"`
	DurationMinutes int        `json:"duration_minutes"`
}

// SessionDetailDTO is the full answer-sheet projection, ordered by the
// question order snapshotted at start.
type SessionDetailDTO struct {
	Session SessionInfoDTO     `json:"session"`
	Answers []SessionAnswerDTO `json:"answers"`
}
