package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/totosugito/sicerdas-sub001/internal/model"
	"gorm.io/gorm"
)

// AnswerGrade carries one graded answer's verdict into the submit transaction.
type AnswerGrade struct {
	AnswerID  uuid.UUID
	IsCorrect bool
}

type SessionAnswerRepository interface {
	FindBySessionID(sessionID uuid.UUID) ([]model.SessionAnswer, error)
	// PartialUpdate overwrites only the supplied columns on the (session,
	// question) answer row; correctness is never among them.
	PartialUpdate(sessionID, questionID uuid.UUID, updates map[string]interface{}) error
	UpdateCorrectness(tx *gorm.DB, grades []AnswerGrade) error
	FindGradedBySessionIDs(sessionIDs []uuid.UUID) ([]model.SessionAnswer, error)
}

type sessionAnswerRepository struct {
	db *gorm.DB
}

func NewSessionAnswerRepository(db *gorm.DB) SessionAnswerRepository {
	return &sessionAnswerRepository{db: db}
}

func (r *sessionAnswerRepository) FindBySessionID(sessionID uuid.UUID) ([]model.SessionAnswer, error) {
	var answers []model.SessionAnswer
	err := r.db.Preload("Question").
		Where("session_id = ?", sessionID).
		Order("question_order ASC").
		Find(&answers).Error
	return answers, err
}

func (r *sessionAnswerRepository) PartialUpdate(sessionID, questionID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.Model(&model.SessionAnswer{}).
		Where("session_id = ? AND question_id = ?", sessionID, questionID).
		Updates(updates).Error
}

func (r *sessionAnswerRepository) UpdateCorrectness(tx *gorm.DB, grades []AnswerGrade) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	now := time.Now()
	for _, g := range grades {
		err := db.Model(&model.SessionAnswer{}).
			Where("id = ?", g.AnswerID).
			Updates(map[string]interface{}{"is_correct": g.IsCorrect, "updated_at": now}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *sessionAnswerRepository) FindGradedBySessionIDs(sessionIDs []uuid.UUID) ([]model.SessionAnswer, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	var answers []model.SessionAnswer
	err := r.db.Preload("Question").
		Where("session_id IN ? AND is_correct IS NOT NULL", sessionIDs).
		Find(&answers).Error
	return answers, err
}
