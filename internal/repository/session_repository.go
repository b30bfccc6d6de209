package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/totosugito/sicerdas-sub001/internal/model"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(session *model.Session) error
	FindByIDAndUser(id, userID uuid.UUID) (*model.Session, error)
	FindByIDAndUserWithPackage(id, userID uuid.UUID) (*model.Session, error)
	// Finalize closes a session with a conditional update guarded on
	// status = in_progress. Returns gorm.ErrRecordNotFound when the guard
	// does not match, so a concurrent double-submit loses cleanly.
	Finalize(tx *gorm.DB, id uuid.UUID, status string, endTime time.Time, score *float64) error
	ListUserIDs() ([]uuid.UUID, error)
	FindByUser(userID uuid.UUID) ([]model.Session, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *model.Session) error {
	// GORM creates the pre-populated answer sheet rows alongside the session
	// in a single transaction when session.Answers is set.
	return r.db.Create(session).Error
}

func (r *sessionRepository) FindByIDAndUser(id, userID uuid.UUID) (*model.Session, error) {
	var session model.Session
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) FindByIDAndUserWithPackage(id, userID uuid.UUID) (*model.Session, error) {
	var session model.Session
	err := r.db.Preload("Package").
		Where("id = ? AND user_id = ?", id, userID).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Finalize(tx *gorm.DB, id uuid.UUID, status string, endTime time.Time, score *float64) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	updates := map[string]interface{}{
		"status":     status,
		"end_time":   endTime,
		"updated_at": time.Now(),
	}
	if score != nil {
		updates["score"] = *score
	}
	res := db.Model(&model.Session{}).
		Where("id = ? AND status = ?", id, model.SessionStatusInProgress).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *sessionRepository) ListUserIDs() ([]uuid.UUID, error) {
	var userIDs []uuid.UUID
	err := r.db.Model(&model.Session{}).Distinct("user_id").Pluck("user_id", &userIDs).Error
	return userIDs, err
}

func (r *sessionRepository) FindByUser(userID uuid.UUID) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.Where("user_id = ?", userID).Order("start_time ASC").Find(&sessions).Error
	return sessions, err
}
