package repository

import (
	"github.com/google/uuid"
	"github.com/totosugito/sicerdas-sub001/internal/model"
	"gorm.io/gorm"
)

// QuestionRepository is the read-only Question Bank surface the grading path
// depends on: option correctness, tag membership, and option listings.
type QuestionRepository interface {
	FindCorrectOptionIDs(questionIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
	FindTagIDsByQuestionIDs(questionIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)
	FindOptionsByQuestionIDs(questionIDs []uuid.UUID) ([]model.QuestionOption, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) FindCorrectOptionIDs(questionIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	result := make(map[uuid.UUID]uuid.UUID, len(questionIDs))
	if len(questionIDs) == 0 {
		return result, nil
	}
	var options []model.QuestionOption
	err := r.db.Where("question_id IN ? AND is_correct = ?", questionIDs, true).Find(&options).Error
	if err != nil {
		return nil, err
	}
	for _, opt := range options {
		result[opt.QuestionID] = opt.ID
	}
	return result, nil
}

func (r *questionRepository) FindTagIDsByQuestionIDs(questionIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	result := make(map[uuid.UUID][]uuid.UUID, len(questionIDs))
	if len(questionIDs) == 0 {
		return result, nil
	}
	var links []model.QuestionTag
	err := r.db.Where("question_id IN ?", questionIDs).Find(&links).Error
	if err != nil {
		return nil, err
	}
	for _, link := range links {
		result[link.QuestionID] = append(result[link.QuestionID], link.TagID)
	}
	return result, nil
}

func (r *questionRepository) FindOptionsByQuestionIDs(questionIDs []uuid.UUID) ([]model.QuestionOption, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}
	var options []model.QuestionOption
	err := r.db.Where("question_id IN ?", questionIDs).Order("created_at ASC").Find(&options).Error
	return options, err
}
