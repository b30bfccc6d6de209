package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/totosugito/sicerdas-sub001/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TallyDelta is the per-subject or per-tag contribution of one submitted session.
type TallyDelta struct {
	Answered int
	Correct  int
	Wrong    int
}

// GlobalDelta is one submitted session's contribution to the user's global rollup.
type GlobalDelta struct {
	Score    float64
	Answered int
	Correct  int
	Wrong    int
}

// StatsRepository owns the three rollup tables. The two update paths are kept
// as distinct named operations: ApplyXxxDelta increments relative to stored
// values inside the database (safe under concurrent submits), ReplaceXxx
// overwrites with absolute values (reconciliation only). Overloading one
// update function with both semantics is exactly the bug class this split
// guards against.
type StatsRepository interface {
	ApplyGlobalDelta(tx *gorm.DB, userID uuid.UUID, delta GlobalDelta) error
	ApplySubjectDelta(tx *gorm.DB, userID, subjectID uuid.UUID, delta TallyDelta) error
	ApplyTagDelta(tx *gorm.DB, userID, tagID uuid.UUID, delta TallyDelta) error

	ReplaceGlobal(tx *gorm.DB, stats *model.UserStatsGlobal) error
	ReplaceSubject(tx *gorm.DB, stats *model.UserStatsSubject) error
	ReplaceTag(tx *gorm.DB, stats *model.UserStatsTag) error

	FindGlobalByUser(userID uuid.UUID) (*model.UserStatsGlobal, error)
	FindSubjectsByUser(userID uuid.UUID) ([]SubjectStatsRow, error)
	FindTagsByUser(userID uuid.UUID) ([]TagStatsRow, error)
	TopByAverageScore(limit int) ([]model.UserStatsGlobal, error)
}

type SubjectStatsRow struct {
	model.UserStatsSubject
	SubjectName string
}

type TagStatsRow struct {
	model.UserStatsTag
	TagName string
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *statsRepository) ApplyGlobalDelta(tx *gorm.DB, userID uuid.UUID, delta GlobalDelta) error {
	now := time.Now()
	row := model.UserStatsGlobal{
		UserID:                 userID,
		TotalExamsTaken:        1,
		TotalQuestionsAnswered: delta.Answered,
		TotalCorrectAnswers:    delta.Correct,
		TotalWrongAnswers:      delta.Wrong,
		AverageScore:           delta.Score,
		LastActiveAt:           &now,
		UpdatedAt:              now,
	}
	// All SET expressions are evaluated against the pre-update row, so the
	// running mean and the exam-count increment see the same snapshot.
	return r.conn(tx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_exams_taken":        gorm.Expr("exam_user_stats_global.total_exams_taken + 1"),
			"total_questions_answered": gorm.Expr("exam_user_stats_global.total_questions_answered + ?", delta.Answered),
			"total_correct_answers":    gorm.Expr("exam_user_stats_global.total_correct_answers + ?", delta.Correct),
			"total_wrong_answers":      gorm.Expr("exam_user_stats_global.total_wrong_answers + ?", delta.Wrong),
			"average_score":            gorm.Expr("(exam_user_stats_global.average_score * exam_user_stats_global.total_exams_taken + ?) / (exam_user_stats_global.total_exams_taken + 1)", delta.Score),
			"last_active_at":           now,
			"updated_at":               now,
		}),
	}).Create(&row).Error
}

func (r *statsRepository) ApplySubjectDelta(tx *gorm.DB, userID, subjectID uuid.UUID, delta TallyDelta) error {
	now := time.Now()
	row := model.UserStatsSubject{
		UserID:                 userID,
		SubjectID:              subjectID,
		TotalQuestionsAnswered: delta.Answered,
		TotalCorrect:           delta.Correct,
		TotalWrong:             delta.Wrong,
		AccuracyRate:           pooledRate(delta.Correct, delta.Answered),
		UpdatedAt:              now,
	}
	// AccuracyRate is a pooled ratio of the post-increment counters, not a
	// running mean of per-attempt rates.
	return r.conn(tx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "subject_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_questions_answered": gorm.Expr("exam_user_stats_subject.total_questions_answered + ?", delta.Answered),
			"total_correct":            gorm.Expr("exam_user_stats_subject.total_correct + ?", delta.Correct),
			"total_wrong":              gorm.Expr("exam_user_stats_subject.total_wrong + ?", delta.Wrong),
			"accuracy_rate":            gorm.Expr("(exam_user_stats_subject.total_correct + ?)::decimal / nullif(exam_user_stats_subject.total_questions_answered + ?, 0) * 100", delta.Correct, delta.Answered),
			"updated_at":               now,
		}),
	}).Create(&row).Error
}

func (r *statsRepository) ApplyTagDelta(tx *gorm.DB, userID, tagID uuid.UUID, delta TallyDelta) error {
	now := time.Now()
	row := model.UserStatsTag{
		UserID:                 userID,
		TagID:                  tagID,
		TotalQuestionsAnswered: delta.Answered,
		TotalCorrect:           delta.Correct,
		TotalWrong:             delta.Wrong,
		AccuracyRate:           pooledRate(delta.Correct, delta.Answered),
		UpdatedAt:              now,
	}
	return r.conn(tx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "tag_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_questions_answered": gorm.Expr("exam_user_stats_tag.total_questions_answered + ?", delta.Answered),
			"total_correct":            gorm.Expr("exam_user_stats_tag.total_correct + ?", delta.Correct),
			"total_wrong":              gorm.Expr("exam_user_stats_tag.total_wrong + ?", delta.Wrong),
			"accuracy_rate":            gorm.Expr("(exam_user_stats_tag.total_correct + ?)::decimal / nullif(exam_user_stats_tag.total_questions_answered + ?, 0) * 100", delta.Correct, delta.Answered),
			"updated_at":               now,
		}),
	}).Create(&row).Error
}

func (r *statsRepository) ReplaceGlobal(tx *gorm.DB, stats *model.UserStatsGlobal) error {
	stats.UpdatedAt = time.Now()
	return r.conn(tx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_exams_taken", "total_questions_answered", "total_correct_answers",
			"total_wrong_answers", "average_score", "last_active_at", "updated_at",
		}),
	}).Create(stats).Error
}

func (r *statsRepository) ReplaceSubject(tx *gorm.DB, stats *model.UserStatsSubject) error {
	stats.UpdatedAt = time.Now()
	return r.conn(tx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "subject_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_questions_answered", "total_correct", "total_wrong", "accuracy_rate", "updated_at",
		}),
	}).Create(stats).Error
}

func (r *statsRepository) ReplaceTag(tx *gorm.DB, stats *model.UserStatsTag) error {
	stats.UpdatedAt = time.Now()
	return r.conn(tx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "tag_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_questions_answered", "total_correct", "total_wrong", "accuracy_rate", "updated_at",
		}),
	}).Create(stats).Error
}

func (r *statsRepository) FindGlobalByUser(userID uuid.UUID) (*model.UserStatsGlobal, error) {
	var stats model.UserStatsGlobal
	err := r.db.Where("user_id = ?", userID).First(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *statsRepository) FindSubjectsByUser(userID uuid.UUID) ([]SubjectStatsRow, error) {
	var rows []SubjectStatsRow
	err := r.db.Model(&model.UserStatsSubject{}).
		Select("exam_user_stats_subject.*, exam_subjects.name AS subject_name").
		Joins("JOIN exam_subjects ON exam_subjects.id = exam_user_stats_subject.subject_id").
		Where("exam_user_stats_subject.user_id = ?", userID).
		Order("exam_user_stats_subject.accuracy_rate DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepository) FindTagsByUser(userID uuid.UUID) ([]TagStatsRow, error) {
	var rows []TagStatsRow
	err := r.db.Model(&model.UserStatsTag{}).
		Select("exam_user_stats_tag.*, exam_tags.name AS tag_name").
		Joins("JOIN exam_tags ON exam_tags.id = exam_user_stats_tag.tag_id").
		Where("exam_user_stats_tag.user_id = ?", userID).
		Order("exam_user_stats_tag.accuracy_rate DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepository) TopByAverageScore(limit int) ([]model.UserStatsGlobal, error) {
	var rows []model.UserStatsGlobal
	err := r.db.Order("average_score DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func pooledRate(correct, answered int) float64 {
	if answered == 0 {
		return 0
	}
	return float64(correct) / float64(answered) * 100
}
