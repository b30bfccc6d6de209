package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/totosugito/sicerdas-sub001/internal/dto"
	"github.com/totosugito/sicerdas-sub001/internal/model"
	"github.com/totosugito/sicerdas-sub001/internal/repository"
	"gorm.io/gorm"
)

// ReconcileService is the batch repair path: it rebuilds every rollup row
// from the raw session/answer history and overwrites the incrementally
// maintained values. Because it writes with replace semantics it corrects
// drift from partial failures instead of compounding it, and running it twice
// in a row is a no-op.
type ReconcileService interface {
	Run(ctx context.Context) (*dto.ReconcileResultDTO, error)
}

type reconcileService struct {
	sessionRepo  repository.SessionRepository
	answerRepo   repository.SessionAnswerRepository
	questionRepo repository.QuestionRepository
	statsRepo    repository.StatsRepository
	db           Transactor
}

func NewReconcileService(
	sessionRepo repository.SessionRepository,
	answerRepo repository.SessionAnswerRepository,
	questionRepo repository.QuestionRepository,
	statsRepo repository.StatsRepository,
	db Transactor,
) ReconcileService {
	return &reconcileService{
		sessionRepo:  sessionRepo,
		answerRepo:   answerRepo,
		questionRepo: questionRepo,
		statsRepo:    statsRepo,
		db:           db,
	}
}

// Run recomputes stats user by user, one transaction per user to bound lock
// duration. A failure on one user is logged and skipped; the rest of the run
// continues.
func (s *reconcileService) Run(ctx context.Context) (*dto.ReconcileResultDTO, error) {
	userIDs, err := s.sessionRepo.ListUserIDs()
	if err != nil {
		return nil, fmt.Errorf("listing users for reconciliation: %w", err)
	}
	log.Info().Int("userCount", len(userIDs)).Msg("Stats reconciliation started")

	result := dto.ReconcileResultDTO{}
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return &result, err
		}
		if err := s.reconcileUser(userID); err != nil {
			result.UsersFailed++
			log.Error().Err(err).Str("userID", userID.String()).Msg("Reconciliation failed for user")
			continue
		}
		result.UsersProcessed++
	}

	log.Info().Int("processed", result.UsersProcessed).Int("failed", result.UsersFailed).
		Msg("Stats reconciliation finished")
	return &result, nil
}

func (s *reconcileService) reconcileUser(userID uuid.UUID) error {
	sessions, err := s.sessionRepo.FindByUser(userID)
	if err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}

	completedIDs := make([]uuid.UUID, 0, len(sessions))
	for _, sess := range sessions {
		if sess.Status == model.SessionStatusCompleted {
			completedIDs = append(completedIDs, sess.ID)
		}
	}
	answers, err := s.answerRepo.FindGradedBySessionIDs(completedIDs)
	if err != nil {
		return fmt.Errorf("loading graded answers: %w", err)
	}

	questionIDs := make([]uuid.UUID, 0, len(answers))
	for _, a := range answers {
		questionIDs = append(questionIDs, a.QuestionID)
	}
	questionTags, err := s.questionRepo.FindTagIDsByQuestionIDs(questionIDs)
	if err != nil {
		return fmt.Errorf("loading question tags: %w", err)
	}

	rebuilt := rebuildUserStats(userID, sessions, answers, questionTags)

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.statsRepo.ReplaceGlobal(tx, &rebuilt.Global); err != nil {
			return fmt.Errorf("replacing global stats: %w", err)
		}
		for i := range rebuilt.Subjects {
			if err := s.statsRepo.ReplaceSubject(tx, &rebuilt.Subjects[i]); err != nil {
				return fmt.Errorf("replacing subject stats: %w", err)
			}
		}
		for i := range rebuilt.Tags {
			if err := s.statsRepo.ReplaceTag(tx, &rebuilt.Tags[i]); err != nil {
				return fmt.Errorf("replacing tag stats: %w", err)
			}
		}
		return nil
	})
}

// rebuiltStats is a full recomputation of one user's rollups from history.
type rebuiltStats struct {
	Global   model.UserStatsGlobal
	Subjects []model.UserStatsSubject
	Tags     []model.UserStatsTag
}

// rebuildUserStats is a pure function of the session/answer history: exams
// taken is the count of completed sessions, the average is the mean of their
// stored scores, and the counters are tallied over graded answers of
// completed sessions only, so in-progress work never leaks into the rollups.
func rebuildUserStats(userID uuid.UUID, sessions []model.Session, answers []model.SessionAnswer, questionTags map[uuid.UUID][]uuid.UUID) rebuiltStats {
	global := model.UserStatsGlobal{UserID: userID}

	var scoreSum float64
	var lastActive time.Time
	for _, sess := range sessions {
		if sess.UpdatedAt.After(lastActive) {
			lastActive = sess.UpdatedAt
		}
		if sess.Status != model.SessionStatusCompleted {
			continue
		}
		global.TotalExamsTaken++
		if sess.Score != nil {
			scoreSum += *sess.Score
		}
	}
	if global.TotalExamsTaken > 0 {
		global.AverageScore = scoreSum / float64(global.TotalExamsTaken)
	}
	if !lastActive.IsZero() {
		global.LastActiveAt = &lastActive
	}

	subjectTallies := make(map[uuid.UUID]repository.TallyDelta)
	tagTallies := make(map[uuid.UUID]repository.TallyDelta)
	for _, a := range answers {
		correct := a.IsCorrect != nil && *a.IsCorrect
		global.TotalQuestionsAnswered++
		if correct {
			global.TotalCorrectAnswers++
		} else {
			global.TotalWrongAnswers++
		}

		subjectTally := subjectTallies[a.Question.SubjectID]
		applyTally(&subjectTally, correct)
		subjectTallies[a.Question.SubjectID] = subjectTally

		for _, tagID := range questionTags[a.QuestionID] {
			tagTally := tagTallies[tagID]
			applyTally(&tagTally, correct)
			tagTallies[tagID] = tagTally
		}
	}

	result := rebuiltStats{Global: global}
	for subjectID, tally := range subjectTallies {
		result.Subjects = append(result.Subjects, model.UserStatsSubject{
			UserID:                 userID,
			SubjectID:              subjectID,
			TotalQuestionsAnswered: tally.Answered,
			TotalCorrect:           tally.Correct,
			TotalWrong:             tally.Wrong,
			AccuracyRate:           accuracyRate(tally),
		})
	}
	for tagID, tally := range tagTallies {
		result.Tags = append(result.Tags, model.UserStatsTag{
			UserID:                 userID,
			TagID:                  tagID,
			TotalQuestionsAnswered: tally.Answered,
			TotalCorrect:           tally.Correct,
			TotalWrong:             tally.Wrong,
			AccuracyRate:           accuracyRate(tally),
		})
	}
	return result
}

func accuracyRate(t repository.TallyDelta) float64 {
	if t.Answered == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Answered) * 100
}
