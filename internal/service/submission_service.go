package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/totosugito/sicerdas-sub001/internal/dto"
	"github.com/totosugito/sicerdas-sub001/internal/model"
	"github.com/totosugito/sicerdas-sub001/internal/repository"
	"gorm.io/gorm"
)

// SubmissionService grades a session exactly once and feeds the result into
// the rolling statistics.
type SubmissionService interface {
	SubmitSession(userID, sessionID uuid.UUID) (*dto.SubmitSessionResponse, error)
}

type submissionService struct {
	sessionRepo  repository.SessionRepository
	answerRepo   repository.SessionAnswerRepository
	questionRepo repository.QuestionRepository
	statsRepo    repository.StatsRepository
	db           Transactor
}

func NewSubmissionService(
	sessionRepo repository.SessionRepository,
	answerRepo repository.SessionAnswerRepository,
	questionRepo repository.QuestionRepository,
	statsRepo repository.StatsRepository,
	db Transactor,
) SubmissionService {
	return &submissionService{
		sessionRepo:  sessionRepo,
		answerRepo:   answerRepo,
		questionRepo: questionRepo,
		statsRepo:    statsRepo,
		db:           db,
	}
}

// SubmitSession runs the whole terminal transition in one transaction:
// persist per-answer verdicts, apply the three-tier stats deltas, and close
// the session. Re-submitting a closed session is rejected by the status
// guard, never re-scored.
func (s *submissionService) SubmitSession(userID, sessionID uuid.UUID) (*dto.SubmitSessionResponse, error) {
	session, err := s.sessionRepo.FindByIDAndUser(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	if session.Status != model.SessionStatusInProgress {
		return nil, ErrAlreadySubmitted
	}

	answers, err := s.answerRepo.FindBySessionID(session.ID)
	if err != nil {
		log.Error().Err(err).Str("sessionID", session.ID.String()).Msg("SubmitSession: failed to load answer sheet")
		return nil, fmt.Errorf("loading answers: %w", err)
	}

	questionIDs := make([]uuid.UUID, 0, len(answers))
	for _, a := range answers {
		questionIDs = append(questionIDs, a.QuestionID)
	}
	correctOptions, err := s.questionRepo.FindCorrectOptionIDs(questionIDs)
	if err != nil {
		return nil, fmt.Errorf("loading answer keys: %w", err)
	}
	questionTags, err := s.questionRepo.FindTagIDsByQuestionIDs(questionIDs)
	if err != nil {
		return nil, fmt.Errorf("loading question tags: %w", err)
	}

	grade := gradeSession(answers, correctOptions, questionTags)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.answerRepo.UpdateCorrectness(tx, grade.Grades); err != nil {
			return fmt.Errorf("persisting verdicts: %w", err)
		}

		globalDelta := repository.GlobalDelta{
			Score:    grade.Score,
			Answered: grade.TotalQuestions,
			Correct:  grade.TotalCorrect,
			Wrong:    grade.TotalQuestions - grade.TotalCorrect,
		}
		if err := s.statsRepo.ApplyGlobalDelta(tx, userID, globalDelta); err != nil {
			return fmt.Errorf("applying global stats delta: %w", err)
		}
		for subjectID, tally := range grade.SubjectTallies {
			if err := s.statsRepo.ApplySubjectDelta(tx, userID, subjectID, tally); err != nil {
				return fmt.Errorf("applying subject stats delta: %w", err)
			}
		}
		for tagID, tally := range grade.TagTallies {
			if err := s.statsRepo.ApplyTagDelta(tx, userID, tagID, tally); err != nil {
				return fmt.Errorf("applying tag stats delta: %w", err)
			}
		}

		score := grade.Score
		return s.sessionRepo.Finalize(tx, session.ID, model.SessionStatusCompleted, time.Now(), &score)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Lost the finalize race against a concurrent submit.
			return nil, ErrAlreadySubmitted
		}
		log.Error().Err(err).Str("sessionID", session.ID.String()).Msg("SubmitSession: transaction failed")
		return nil, err
	}

	log.Info().Str("sessionID", session.ID.String()).Str("userID", userID.String()).
		Float64("score", grade.Score).Int("correct", grade.TotalCorrect).
		Int("total", grade.TotalQuestions).Msg("Exam session submitted")

	return &dto.SubmitSessionResponse{
		Score:          grade.Score,
		TotalCorrect:   grade.TotalCorrect,
		TotalQuestions: grade.TotalQuestions,
	}, nil
}
