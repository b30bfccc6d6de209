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

// SessionService manages the attempt lifecycle: start, auto-save, read back,
// abandon. Submission (the terminal grading transition) lives in
// SubmissionService.
type SessionService interface {
	StartSession(userID, packageID uuid.UUID) (*dto.StartSessionResponse, error)
	SaveAnswer(userID uuid.UUID, req dto.SaveAnswerRequest) error
	GetSessionDetails(userID, sessionID uuid.UUID) (*dto.SessionDetailDTO, error)
	AbandonSession(userID, sessionID uuid.UUID) error
}

type sessionService struct {
	packageRepo  repository.PackageRepository
	sessionRepo  repository.SessionRepository
	answerRepo   repository.SessionAnswerRepository
	questionRepo repository.QuestionRepository
}

func NewSessionService(
	packageRepo repository.PackageRepository,
	sessionRepo repository.SessionRepository,
	answerRepo repository.SessionAnswerRepository,
	questionRepo repository.QuestionRepository,
) SessionService {
	return &sessionService{
		packageRepo:  packageRepo,
		sessionRepo:  sessionRepo,
		answerRepo:   answerRepo,
		questionRepo: questionRepo,
	}
}

func (s *sessionService) StartSession(userID, packageID uuid.UUID) (*dto.StartSessionResponse, error) {
	pkg, err := s.packageRepo.FindActiveByID(packageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackageNotFound
		}
		log.Error().Err(err).Str("packageID", packageID.String()).Msg("StartSession: failed to load package")
		return nil, fmt.Errorf("loading package %s: %w", packageID, err)
	}

	assignments, err := s.packageRepo.FindQuestionOrder(pkg.ID)
	if err != nil {
		log.Error().Err(err).Str("packageID", pkg.ID.String()).Msg("StartSession: failed to load package questions")
		return nil, fmt.Errorf("loading questions for package %s: %w", pkg.ID, err)
	}

	// The answer sheet snapshots the package's question order at start time,
	// so later edits to the package never reorder an in-progress attempt.
	session := model.Session{
		UserID:    userID,
		PackageID: pkg.ID,
		Status:    model.SessionStatusInProgress,
		StartTime: time.Now(),
	}
	for _, a := range assignments {
		session.Answers = append(session.Answers, model.SessionAnswer{
			QuestionID:    a.QuestionID,
			QuestionOrder: a.QuestionOrder,
			IsDoubtful:    false,
		})
	}

	if err := s.sessionRepo.Create(&session); err != nil {
		log.Error().Err(err).Str("packageID", pkg.ID.String()).Msg("StartSession: failed to create session")
		return nil, fmt.Errorf("creating session: %w", err)
	}

	log.Info().Str("sessionID", session.ID.String()).Str("userID", userID.String()).
		Int("questionCount", len(session.Answers)).Msg("Exam session started")
	return &dto.StartSessionResponse{SessionID: session.ID}, nil
}

func (s *sessionService) SaveAnswer(userID uuid.UUID, req dto.SaveAnswerRequest) error {
	session, err := s.sessionRepo.FindByIDAndUser(req.SessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("loading session %s: %w", req.SessionID, err)
	}
	if session.Status != model.SessionStatusInProgress {
		return ErrSessionClosed
	}

	// Partial update: only fields present in the request are written, and
	// correctness is never touched on this path. An explicit null clears the
	// stored value, so a user can revert a question to blank.
	updates := map[string]interface{}{}
	if req.SelectedOptionID.Set {
		if req.SelectedOptionID.Value != nil {
			updates["selected_option_id"] = *req.SelectedOptionID.Value
		} else {
			updates["selected_option_id"] = nil
		}
	}
	if req.TextAnswer != nil {
		if string(req.TextAnswer) == "null" {
			updates["text_answer"] = nil
		} else {
			updates["text_answer"] = req.TextAnswer
		}
	}
	if req.IsDoubtful != nil {
		updates["is_doubtful"] = *req.IsDoubtful
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.answerRepo.PartialUpdate(req.SessionID, req.QuestionID, updates); err != nil {
		log.Error().Err(err).Str("sessionID", req.SessionID.String()).
			Str("questionID", req.QuestionID.String()).Msg("SaveAnswer: update failed")
		return fmt.Errorf("saving answer: %w", err)
	}
	return nil
}

func (s *sessionService) GetSessionDetails(userID, sessionID uuid.UUID) (*dto.SessionDetailDTO, error) {
	session, err := s.sessionRepo.FindByIDAndUserWithPackage(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}

	answers, err := s.answerRepo.FindBySessionID(session.ID)
	if err != nil {
		log.Error().Err(err).Str("sessionID", session.ID.String()).Msg("GetSessionDetails: failed to load answers")
		return nil, fmt.Errorf("loading answers: %w", err)
	}

	questionIDs := make([]uuid.UUID, 0, len(answers))
	for _, a := range answers {
		questionIDs = append(questionIDs, a.QuestionID)
	}
	options, err := s.questionRepo.FindOptionsByQuestionIDs(questionIDs)
	if err != nil {
		return nil, fmt.Errorf("loading options: %w", err)
	}
	optionsByQuestion := make(map[uuid.UUID][]dto.OptionDTO)
	for _, opt := range options {
		optionsByQuestion[opt.QuestionID] = append(optionsByQuestion[opt.QuestionID], dto.OptionDTO{
			ID:      opt.ID,
			Content: opt.Content,
		})
	}

	detail := dto.SessionDetailDTO{
		Session: dto.SessionInfoDTO{
			ID:              session.ID,
			Status:          session.Status,
			StartTime:       session.StartTime,
			EndTime:         session.EndTime,
			Score:           session.Score,
			PackageTitle:    session.Package.Title,
			DurationMinutes: session.Package.DurationMinutes,
		},
		Answers: make([]dto.SessionAnswerDTO, 0, len(answers)),
	}
	for _, a := range answers {
		detail.Answers = append(detail.Answers, dto.SessionAnswerDTO{
			QuestionID:       a.QuestionID,
			QuestionOrder:    a.QuestionOrder,
			IsDoubtful:       a.IsDoubtful,
			SelectedOptionID: a.SelectedOptionID,
			TextAnswer:       a.TextAnswer,
			Question: dto.AnswerQuestionDTO{
				Content: a.Question.Content,
				Type:    a.Question.Type,
				Options: optionsByQuestion[a.QuestionID],
			},
		})
	}
	return &detail, nil
}

func (s *sessionService) AbandonSession(userID, sessionID uuid.UUID) error {
	session, err := s.sessionRepo.FindByIDAndUser(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	if session.Status != model.SessionStatusInProgress {
		return ErrSessionClosed
	}

	// No score and no stats contribution: abandoned attempts never reach the
	// aggregator.
	if err := s.sessionRepo.Finalize(nil, session.ID, model.SessionStatusAbandoned, time.Now(), nil); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionClosed
		}
		return fmt.Errorf("abandoning session: %w", err)
	}
	log.Info().Str("sessionID", session.ID.String()).Msg("Exam session abandoned")
	return nil
}
