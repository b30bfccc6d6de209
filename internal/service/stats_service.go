package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/totosugito/sicerdas-sub001/internal/dto"
	"github.com/totosugito/sicerdas-sub001/internal/repository"
	"gorm.io/gorm"
)

// StatsService is the read side of the rollup tables.
type StatsService interface {
	GetGlobalStats(userID uuid.UUID) (*dto.GlobalStatsDTO, error)
	GetSubjectStats(userID uuid.UUID) ([]dto.SubjectStatsDTO, error)
	GetTagStats(userID uuid.UUID) ([]dto.TagStatsDTO, error)
	GetLeaderboard(limit int) ([]dto.LeaderboardEntryDTO, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
}

func NewStatsService(statsRepo repository.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

// GetGlobalStats returns nil (not an error) for a user who has never
// completed an exam.
func (s *statsService) GetGlobalStats(userID uuid.UUID) (*dto.GlobalStatsDTO, error) {
	stats, err := s.statsRepo.FindGlobalByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Error().Err(err).Str("userID", userID.String()).Msg("GetGlobalStats: repository error")
		return nil, fmt.Errorf("loading global stats: %w", err)
	}
	var resp dto.GlobalStatsDTO
	if err := copier.Copy(&resp, stats); err != nil {
		return nil, fmt.Errorf("preparing global stats response: %w", err)
	}
	return &resp, nil
}

func (s *statsService) GetSubjectStats(userID uuid.UUID) ([]dto.SubjectStatsDTO, error) {
	rows, err := s.statsRepo.FindSubjectsByUser(userID)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Msg("GetSubjectStats: repository error")
		return nil, fmt.Errorf("loading subject stats: %w", err)
	}
	resp := make([]dto.SubjectStatsDTO, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, dto.SubjectStatsDTO{
			SubjectID:              row.SubjectID,
			SubjectName:            row.SubjectName,
			TotalQuestionsAnswered: row.TotalQuestionsAnswered,
			TotalCorrect:           row.TotalCorrect,
			TotalWrong:             row.TotalWrong,
			AccuracyRate:           row.AccuracyRate,
			UpdatedAt:              row.UpdatedAt,
		})
	}
	return resp, nil
}

func (s *statsService) GetTagStats(userID uuid.UUID) ([]dto.TagStatsDTO, error) {
	rows, err := s.statsRepo.FindTagsByUser(userID)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Msg("GetTagStats: repository error")
		return nil, fmt.Errorf("loading tag stats: %w", err)
	}
	resp := make([]dto.TagStatsDTO, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, dto.TagStatsDTO{
			TagID:                  row.TagID,
			TagName:                row.TagName,
			TotalQuestionsAnswered: row.TotalQuestionsAnswered,
			TotalCorrect:           row.TotalCorrect,
			TotalWrong:             row.TotalWrong,
			AccuracyRate:           row.AccuracyRate,
			UpdatedAt:              row.UpdatedAt,
		})
	}
	return resp, nil
}

func (s *statsService) GetLeaderboard(limit int) ([]dto.LeaderboardEntryDTO, error) {
	rows, err := s.statsRepo.TopByAverageScore(limit)
	if err != nil {
		log.Error().Err(err).Msg("GetLeaderboard: repository error")
		return nil, fmt.Errorf("loading leaderboard: %w", err)
	}
	resp := make([]dto.LeaderboardEntryDTO, 0, len(rows))
	for i, row := range rows {
		resp = append(resp, dto.LeaderboardEntryDTO{
			Rank:            i + 1,
			UserID:          row.UserID,
			AverageScore:    row.AverageScore,
			TotalExamsTaken: row.TotalExamsTaken,
		})
	}
	return resp, nil
}
