package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/totosugito/sicerdas-sub001/internal/dto"
	"github.com/totosugito/sicerdas-sub001/internal/service"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 50
)

type StatsController struct {
	statsService service.StatsService
}

func NewStatsController(statsService service.StatsService) *StatsController {
	return &StatsController{statsService: statsService}
}

// GetGlobalStats godoc
// @Summary (User) Get own global exam stats
// @Description Returns the user's lifetime exam counters and average score, or a null body when the user has never completed an exam.
// @Tags User - Stats
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Success 200 {object} dto.GlobalStatsDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /stats/global [get]
func (c *StatsController) GetGlobalStats(ctx *gin.Context) {
	userID, ok := userIDFromHeader(ctx)
	if !ok {
		return
	}

	stats, err := c.statsService.GetGlobalStats(userID)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Msg("GetGlobalStats: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve stats"})
		return
	}
	// No row means no completed exams yet; the body is an explicit null so
	// clients can tell "never played" from an all-zero row.
	ctx.JSON(http.StatusOK, stats)
}

// GetSubjectStats godoc
// @Summary (User) Get own per-subject stats
// @Tags User - Stats
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Success 200 {array} dto.SubjectStatsDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /stats/subjects [get]
func (c *StatsController) GetSubjectStats(ctx *gin.Context) {
	userID, ok := userIDFromHeader(ctx)
	if !ok {
		return
	}

	stats, err := c.statsService.GetSubjectStats(userID)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Msg("GetSubjectStats: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve subject stats"})
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// GetTagStats godoc
// @Summary (User) Get own per-tag stats
// @Tags User - Stats
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Success 200 {array} dto.TagStatsDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /stats/tags [get]
func (c *StatsController) GetTagStats(ctx *gin.Context) {
	userID, ok := userIDFromHeader(ctx)
	if !ok {
		return
	}

	stats, err := c.statsService.GetTagStats(userID)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Msg("GetTagStats: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve tag stats"})
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// GetLeaderboard godoc
// @Summary (User) Get the average-score leaderboard
// @Tags User - Stats
// @Produce json
// @Param limit query int false "Maximum entries to return (default 10, capped at 50)"
// @Success 200 {array} dto.LeaderboardEntryDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid limit"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /leaderboard [get]
func (c *StatsController) GetLeaderboard(ctx *gin.Context) {
	limit := defaultLeaderboardLimit
	if raw := ctx.Query("limit"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil || val < 1 {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid limit"})
			return
		}
		limit = val
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	entries, err := c.statsService.GetLeaderboard(limit)
	if err != nil {
		log.Error().Err(err).Msg("GetLeaderboard: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve leaderboard"})
		return
	}
	ctx.JSON(http.StatusOK, entries)
}
