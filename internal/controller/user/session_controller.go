package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/totosugito/sicerdas-sub001/internal/dto"
	"github.com/totosugito/sicerdas-sub001/internal/service"
)

type SessionController struct {
	sessionService    service.SessionService
	submissionService service.SubmissionService
}

func NewSessionController(sessionService service.SessionService, submissionService service.SubmissionService) *SessionController {
	return &SessionController{
		sessionService:    sessionService,
		submissionService: submissionService,
	}
}

// userIDFromHeader reads the authenticated user identity that the gateway
// forwards in X-User-ID. Writes the error response itself when missing or malformed.
func userIDFromHeader(ctx *gin.Context) (uuid.UUID, bool) {
	raw := ctx.GetHeader("X-User-ID")
	if raw == "" {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing X-User-ID header"})
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid X-User-ID header"})
		return uuid.Nil, false
	}
	return userID, true
}

func sessionIDFromPath(ctx *gin.Context) (uuid.UUID, bool) {
	sessionID, err := uuid.Parse(ctx.Param("session_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid session ID format"})
		return uuid.Nil, false
	}
	return sessionID, true
}

// StartSession godoc
// @Summary (User) Start a new exam session
// @Description Opens a timed session for an active package and snapshots its question order into a blank answer sheet.
// @Tags User - Sessions
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Param session_data body dto.StartSessionRequest true "Package to attempt"
// @Success 201 {object} dto.StartSessionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Package not found or inactive"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/start [post]
func (c *SessionController) StartSession(ctx *gin.Context) {
	userID, ok := userIDFromHeader(ctx)
	if !ok {
		return
	}
	var req dto.StartSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.sessionService.StartSession(userID, req.PackageID)
	if err != nil {
		if errors.Is(err, service.ErrPackageNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Str("userID", userID.String()).Msg("StartSession: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to start session"})
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// SaveAnswer godoc
// @Summary (User) Save an answer in an open session
// @Description Upserts the user's answer for one question. Only the provided fields are updated; correctness is never touched here.
// @Tags User - Sessions
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Param answer_data body dto.SaveAnswerRequest true "Answer payload"
// @Success 200 {object} map[string]string
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 403 {object} dto.ErrorResponse "Session is no longer in progress"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/save-answer [post]
func (c *SessionController) SaveAnswer(ctx *gin.Context) {
	userID, ok := userIDFromHeader(ctx)
	if !ok {
		return
	}
	var req dto.SaveAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	if err := c.sessionService.SaveAnswer(userID, req); err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		case errors.Is(err, service.ErrSessionClosed):
			ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Message: err.Error()})
		default:
			log.Error().Err(err).Str("sessionID", req.SessionID.String()).Msg("SaveAnswer: Service error")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to save answer"})
		}
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "answer saved"})
}

// GetSessionDetails godoc
// @Summary (User) Get a session with its answer sheet
// @Description Returns session info plus every question in order with the user's current answers. Option correctness is never exposed.
// @Tags User - Sessions
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.SessionDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid session ID format"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/{session_id} [get]
func (c *SessionController) GetSessionDetails(ctx *gin.Context) {
	userID, ok := userIDFromHeader(ctx)
	if !ok {
		return
	}
	sessionID, ok := sessionIDFromPath(ctx)
	if !ok {
		return
	}

	detail, err := c.sessionService.GetSessionDetails(userID, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Str("sessionID", sessionID.String()).Msg("GetSessionDetails: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve session"})
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// SubmitSession godoc
// @Summary (User) Submit a session for grading
// @Description Grades the whole answer sheet, finalizes the session exactly once, and folds the result into the user's rolling stats.
// @Tags User - Sessions
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.SubmitSessionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid session ID format"
// @Failure 403 {object} dto.ErrorResponse "Session already submitted or abandoned"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/{session_id}/submit [post]
func (c *SessionController) SubmitSession(ctx *gin.Context) {
	userID, ok := userIDFromHeader(ctx)
	if !ok {
		return
	}
	sessionID, ok := sessionIDFromPath(ctx)
	if !ok {
		return
	}

	resp, err := c.submissionService.SubmitSession(userID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		case errors.Is(err, service.ErrAlreadySubmitted), errors.Is(err, service.ErrSessionClosed):
			ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Message: err.Error()})
		default:
			log.Error().Err(err).Str("sessionID", sessionID.String()).Msg("SubmitSession: Service error")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to submit session"})
		}
		return
	}
	log.Info().Str("sessionID", sessionID.String()).Float64("score", resp.Score).Msg("Session submitted")
	ctx.JSON(http.StatusOK, resp)
}

// AbandonSession godoc
// @Summary (User) Abandon an open session
// @Description Closes the session without grading. Abandoned sessions never contribute to stats.
// @Tags User - Sessions
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Param session_id path string true "Session ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} dto.ErrorResponse "Invalid session ID format"
// @Failure 403 {object} dto.ErrorResponse "Session is no longer in progress"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/{session_id}/abandon [post]
func (c *SessionController) AbandonSession(ctx *gin.Context) {
	userID, ok := userIDFromHeader(ctx)
	if !ok {
		return
	}
	sessionID, ok := sessionIDFromPath(ctx)
	if !ok {
		return
	}

	if err := c.sessionService.AbandonSession(userID, sessionID); err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		case errors.Is(err, service.ErrSessionClosed):
			ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Message: err.Error()})
		default:
			log.Error().Err(err).Str("sessionID", sessionID.String()).Msg("AbandonSession: Service error")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to abandon session"})
		}
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "session abandoned"})
}
