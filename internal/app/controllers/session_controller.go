package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/classtrack/internal/app/models"
	"github.com/classtrack/classtrack/internal/app/models/dto"
	"github.com/classtrack/classtrack/internal/app/services"
	"github.com/classtrack/classtrack/internal/middleware"
)

// SessionController handles attendance session operations
type SessionController struct {
	sessionService *services.SessionService
	exportService  *services.ExportService
}

// NewSessionController creates a new SessionController
func NewSessionController(sessionService *services.SessionService, exportService *services.ExportService) *SessionController {
	return &SessionController{
		sessionService: sessionService,
		exportService:  exportService,
	}
}

func sessionResponse(session *models.AttendanceSession) dto.SessionResponse {
	return dto.SessionResponse{
		ID:          session.ID,
		SubjectID:   session.SubjectID,
		SubjectName: session.SubjectName,
		Code:        session.Code,
		CreatedAt:   session.CreatedAt,
		ExpiresAt:   session.ExpiresAt,
	}
}

func sessionIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid session ID")
		errorDetail = errorDetail.WithDetails("Session ID must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// CreateSession opens a new attendance session
// @Summary Create an attendance session
// @Description Opens a time-boxed attendance session with a fresh code for a subject the caller owns
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSessionRequest true "Target subject"
// @Success 201 {object} dto.APIResponse{data=dto.SessionResponse} "Session created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Subject belongs to another teacher"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Router /sessions [post]
func (c *SessionController) CreateSession(ctx *gin.Context) {
	var req dto.CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid session data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	session, err := c.sessionService.CreateSession(ctx, middleware.CallerID(ctx), req.SubjectID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      sessionResponse(session),
		Timestamp: time.Now(),
	})
}

// ListSessions lists the caller's sessions, newest first
// @Summary List own attendance sessions
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.SessionResponse} "Sessions retrieved"
// @Router /sessions [get]
func (c *SessionController) ListSessions(ctx *gin.Context) {
	sessions, err := c.sessionService.ListByTeacher(ctx, middleware.CallerID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, sessionResponse(session))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      responses,
		Timestamp: time.Now(),
	})
}

// GetSession retrieves one of the caller's sessions
// @Summary Get an attendance session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse} "Session retrieved"
// @Failure 403 {object} dto.ErrorResponse "Session belongs to another teacher"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	id, ok := sessionIDParam(ctx)
	if !ok {
		return
	}

	session, err := c.sessionService.GetOwnedSession(ctx, middleware.CallerID(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      sessionResponse(session),
		Timestamp: time.Now(),
	})
}

// GetSessionPayload returns the scannable payload string for a session
// @Summary Get the scannable session payload
// @Description Returns the payload string the frontend renders as a QR image
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} dto.APIResponse{data=dto.SessionPayloadResponse} "Payload retrieved"
// @Failure 403 {object} dto.ErrorResponse "Session belongs to another teacher"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{id}/payload [get]
func (c *SessionController) GetSessionPayload(ctx *gin.Context) {
	id, ok := sessionIDParam(ctx)
	if !ok {
		return
	}

	payload, err := c.sessionService.Payload(ctx, middleware.CallerID(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SessionPayloadResponse{SessionID: id, Payload: payload},
		Timestamp: time.Now(),
	})
}

// GetSessionAttendance returns the export feed for a session
// @Summary List attendance for a session
// @Description One row per record joined with student identity, consumed by the CSV/report collaborator
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} dto.APIResponse{data=[]models.AttendanceRow} "Attendance retrieved"
// @Failure 403 {object} dto.ErrorResponse "Session belongs to another teacher"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{id}/attendance [get]
func (c *SessionController) GetSessionAttendance(ctx *gin.Context) {
	id, ok := sessionIDParam(ctx)
	if !ok {
		return
	}

	rows, err := c.exportService.SessionAttendance(ctx, middleware.CallerID(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if rows == nil {
		rows = []*models.AttendanceRow{}
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      rows,
		Timestamp: time.Now(),
	})
}
