package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/classtrack/internal/app/models/dto"
	"github.com/classtrack/classtrack/internal/app/services"
	"github.com/classtrack/classtrack/internal/middleware"
)

// CheckInController handles student check-in submissions
type CheckInController struct {
	checkInService *services.CheckInService
}

// NewCheckInController creates a new CheckInController
func NewCheckInController(checkInService *services.CheckInService) *CheckInController {
	return &CheckInController{
		checkInService: checkInService,
	}
}

// outcomePresentation maps each verifier outcome to its HTTP status and the
// user-facing message category the frontend renders (success/info/warning/danger).
var outcomePresentation = map[services.CheckInStatus]struct {
	httpStatus int
	category   string
	message    string
}{
	services.CheckInMarked:          {http.StatusOK, "success", "Attendance marked"},
	services.CheckInAlreadyMarked:   {http.StatusOK, "info", "Already marked"},
	services.CheckInNoInput:         {http.StatusBadRequest, "warning", "No data provided"},
	services.CheckInInvalidPayload:  {http.StatusBadRequest, "danger", "Invalid QR content"},
	services.CheckInSessionNotFound: {http.StatusNotFound, "danger", "Invalid code"},
	services.CheckInExpired:         {http.StatusGone, "danger", "Session expired"},
}

// CheckIn verifies and commits an attendance submission
// @Summary Check in to an attendance session
// @Description Accepts a typed code or a scanned QR payload and credits the calling student at most once per session
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CheckInRequest true "Code or scanned payload"
// @Success 200 {object} dto.APIResponse{data=dto.CheckInResponse} "Marked or already marked"
// @Failure 400 {object} dto.APIResponse{data=dto.CheckInResponse} "No input or invalid payload"
// @Failure 404 {object} dto.APIResponse{data=dto.CheckInResponse} "No session matches the submission"
// @Failure 410 {object} dto.APIResponse{data=dto.CheckInResponse} "Session expired"
// @Router /attendance/check-in [post]
func (c *CheckInController) CheckIn(ctx *gin.Context) {
	var req dto.CheckInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid check-in data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	result, err := c.checkInService.CheckIn(ctx, middleware.CallerID(ctx), services.CheckInInput{
		Code:      req.Code,
		QRContent: req.QRContent,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	presentation := outcomePresentation[result.Status]
	response := dto.CheckInResponse{
		Outcome:  string(result.Status),
		Category: presentation.category,
		Message:  presentation.message,
	}
	if result.Record != nil {
		response.Record = &dto.RecordResponse{
			ID:        result.Record.ID,
			StudentID: result.Record.StudentID,
			SubjectID: result.Record.SubjectID,
			SessionID: result.Record.SessionID,
			MarkedAt:  result.Record.MarkedAt,
		}
	}

	ctx.JSON(presentation.httpStatus, dto.APIResponse{
		Data:      response,
		Timestamp: time.Now(),
	})
}
