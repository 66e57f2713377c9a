package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/classtrack/classtrack/internal/app/controllers"
	"github.com/classtrack/classtrack/internal/app/models"
	"github.com/classtrack/classtrack/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	subjectController *controllers.SubjectController,
	sessionController *controllers.SessionController,
	checkInController *controllers.CheckInController,
	authMiddleware *middleware.AuthMiddleware,
	checkInLimiter *middleware.TokenBucket,
) {
	// Operational endpoints outside the versioned API
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version group
	v1 := router.Group("/api/v1")

	// All attendance routes require a validated identity
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		subjects := authenticated.Group("/subjects")
		{
			subjects.GET("", subjectController.GetAllSubjects)

			subjectsTeacherProtected := subjects.Group("")
			subjectsTeacherProtected.Use(authMiddleware.RoleRequired(string(models.RoleTeacher)))
			{
				subjectsTeacherProtected.POST("", subjectController.CreateSubject)
			}
		}

		sessions := authenticated.Group("/sessions")
		sessions.Use(authMiddleware.RoleRequired(string(models.RoleTeacher)))
		{
			sessions.POST("", sessionController.CreateSession)
			sessions.GET("", sessionController.ListSessions)
			sessions.GET("/:id", sessionController.GetSession)
			sessions.GET("/:id/payload", sessionController.GetSessionPayload)
			sessions.GET("/:id/attendance", sessionController.GetSessionAttendance)
		}

		attendance := authenticated.Group("/attendance")
		attendance.Use(authMiddleware.RoleRequired(string(models.RoleStudent)))
		{
			attendance.POST("/check-in", checkInLimiter.GinMiddleware(), checkInController.CheckIn)
		}
	}
}
