package services

import (
	"context"
	"errors"

	"github.com/classtrack/classtrack/internal/app/models"
	"github.com/classtrack/classtrack/internal/app/repositories"
	"github.com/classtrack/classtrack/internal/pkg/apperrors"
)

// ExportService produces the attendance feed consumed by the external
// CSV/report collaborator: one row per record, joined with student identity,
// in a deterministic order. Formatting is the collaborator's job.
type ExportService struct {
	sessions SessionStore
	ledger   AttendanceLedger
}

// NewExportService creates a new export service
func NewExportService(sessions SessionStore, ledger AttendanceLedger) *ExportService {
	return &ExportService{
		sessions: sessions,
		ledger:   ledger,
	}
}

// SessionAttendance returns the feed rows for a session the teacher owns.
func (s *ExportService) SessionAttendance(ctx context.Context, teacherID, sessionID int64) ([]*models.AttendanceRow, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, err
	}

	if session.TeacherID != teacherID {
		return nil, apperrors.NewForbiddenError("session belongs to another teacher")
	}

	return s.ledger.ListBySession(ctx, sessionID)
}
