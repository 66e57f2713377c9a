package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/classtrack/classtrack/internal/app/models"
	"github.com/classtrack/classtrack/internal/app/repositories"
	"github.com/classtrack/classtrack/internal/pkg/apperrors"
	"github.com/classtrack/classtrack/internal/pkg/helpers"
	"github.com/classtrack/classtrack/internal/pkg/logger"
	"github.com/classtrack/classtrack/internal/pkg/metrics"
	"github.com/classtrack/classtrack/internal/pkg/qrpayload"
	"github.com/classtrack/classtrack/internal/pkg/sessioncode"
)

// SessionService owns the attendance session lifecycle: code generation,
// creation with a fixed validity window, and teacher-scoped lookups.
type SessionService struct {
	sessions SessionStore
	subjects SubjectStore
	codes    *sessioncode.Generator
	ttl      time.Duration
	attempts int
	metrics  *metrics.Metrics

	// now is swappable in tests
	now func() time.Time
}

// NewSessionService creates a session service. ttl is the validity window
// stamped on new sessions; attempts bounds the retry loop when a generated
// code collides with an existing one.
func NewSessionService(sessions SessionStore, subjects SubjectStore, codes *sessioncode.Generator, ttl time.Duration, attempts int, m *metrics.Metrics) *SessionService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if attempts <= 0 {
		attempts = 5
	}
	return &SessionService{
		sessions: sessions,
		subjects: subjects,
		codes:    codes,
		ttl:      ttl,
		attempts: attempts,
		metrics:  m,
		now:      helpers.NowUTC,
	}
}

// CreateSession opens a new attendance session for a subject the teacher
// owns. The session is immutable once persisted and visible to code lookups
// before the response (and therefore the code) reaches the teacher.
func (s *SessionService) CreateSession(ctx context.Context, teacherID, subjectID int64) (*models.AttendanceSession, error) {
	subject, err := s.subjects.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubjectNotFound) {
			return nil, apperrors.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("error checking subject: %w", err)
	}

	if subject.TeacherID != teacherID {
		return nil, apperrors.NewForbiddenError("subject belongs to another teacher")
	}

	for attempt := 0; attempt < s.attempts; attempt++ {
		code, err := s.codes.Generate()
		if err != nil {
			return nil, fmt.Errorf("error generating session code: %w", err)
		}

		createdAt := s.now()
		session := &models.AttendanceSession{
			TeacherID: teacherID,
			SubjectID: subjectID,
			Code:      code,
			CreatedAt: createdAt,
			ExpiresAt: createdAt.Add(s.ttl),
		}

		err = s.sessions.Create(ctx, session)
		if err == nil {
			s.metrics.ObserveSessionCreated()
			return session, nil
		}
		if errors.Is(err, repositories.ErrSessionCodeTaken) {
			// 36^6 code space makes this essentially unreachable; retry
			logger.Warn().Int("attempt", attempt+1).Msg("Session code collision, regenerating")
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("exhausted %d attempts to generate a unique session code", s.attempts)
}

// GetOwnedSession returns a session only if it belongs to the teacher.
func (s *SessionService) GetOwnedSession(ctx context.Context, teacherID, sessionID int64) (*models.AttendanceSession, error) {
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

	return session, nil
}

// ListByTeacher returns a teacher's sessions, newest first.
func (s *SessionService) ListByTeacher(ctx context.Context, teacherID int64) ([]*models.AttendanceSession, error) {
	return s.sessions.ListByTeacher(ctx, teacherID)
}

// Payload renders the scannable payload string for a session the teacher
// owns. The QR image itself is rendered by the frontend collaborator.
func (s *SessionService) Payload(ctx context.Context, teacherID, sessionID int64) (string, error) {
	session, err := s.GetOwnedSession(ctx, teacherID, sessionID)
	if err != nil {
		return "", err
	}
	return qrpayload.Encode(session.ID, session.SubjectID, session.Code), nil
}
