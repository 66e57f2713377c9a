package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/classtrack/classtrack/internal/app/models"
	"github.com/classtrack/classtrack/internal/app/repositories"
	"github.com/classtrack/classtrack/internal/pkg/cache"
	"github.com/classtrack/classtrack/internal/pkg/helpers"
	"github.com/classtrack/classtrack/internal/pkg/logger"
	"github.com/classtrack/classtrack/internal/pkg/metrics"
	"github.com/classtrack/classtrack/internal/pkg/qrpayload"
)

// CheckInStatus enumerates the user-correctable outcomes of a check-in.
// Exactly one status is produced per attempt; none of them is an error.
// Infrastructure failures travel on the error return instead.
type CheckInStatus string

const (
	// CheckInNoInput means neither a code nor a payload was supplied
	CheckInNoInput CheckInStatus = "no_input"
	// CheckInInvalidPayload means the scanned payload could not be decoded
	// or contradicts the session it points at
	CheckInInvalidPayload CheckInStatus = "invalid_payload"
	// CheckInSessionNotFound means no session matches the code or payload
	CheckInSessionNotFound CheckInStatus = "session_not_found"
	// CheckInExpired means the session's validity window has passed
	CheckInExpired CheckInStatus = "expired"
	// CheckInAlreadyMarked means the student is already credited for the
	// session; the attempt is an idempotent no-op
	CheckInAlreadyMarked CheckInStatus = "already_marked"
	// CheckInMarked means a new attendance record was committed
	CheckInMarked CheckInStatus = "marked"
)

// CheckInInput carries the student's submission. Exactly one of Code or
// QRContent is expected; when both are present the scanned payload wins.
type CheckInInput struct {
	Code      string
	QRContent string
}

// CheckInResult is the outcome of one check-in attempt.
type CheckInResult struct {
	Status CheckInStatus
	Record *models.AttendanceRecord
}

// CheckInService is the check-in verification engine. It resolves a session
// from either encoding, enforces expiry, and commits at most one record per
// (student, session) pair. Uniqueness is guaranteed by the ledger's storage
// constraint; the existence check and the redis guard are fast paths only.
type CheckInService struct {
	sessions SessionStore
	ledger   AttendanceLedger
	guard    *cache.Redis
	guardTTL time.Duration
	metrics  *metrics.Metrics

	// now is swappable in tests
	now func() time.Time
}

// NewCheckInService creates a check-in verifier. guard may be nil, in which
// case every duplicate check goes straight to the ledger.
func NewCheckInService(sessions SessionStore, ledger AttendanceLedger, guard *cache.Redis, guardTTL time.Duration, m *metrics.Metrics) *CheckInService {
	if guardTTL <= 0 {
		guardTTL = time.Hour
	}
	return &CheckInService{
		sessions: sessions,
		ledger:   ledger,
		guard:    guard,
		guardTTL: guardTTL,
		metrics:  m,
		now:      helpers.NowUTC,
	}
}

// CheckIn verifies and commits one attendance submission for a student.
func (s *CheckInService) CheckIn(ctx context.Context, studentID int64, input CheckInInput) (*CheckInResult, error) {
	result, err := s.checkIn(ctx, studentID, input)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveOutcome(string(result.Status))
	return result, nil
}

func (s *CheckInService) checkIn(ctx context.Context, studentID int64, input CheckInInput) (*CheckInResult, error) {
	code := strings.TrimSpace(input.Code)
	qrContent := strings.TrimSpace(input.QRContent)

	if code == "" && qrContent == "" {
		return &CheckInResult{Status: CheckInNoInput}, nil
	}

	session, outcome, err := s.resolveSession(ctx, code, qrContent)
	if err != nil {
		return nil, err
	}
	if outcome != "" {
		return &CheckInResult{Status: outcome}, nil
	}

	if session.ExpiredAt(s.now()) {
		return &CheckInResult{Status: CheckInExpired}, nil
	}

	return s.commit(ctx, studentID, session)
}

// resolveSession turns the submission into a session, or a terminal outcome.
func (s *CheckInService) resolveSession(ctx context.Context, code, qrContent string) (*models.AttendanceSession, CheckInStatus, error) {
	if qrContent != "" {
		decoded, err := qrpayload.Decode(qrContent)
		if err != nil {
			return nil, CheckInInvalidPayload, nil
		}

		session, err := s.sessions.GetByID(ctx, decoded.SessionID)
		if err != nil {
			if errors.Is(err, repositories.ErrSessionNotFound) {
				return nil, CheckInSessionNotFound, nil
			}
			return nil, "", fmt.Errorf("error resolving session from payload: %w", err)
		}

		// A payload that names a real session but carries the wrong code is
		// forged or stale; reject it rather than trusting the id alone.
		if decoded.Code != "" && decoded.Code != session.Code {
			return nil, CheckInInvalidPayload, nil
		}

		return session, "", nil
	}

	session, err := s.sessions.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, CheckInSessionNotFound, nil
		}
		return nil, "", fmt.Errorf("error resolving session from code: %w", err)
	}

	return session, "", nil
}

// commit performs the duplicate check and the insert. The ledger's unique
// constraint decides races; both fast paths may miss without affecting
// correctness.
func (s *CheckInService) commit(ctx context.Context, studentID int64, session *models.AttendanceSession) (*CheckInResult, error) {
	if marked, err := s.guard.IsMarked(ctx, studentID, session.ID); err != nil {
		logger.Warn().Err(err).Msg("Duplicate guard unavailable, falling through to database")
	} else if marked {
		return &CheckInResult{Status: CheckInAlreadyMarked}, nil
	}

	exists, err := s.ledger.HasRecord(ctx, studentID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("error checking attendance record: %w", err)
	}
	if exists {
		s.rememberMarked(ctx, studentID, session.ID)
		return &CheckInResult{Status: CheckInAlreadyMarked}, nil
	}

	record := &models.AttendanceRecord{
		StudentID: studentID,
		SubjectID: session.SubjectID,
		SessionID: session.ID,
		MarkedAt:  s.now(),
	}

	err = s.ledger.Insert(ctx, record)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateRecord) {
			// Lost the race against a concurrent submission of the same pair
			s.rememberMarked(ctx, studentID, session.ID)
			return &CheckInResult{Status: CheckInAlreadyMarked}, nil
		}
		return nil, fmt.Errorf("error inserting attendance record: %w", err)
	}

	s.rememberMarked(ctx, studentID, session.ID)
	return &CheckInResult{Status: CheckInMarked, Record: record}, nil
}

func (s *CheckInService) rememberMarked(ctx context.Context, studentID, sessionID int64) {
	if err := s.guard.RememberMarked(ctx, studentID, sessionID, s.guardTTL); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache marked pair")
	}
}
