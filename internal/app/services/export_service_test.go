package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/classtrack/classtrack/internal/app/models"
	"github.com/classtrack/classtrack/internal/pkg/apperrors"
)

func TestSessionAttendanceFeed(t *testing.T) {
	store := newFakeSessionStore()
	ledger := newFakeLedger()
	ctx := context.Background()

	session := &models.AttendanceSession{
		TeacherID: 10,
		SubjectID: 1,
		Code:      "AB12CD",
		CreatedAt: t0,
		ExpiresAt: t0.Add(30 * time.Minute),
	}
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("seeding session: %v", err)
	}

	verifier := NewCheckInService(store, ledger, nil, time.Hour, nil)
	verifier.now = func() time.Time { return t0.Add(5 * time.Minute) }
	for _, studentID := range []int64{1, 2} {
		if _, err := verifier.CheckIn(ctx, studentID, CheckInInput{Code: "AB12CD"}); err != nil {
			t.Fatalf("CheckIn(student %d) error = %v", studentID, err)
		}
	}

	svc := NewExportService(store, ledger)

	rows, err := svc.SessionAttendance(ctx, 10, session.ID)
	if err != nil {
		t.Fatalf("SessionAttendance() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("SessionAttendance() returned %d rows, want 2", len(rows))
	}
	for _, row := range rows {
		if row.SessionID != session.ID {
			t.Errorf("row.SessionID = %d, want %d", row.SessionID, session.ID)
		}
		if row.SubjectID != session.SubjectID {
			t.Errorf("row.SubjectID = %d, want %d", row.SubjectID, session.SubjectID)
		}
	}

	if _, err := svc.SessionAttendance(ctx, 20, session.ID); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("SessionAttendance(other teacher) error = %v, want %v", err, apperrors.ErrPermissionDenied)
	}
	if _, err := svc.SessionAttendance(ctx, 10, session.ID+9); !errors.Is(err, apperrors.ErrSessionNotFound) {
		t.Errorf("SessionAttendance(missing session) error = %v, want %v", err, apperrors.ErrSessionNotFound)
	}
}
