package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/classtrack/classtrack/internal/app/models"
	"github.com/classtrack/classtrack/internal/app/repositories"
	"github.com/classtrack/classtrack/internal/pkg/apperrors"
	"github.com/classtrack/classtrack/internal/pkg/sessioncode"
)

type fakeSubjectStore struct {
	subjects map[int64]*models.Subject
}

func newFakeSubjectStore() *fakeSubjectStore {
	return &fakeSubjectStore{subjects: map[int64]*models.Subject{
		1: {ID: 1, Name: "Algorithms", TeacherID: 10},
		2: {ID: 2, Name: "Databases", TeacherID: 20},
	}}
}

func (f *fakeSubjectStore) Create(_ context.Context, subject *models.Subject) error {
	subject.ID = int64(len(f.subjects) + 1)
	f.subjects[subject.ID] = subject
	return nil
}

func (f *fakeSubjectStore) GetByID(_ context.Context, id int64) (*models.Subject, error) {
	s, ok := f.subjects[id]
	if !ok {
		return nil, repositories.ErrSubjectNotFound
	}
	return s, nil
}

func (f *fakeSubjectStore) GetAll(_ context.Context) ([]*models.Subject, error) {
	var out []*models.Subject
	for _, s := range f.subjects {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSubjectStore) GetByTeacherID(_ context.Context, teacherID int64) ([]*models.Subject, error) {
	var out []*models.Subject
	for _, s := range f.subjects {
		if s.TeacherID == teacherID {
			out = append(out, s)
		}
	}
	return out, nil
}

// collidingSessionStore rejects the first n creates with a code conflict.
type collidingSessionStore struct {
	*fakeSessionStore
	rejects int
}

func (c *collidingSessionStore) Create(ctx context.Context, session *models.AttendanceSession) error {
	if c.rejects > 0 {
		c.rejects--
		return repositories.ErrSessionCodeTaken
	}
	return c.fakeSessionStore.Create(ctx, session)
}

func newTestSessionService(store SessionStore, ttl time.Duration, attempts int) *SessionService {
	svc := NewSessionService(store, newFakeSubjectStore(), sessioncode.NewGenerator(6), ttl, attempts, nil)
	svc.now = func() time.Time { return t0 }
	return svc
}

func TestCreateSessionStampsValidityWindow(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestSessionService(store, 30*time.Minute, 5)

	session, err := svc.CreateSession(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	if session.ID == 0 {
		t.Error("CreateSession() did not assign an id")
	}
	if !session.CreatedAt.Equal(t0) {
		t.Errorf("session.CreatedAt = %v, want %v", session.CreatedAt, t0)
	}
	if want := t0.Add(30 * time.Minute); !session.ExpiresAt.Equal(want) {
		t.Errorf("session.ExpiresAt = %v, want %v", session.ExpiresAt, want)
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		t.Error("session.ExpiresAt must be after CreatedAt")
	}

	if len(session.Code) != 6 {
		t.Errorf("code length = %d, want 6", len(session.Code))
	}
	for _, r := range session.Code {
		if !strings.ContainsRune(sessioncode.Alphabet, r) {
			t.Errorf("code %q contains character outside [A-Z0-9]", session.Code)
		}
	}

	// The session must be resolvable by code before the code is distributed
	got, err := store.GetByCode(context.Background(), session.Code)
	if err != nil {
		t.Fatalf("GetByCode() after create error = %v", err)
	}
	if got.ID != session.ID {
		t.Errorf("GetByCode() id = %d, want %d", got.ID, session.ID)
	}
}

func TestCreateSessionConfigurableWindow(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestSessionService(store, 45*time.Minute, 5)

	session, err := svc.CreateSession(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if want := t0.Add(45 * time.Minute); !session.ExpiresAt.Equal(want) {
		t.Errorf("session.ExpiresAt = %v, want %v", session.ExpiresAt, want)
	}
}

func TestCreateSessionRetriesOnCodeCollision(t *testing.T) {
	store := &collidingSessionStore{fakeSessionStore: newFakeSessionStore(), rejects: 2}
	svc := newTestSessionService(store, 30*time.Minute, 5)

	session, err := svc.CreateSession(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if session.ID == 0 {
		t.Error("CreateSession() did not assign an id after retries")
	}
}

func TestCreateSessionExhaustsCollisionAttempts(t *testing.T) {
	store := &collidingSessionStore{fakeSessionStore: newFakeSessionStore(), rejects: 3}
	svc := newTestSessionService(store, 30*time.Minute, 3)

	if _, err := svc.CreateSession(context.Background(), 10, 1); err == nil {
		t.Fatal("CreateSession() expected error after exhausting attempts")
	}
}

func TestCreateSessionValidatesSubject(t *testing.T) {
	svc := newTestSessionService(newFakeSessionStore(), 30*time.Minute, 5)
	ctx := context.Background()

	if _, err := svc.CreateSession(ctx, 10, 99); !errors.Is(err, apperrors.ErrSubjectNotFound) {
		t.Errorf("CreateSession(missing subject) error = %v, want %v", err, apperrors.ErrSubjectNotFound)
	}

	if _, err := svc.CreateSession(ctx, 10, 2); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("CreateSession(foreign subject) error = %v, want %v", err, apperrors.ErrPermissionDenied)
	}
}

func TestGetOwnedSession(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestSessionService(store, 30*time.Minute, 5)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, 10, 1)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	if _, err := svc.GetOwnedSession(ctx, 10, session.ID); err != nil {
		t.Errorf("GetOwnedSession(owner) error = %v", err)
	}
	if _, err := svc.GetOwnedSession(ctx, 20, session.ID); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("GetOwnedSession(other teacher) error = %v, want %v", err, apperrors.ErrPermissionDenied)
	}
	if _, err := svc.GetOwnedSession(ctx, 10, session.ID+100); !errors.Is(err, apperrors.ErrSessionNotFound) {
		t.Errorf("GetOwnedSession(missing) error = %v, want %v", err, apperrors.ErrSessionNotFound)
	}
}

func TestListByTeacherNewestFirst(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestSessionService(store, 30*time.Minute, 5)
	ctx := context.Background()

	var created []int64
	for i := 0; i < 3; i++ {
		session, err := svc.CreateSession(ctx, 10, 1)
		if err != nil {
			t.Fatalf("CreateSession() error = %v", err)
		}
		created = append(created, session.ID)
	}

	sessions, err := svc.ListByTeacher(ctx, 10)
	if err != nil {
		t.Fatalf("ListByTeacher() error = %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("ListByTeacher() returned %d sessions, want 3", len(sessions))
	}
	for i, s := range sessions {
		if want := created[len(created)-1-i]; s.ID != want {
			t.Errorf("sessions[%d].ID = %d, want %d (newest first)", i, s.ID, want)
		}
	}
}

func TestSessionPayload(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestSessionService(store, 30*time.Minute, 5)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, 10, 1)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	payload, err := svc.Payload(ctx, 10, session.ID)
	if err != nil {
		t.Fatalf("Payload() error = %v", err)
	}
	want := "session:1;subject:1;code:" + session.Code
	if payload != want {
		t.Errorf("Payload() = %q, want %q", payload, want)
	}

	if _, err := svc.Payload(ctx, 20, session.ID); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("Payload(other teacher) error = %v, want %v", err, apperrors.ErrPermissionDenied)
	}
}
