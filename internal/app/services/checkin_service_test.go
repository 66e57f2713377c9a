package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/classtrack/classtrack/internal/app/models"
	"github.com/classtrack/classtrack/internal/app/repositories"
	"github.com/classtrack/classtrack/internal/pkg/qrpayload"
)

type fakeSessionStore struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[int64]*models.AttendanceSession
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{nextID: 1, sessions: make(map[int64]*models.AttendanceSession)}
}

func (f *fakeSessionStore) Create(_ context.Context, session *models.AttendanceSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.Code == session.Code {
			return repositories.ErrSessionCodeTaken
		}
	}
	session.ID = f.nextID
	f.nextID++
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionStore) GetByID(_ context.Context, id int64) (*models.AttendanceSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionStore) GetByCode(_ context.Context, code string) (*models.AttendanceSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.Code == code {
			copied := *s
			return &copied, nil
		}
	}
	return nil, repositories.ErrSessionNotFound
}

func (f *fakeSessionStore) ListByTeacher(_ context.Context, teacherID int64) ([]*models.AttendanceSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.AttendanceSession
	for id := f.nextID - 1; id >= 1; id-- {
		if s, ok := f.sessions[id]; ok && s.TeacherID == teacherID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

type pair struct{ student, session int64 }

// fakeLedger emulates the storage-layer uniqueness constraint: the check and
// the insert are indivisible under the mutex, as they are under Postgres.
type fakeLedger struct {
	mu      sync.Mutex
	nextID  int64
	records map[pair]*models.AttendanceRecord
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{nextID: 1, records: make(map[pair]*models.AttendanceRecord)}
}

func (f *fakeLedger) HasRecord(_ context.Context, studentID, sessionID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.records[pair{studentID, sessionID}]
	return ok, nil
}

func (f *fakeLedger) Insert(_ context.Context, record *models.AttendanceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pair{record.StudentID, record.SessionID}
	if _, ok := f.records[key]; ok {
		return repositories.ErrDuplicateRecord
	}
	record.ID = f.nextID
	f.nextID++
	copied := *record
	f.records[key] = &copied
	return nil
}

func (f *fakeLedger) ListBySession(_ context.Context, sessionID int64) ([]*models.AttendanceRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []*models.AttendanceRow
	for _, r := range f.records {
		if r.SessionID == sessionID {
			rows = append(rows, &models.AttendanceRow{
				StudentID: r.StudentID,
				SubjectID: r.SubjectID,
				SessionID: r.SessionID,
				MarkedAt:  r.MarkedAt,
			})
		}
	}
	return rows, nil
}

func (f *fakeLedger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestVerifier(t *testing.T, now time.Time) (*CheckInService, *fakeSessionStore, *fakeLedger, *models.AttendanceSession) {
	t.Helper()
	store := newFakeSessionStore()
	ledger := newFakeLedger()

	session := &models.AttendanceSession{
		TeacherID: 10,
		SubjectID: 1,
		Code:      "AB12CD",
		CreatedAt: t0,
		ExpiresAt: t0.Add(30 * time.Minute),
	}
	if err := store.Create(context.Background(), session); err != nil {
		t.Fatalf("seeding session: %v", err)
	}

	svc := NewCheckInService(store, ledger, nil, time.Hour, nil)
	svc.now = func() time.Time { return now }
	return svc, store, ledger, session
}

func TestCheckInOutcomes(t *testing.T) {
	tests := []struct {
		name  string
		now   time.Time
		input CheckInInput
		want  CheckInStatus
	}{
		{
			name:  "valid code within window",
			now:   t0.Add(10 * time.Minute),
			input: CheckInInput{Code: "AB12CD"},
			want:  CheckInMarked,
		},
		{
			name:  "code with surrounding whitespace",
			now:   t0.Add(10 * time.Minute),
			input: CheckInInput{Code: "  AB12CD  "},
			want:  CheckInMarked,
		},
		{
			name:  "valid payload within window",
			now:   t0.Add(10 * time.Minute),
			input: CheckInInput{QRContent: "session:1;subject:1;code:AB12CD"},
			want:  CheckInMarked,
		},
		{
			name:  "code past expiry",
			now:   t0.Add(31 * time.Minute),
			input: CheckInInput{Code: "AB12CD"},
			want:  CheckInExpired,
		},
		{
			name:  "payload past expiry",
			now:   t0.Add(31 * time.Minute),
			input: CheckInInput{QRContent: "session:1;subject:1;code:AB12CD"},
			want:  CheckInExpired,
		},
		{
			name:  "exactly at expiry still counts",
			now:   t0.Add(30 * time.Minute),
			input: CheckInInput{Code: "AB12CD"},
			want:  CheckInMarked,
		},
		{
			name:  "unknown code",
			now:   t0.Add(10 * time.Minute),
			input: CheckInInput{Code: "ZZZZZZ"},
			want:  CheckInSessionNotFound,
		},
		{
			name:  "payload for missing session",
			now:   t0.Add(10 * time.Minute),
			input: CheckInInput{QRContent: "session:5;subject:2;code:AB12CD"},
			want:  CheckInSessionNotFound,
		},
		{
			name:  "empty input",
			now:   t0.Add(10 * time.Minute),
			input: CheckInInput{},
			want:  CheckInNoInput,
		},
		{
			name:  "whitespace only input",
			now:   t0.Add(10 * time.Minute),
			input: CheckInInput{Code: "   ", QRContent: " "},
			want:  CheckInNoInput,
		},
		{
			name:  "empty payload string falls back to nothing",
			now:   t0.Add(10 * time.Minute),
			input: CheckInInput{QRContent: ""},
			want:  CheckInNoInput,
		},
		{
			name:  "garbage payload",
			now:   t0.Add(10 * time.Minute),
			input: CheckInInput{QRContent: "garbage"},
			want:  CheckInInvalidPayload,
		},
		{
			name:  "payload with non-numeric session id",
			now:   t0.Add(10 * time.Minute),
			input: CheckInInput{QRContent: "session:abc;subject:1;code:XY"},
			want:  CheckInInvalidPayload,
		},
		{
			name:  "payload code mismatching stored code",
			now:   t0.Add(10 * time.Minute),
			input: CheckInInput{QRContent: "session:1;subject:1;code:WRONG1"},
			want:  CheckInInvalidPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, ledger, _ := newTestVerifier(t, tt.now)

			result, err := svc.CheckIn(context.Background(), 42, tt.input)
			if err != nil {
				t.Fatalf("CheckIn() error = %v", err)
			}
			if result.Status != tt.want {
				t.Errorf("CheckIn() status = %v, want %v", result.Status, tt.want)
			}
			if tt.want == CheckInMarked {
				if result.Record == nil {
					t.Fatal("CheckIn() marked outcome missing record")
				}
				if ledger.count() != 1 {
					t.Errorf("ledger record count = %d, want 1", ledger.count())
				}
			} else if ledger.count() != 0 {
				t.Errorf("ledger record count = %d, want 0", ledger.count())
			}
		})
	}
}

func TestCheckInIdempotent(t *testing.T) {
	svc, _, ledger, _ := newTestVerifier(t, t0.Add(10*time.Minute))
	ctx := context.Background()

	first, err := svc.CheckIn(ctx, 42, CheckInInput{Code: "AB12CD"})
	if err != nil {
		t.Fatalf("first CheckIn() error = %v", err)
	}
	if first.Status != CheckInMarked {
		t.Fatalf("first CheckIn() status = %v, want %v", first.Status, CheckInMarked)
	}

	second, err := svc.CheckIn(ctx, 42, CheckInInput{Code: "AB12CD"})
	if err != nil {
		t.Fatalf("second CheckIn() error = %v", err)
	}
	if second.Status != CheckInAlreadyMarked {
		t.Errorf("second CheckIn() status = %v, want %v", second.Status, CheckInAlreadyMarked)
	}

	// Same student, other encoding: still a duplicate
	third, err := svc.CheckIn(ctx, 42, CheckInInput{QRContent: "session:1;subject:1;code:AB12CD"})
	if err != nil {
		t.Fatalf("third CheckIn() error = %v", err)
	}
	if third.Status != CheckInAlreadyMarked {
		t.Errorf("third CheckIn() status = %v, want %v", third.Status, CheckInAlreadyMarked)
	}

	if ledger.count() != 1 {
		t.Errorf("ledger record count = %d, want 1", ledger.count())
	}
}

func TestCheckInDifferentStudentsIndependent(t *testing.T) {
	svc, _, ledger, _ := newTestVerifier(t, t0.Add(10*time.Minute))
	ctx := context.Background()

	for _, studentID := range []int64{1, 2, 3} {
		result, err := svc.CheckIn(ctx, studentID, CheckInInput{Code: "AB12CD"})
		if err != nil {
			t.Fatalf("CheckIn(student %d) error = %v", studentID, err)
		}
		if result.Status != CheckInMarked {
			t.Errorf("CheckIn(student %d) status = %v, want %v", studentID, result.Status, CheckInMarked)
		}
	}

	if ledger.count() != 3 {
		t.Errorf("ledger record count = %d, want 3", ledger.count())
	}
}

func TestCheckInConcurrentDuplicates(t *testing.T) {
	svc, _, ledger, _ := newTestVerifier(t, t0.Add(10*time.Minute))
	ctx := context.Background()

	const n = 16
	results := make([]CheckInStatus, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := svc.CheckIn(ctx, 42, CheckInInput{Code: "AB12CD"})
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = result.Status
		}(i)
	}
	wg.Wait()

	var marked, alreadyMarked int
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("CheckIn() goroutine %d error = %v", i, errs[i])
		}
		switch results[i] {
		case CheckInMarked:
			marked++
		case CheckInAlreadyMarked:
			alreadyMarked++
		default:
			t.Errorf("unexpected status %v", results[i])
		}
	}

	if marked != 1 {
		t.Errorf("marked count = %d, want exactly 1", marked)
	}
	if alreadyMarked != n-1 {
		t.Errorf("already-marked count = %d, want %d", alreadyMarked, n-1)
	}
	if ledger.count() != 1 {
		t.Errorf("ledger record count = %d, want 1", ledger.count())
	}
}

func TestCheckInRecordFields(t *testing.T) {
	now := t0.Add(10 * time.Minute)
	svc, _, _, session := newTestVerifier(t, now)

	result, err := svc.CheckIn(context.Background(), 42, CheckInInput{Code: "AB12CD"})
	if err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}

	record := result.Record
	if record.StudentID != 42 {
		t.Errorf("record.StudentID = %d, want 42", record.StudentID)
	}
	if record.SubjectID != session.SubjectID {
		t.Errorf("record.SubjectID = %d, want %d", record.SubjectID, session.SubjectID)
	}
	if record.SessionID != session.ID {
		t.Errorf("record.SessionID = %d, want %d", record.SessionID, session.ID)
	}
	if !record.MarkedAt.Equal(now) {
		t.Errorf("record.MarkedAt = %v, want %v", record.MarkedAt, now)
	}
}

func TestCheckInPayloadRoundTripFromSession(t *testing.T) {
	svc, _, _, session := newTestVerifier(t, t0.Add(10*time.Minute))

	payload := qrpayload.Encode(session.ID, session.SubjectID, session.Code)
	result, err := svc.CheckIn(context.Background(), 42, CheckInInput{QRContent: payload})
	if err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if result.Status != CheckInMarked {
		t.Errorf("CheckIn() status = %v, want %v", result.Status, CheckInMarked)
	}
}
