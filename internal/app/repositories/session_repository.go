package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classtrack/classtrack/internal/app/models"
	"github.com/classtrack/classtrack/internal/pkg/dberrors"
)

// Session error types
var (
	ErrSessionNotFound  = errors.New("attendance session not found")
	ErrSessionCodeTaken = errors.New("session code already in use")
)

// sessionCodeConstraint is the unique index on attendance_sessions.code
const sessionCodeConstraint = "attendance_sessions_code_key"

// SessionRepository handles database operations for attendance sessions
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{
		db: db,
	}
}

// Create persists a new attendance session and fills in its ID.
// Returns ErrSessionCodeTaken when the generated code collides with an
// existing one; callers regenerate and retry.
func (r *SessionRepository) Create(ctx context.Context, session *models.AttendanceSession) error {
	query := `
		INSERT INTO attendance_sessions (teacher_id, subject_id, code, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		session.TeacherID,
		session.SubjectID,
		session.Code,
		session.CreatedAt,
		session.ExpiresAt,
	).Scan(&session.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, sessionCodeConstraint) {
			return ErrSessionCodeTaken
		}
		return fmt.Errorf("error creating attendance session: %w", err)
	}

	return nil
}

// GetByID retrieves a session by ID
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*models.AttendanceSession, error) {
	query := `
		SELECT id, teacher_id, subject_id, code, created_at, expires_at
		FROM attendance_sessions
		WHERE id = $1
	`

	var session models.AttendanceSession
	err := r.db.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.TeacherID,
		&session.SubjectID,
		&session.Code,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("error retrieving attendance session: %w", err)
	}

	return &session, nil
}

// GetByCode retrieves a session by its code. Codes are matched exactly,
// case-sensitive, as generated (uppercase).
func (r *SessionRepository) GetByCode(ctx context.Context, code string) (*models.AttendanceSession, error) {
	query := `
		SELECT id, teacher_id, subject_id, code, created_at, expires_at
		FROM attendance_sessions
		WHERE code = $1
	`

	var session models.AttendanceSession
	err := r.db.QueryRow(ctx, query, code).Scan(
		&session.ID,
		&session.TeacherID,
		&session.SubjectID,
		&session.Code,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("error retrieving attendance session by code: %w", err)
	}

	return &session, nil
}

// ListByTeacher retrieves a teacher's sessions, newest first
func (r *SessionRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]*models.AttendanceSession, error) {
	query := `
		SELECT s.id, s.teacher_id, s.subject_id, s.code, s.created_at, s.expires_at, subj.name
		FROM attendance_sessions s
		LEFT JOIN subjects subj ON subj.id = s.subject_id
		WHERE s.teacher_id = $1
		ORDER BY s.created_at DESC, s.id DESC
	`

	rows, err := r.db.Query(ctx, query, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.AttendanceSession
	for rows.Next() {
		var session models.AttendanceSession
		var subjectName *string
		if err := rows.Scan(
			&session.ID,
			&session.TeacherID,
			&session.SubjectID,
			&session.Code,
			&session.CreatedAt,
			&session.ExpiresAt,
			&subjectName,
		); err != nil {
			return nil, err
		}
		if subjectName != nil {
			session.SubjectName = *subjectName
		}
		sessions = append(sessions, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}
