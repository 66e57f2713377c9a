package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classtrack/classtrack/internal/app/models"
	"github.com/classtrack/classtrack/internal/pkg/dberrors"
)

// Attendance error types
var (
	ErrDuplicateRecord = errors.New("attendance already recorded for this session")
)

// attendanceUniqueConstraint is the unique index on (student_id, session_id).
// It is the authoritative duplicate-prevention mechanism; any in-memory or
// query-level check is a fast path only.
const attendanceUniqueConstraint = "attendance_records_student_session_key"

// AttendanceRepository handles database operations for attendance records
type AttendanceRepository struct {
	db *pgxpool.Pool
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{
		db: db,
	}
}

// HasRecord checks whether a record exists for the (student, session) pair.
// Used as a fast path before Insert; Insert remains the source of truth.
func (r *AttendanceRepository) HasRecord(ctx context.Context, studentID, sessionID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM attendance_records WHERE student_id = $1 AND session_id = $2)`,
		studentID, sessionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking attendance record existence: %w", err)
	}

	return exists, nil
}

// Insert creates an attendance record in a single statement. Concurrent
// duplicate submissions race on the unique constraint, never on a
// read-then-write; the losing insert gets ErrDuplicateRecord.
func (r *AttendanceRepository) Insert(ctx context.Context, record *models.AttendanceRecord) error {
	query := `
		INSERT INTO attendance_records (student_id, subject_id, session_id, marked_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		record.StudentID,
		record.SubjectID,
		record.SessionID,
		record.MarkedAt,
	).Scan(&record.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, attendanceUniqueConstraint) {
			return ErrDuplicateRecord
		}
		return fmt.Errorf("error inserting attendance record: %w", err)
	}

	return nil
}

// ListBySession returns the export feed rows for a session: one row per
// record, joined with the student identity. Order is deterministic.
func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID int64) ([]*models.AttendanceRow, error) {
	query := `
		SELECT a.student_id, u.name, u.email, a.subject_id, a.session_id, a.marked_at
		FROM attendance_records a
		JOIN users u ON u.id = a.student_id
		WHERE a.session_id = $1
		ORDER BY a.marked_at ASC, a.id ASC
	`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.AttendanceRow
	for rows.Next() {
		var row models.AttendanceRow
		if err := rows.Scan(
			&row.StudentID,
			&row.StudentName,
			&row.StudentEmail,
			&row.SubjectID,
			&row.SessionID,
			&row.MarkedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
