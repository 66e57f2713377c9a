package services

import (
	"context"

	"github.com/classtrack/classtrack/internal/app/models"
)

// SubjectStore is the persistence surface the services need for subjects.
// Implemented by repositories.SubjectRepository.
type SubjectStore interface {
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id int64) (*models.Subject, error)
	GetAll(ctx context.Context) ([]*models.Subject, error)
	GetByTeacherID(ctx context.Context, teacherID int64) ([]*models.Subject, error)
}

// SessionStore is the persistence surface for attendance sessions.
// Implemented by repositories.SessionRepository.
type SessionStore interface {
	Create(ctx context.Context, session *models.AttendanceSession) error
	GetByID(ctx context.Context, id int64) (*models.AttendanceSession, error)
	GetByCode(ctx context.Context, code string) (*models.AttendanceSession, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]*models.AttendanceSession, error)
}

// AttendanceLedger is the persistence surface for attendance records.
// Implemented by repositories.AttendanceRepository. Insert must be atomic
// with respect to the (student, session) uniqueness guarantee.
type AttendanceLedger interface {
	HasRecord(ctx context.Context, studentID, sessionID int64) (bool, error)
	Insert(ctx context.Context, record *models.AttendanceRecord) error
	ListBySession(ctx context.Context, sessionID int64) ([]*models.AttendanceRow, error)
}

// Services bundles all service instances
type Services struct {
	SubjectService *SubjectService
	SessionService *SessionService
	CheckInService *CheckInService
	ExportService  *ExportService
}
