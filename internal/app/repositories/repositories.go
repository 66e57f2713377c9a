package repositories

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories bundles all repository instances
type Repositories struct {
	UserRepository       *UserRepository
	SubjectRepository    *SubjectRepository
	SessionRepository    *SessionRepository
	AttendanceRepository *AttendanceRepository
}

// NewRepositories creates all repositories against a shared pool
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db),
		SubjectRepository:    NewSubjectRepository(db),
		SessionRepository:    NewSessionRepository(db),
		AttendanceRepository: NewAttendanceRepository(db),
	}
}
