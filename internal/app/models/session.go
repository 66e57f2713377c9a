package models

import "time"

// AttendanceSession is a time-boxed invitation to check in, scoped to one
// subject and one teacher. Immutable after creation; the record persists
// past ExpiresAt for export and history.
type AttendanceSession struct {
	ID        int64     `json:"id"`
	TeacherID int64     `json:"teacherId"`
	SubjectID int64     `json:"subjectId"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`

	// SubjectName is populated on listings for display purposes
	SubjectName string `json:"subjectName,omitempty"`
}

// ExpiredAt reports whether the session is past its validity window at the
// given instant.
func (s *AttendanceSession) ExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
