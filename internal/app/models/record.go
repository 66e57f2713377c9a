package models

import "time"

// AttendanceRecord is proof that one student checked in to one session.
// At most one record exists per (student, session) pair; the record is never
// mutated or deleted.
type AttendanceRecord struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"studentId"`
	SubjectID int64     `json:"subjectId"`
	SessionID int64     `json:"sessionId"`
	MarkedAt  time.Time `json:"markedAt"`
}

// AttendanceRow is one export feed row: a record joined with the student
// identity it belongs to.
type AttendanceRow struct {
	StudentID    int64     `json:"studentId"`
	StudentName  string    `json:"studentName"`
	StudentEmail string    `json:"studentEmail"`
	SubjectID    int64     `json:"subjectId"`
	SessionID    int64     `json:"sessionId"`
	MarkedAt     time.Time `json:"markedAt"`
}
