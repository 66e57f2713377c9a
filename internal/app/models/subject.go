package models

import "time"

// Subject is a course a teacher takes attendance for.
// Immutable after creation.
type Subject struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TeacherID int64     `json:"teacherId"`
	CreatedAt time.Time `json:"createdAt"`

	// TeacherName is populated on listings for display purposes
	TeacherName string `json:"teacherName,omitempty"`
}
