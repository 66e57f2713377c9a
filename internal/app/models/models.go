package models

// RoleType defines the role of a user in the system
type RoleType string

const (
	// RoleTeacher owns subjects and attendance sessions
	RoleTeacher RoleType = "teacher"
	// RoleStudent checks in against attendance sessions
	RoleStudent RoleType = "student"
)
