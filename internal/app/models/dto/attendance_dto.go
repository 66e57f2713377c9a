package dto

import "time"

// CreateSubjectRequest creates a subject owned by the calling teacher
type CreateSubjectRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// CreateSessionRequest opens an attendance session for a subject
type CreateSessionRequest struct {
	SubjectID int64 `json:"subjectId" binding:"required,gt=0"`
}

// SessionResponse describes an attendance session
type SessionResponse struct {
	ID          int64     `json:"id"`
	SubjectID   int64     `json:"subjectId"`
	SubjectName string    `json:"subjectName,omitempty"`
	Code        string    `json:"code"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// SessionPayloadResponse carries the scannable payload string for a session.
// Rendering the QR image itself is the frontend's job.
type SessionPayloadResponse struct {
	SessionID int64  `json:"sessionId"`
	Payload   string `json:"payload"`
}

// CheckInRequest submits either a typed code or a scanned payload.
// Both fields optional at the binding level; the verifier decides NoInput.
type CheckInRequest struct {
	Code      string `json:"code"`
	QRContent string `json:"qr_content"`
}

// CheckInResponse reports the outcome of a check-in attempt
type CheckInResponse struct {
	Outcome  string          `json:"outcome"`
	Category string          `json:"category"`
	Message  string          `json:"message"`
	Record   *RecordResponse `json:"record,omitempty"`
}

// RecordResponse describes a committed attendance record
type RecordResponse struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"studentId"`
	SubjectID int64     `json:"subjectId"`
	SessionID int64     `json:"sessionId"`
	MarkedAt  time.Time `json:"markedAt"`
}
