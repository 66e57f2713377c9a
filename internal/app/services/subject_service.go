package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/classtrack/classtrack/internal/app/models"
	"github.com/classtrack/classtrack/internal/pkg/apperrors"
)

// SubjectService exposes the thin subject surface the attendance core needs:
// a teacher must own a subject before opening sessions for it. Anything
// beyond creation and listing belongs to the management collaborator.
type SubjectService struct {
	subjects SubjectStore
}

// NewSubjectService creates a new subject service instance
func NewSubjectService(subjects SubjectStore) *SubjectService {
	return &SubjectService{
		subjects: subjects,
	}
}

// CreateSubject creates a subject owned by the calling teacher
func (s *SubjectService) CreateSubject(ctx context.Context, teacherID int64, name string) (*models.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewBadRequestError("subject name cannot be empty")
	}

	subject := &models.Subject{
		Name:      name,
		TeacherID: teacherID,
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, fmt.Errorf("error creating subject: %w", err)
	}

	return subject, nil
}

// GetAllSubjects lists every subject with its teacher's display name
func (s *SubjectService) GetAllSubjects(ctx context.Context) ([]*models.Subject, error) {
	return s.subjects.GetAll(ctx)
}

// GetSubjectsByTeacher lists the subjects a teacher owns
func (s *SubjectService) GetSubjectsByTeacher(ctx context.Context, teacherID int64) ([]*models.Subject, error) {
	return s.subjects.GetByTeacherID(ctx, teacherID)
}
