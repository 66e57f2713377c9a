package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/classtrack/classtrack/internal/app/models"
	appRepos "github.com/classtrack/classtrack/internal/app/repositories"
)

// CreateDefaultData seeds a demo teacher, student and subject so a fresh
// deployment is immediately usable. Identities are keyed by email, so
// re-running is harmless.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	subjectRepo := appRepos.NewSubjectRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data (demo users and subject)...")
	var finalErr error

	teacher := &appModels.User{
		Name:     "Demo Teacher",
		Email:    "teacher@classtrack.local",
		RoleType: appModels.RoleTeacher,
	}
	if err := userRepo.Upsert(ctx, teacher); err != nil {
		lgr.Error().Err(err).Msg("Error seeding demo teacher")
		finalErr = errors.Join(finalErr, err)
	}

	student := &appModels.User{
		Name:     "Demo Student",
		Email:    "student@classtrack.local",
		RoleType: appModels.RoleStudent,
	}
	if err := userRepo.Upsert(ctx, student); err != nil {
		lgr.Error().Err(err).Msg("Error seeding demo student")
		finalErr = errors.Join(finalErr, err)
	}

	if teacher.ID > 0 {
		subjects, err := subjectRepo.GetByTeacherID(ctx, teacher.ID)
		if err != nil {
			lgr.Error().Err(err).Msg("Error checking demo teacher subjects")
			finalErr = errors.Join(finalErr, err)
		} else if len(subjects) == 0 {
			subject := &appModels.Subject{
				Name:      "Introduction to Databases",
				TeacherID: teacher.ID,
			}
			if err := subjectRepo.Create(ctx, subject); err != nil {
				lgr.Error().Err(err).Msg("Error seeding demo subject")
				finalErr = errors.Join(finalErr, err)
			} else {
				lgr.Info().Int64("subjectID", subject.ID).Msg("Demo subject created")
			}
		}
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}
