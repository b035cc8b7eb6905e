package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/pravah-api/internal/models"
	"github.com/noah-isme/pravah-api/internal/repository"
	appErrors "github.com/noah-isme/pravah-api/pkg/errors"
	"github.com/noah-isme/pravah-api/pkg/middleware/requestid"
)

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByCenter(ctx context.Context, centerID string) ([]models.Student, error)
}

type studentStore interface {
	studentReader
	Upsert(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) (bool, error)
}

type attendanceReader interface {
	FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
	FindByCenter(ctx context.Context, centerID string) ([]models.AttendanceRecord, error)
}

type attendanceStore interface {
	attendanceReader
	Insert(ctx context.Context, record *models.AttendanceRecord) error
	Delete(ctx context.Context, id string) (bool, error)
}

type diaryReader interface {
	FindByID(ctx context.Context, id string) (*models.DiaryEntry, error)
	FindByCenter(ctx context.Context, centerID string) ([]models.DiaryEntry, error)
}

type diaryStore interface {
	diaryReader
	Insert(ctx context.Context, entry *models.DiaryEntry) error
	Delete(ctx context.Context, id string) (bool, error)
}

type feedbackStore interface {
	Insert(ctx context.Context, entry *models.FeedbackEntry) error
	FindByCenter(ctx context.Context, centerID string) ([]models.FeedbackEntry, error)
}

type volunteerStore interface {
	Create(ctx context.Context, volunteer *models.Volunteer) error
	FindByID(ctx context.Context, id string) (*models.Volunteer, error)
	Update(ctx context.Context, volunteer *models.Volunteer) error
}

type studentSequence interface {
	Next(ctx context.Context, centerID string) (int64, error)
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrRecordNotFound)
}

// storeFailure converts a persistence error into the single store failure signal.
func storeFailure(err error, message string) error {
	return appErrors.Unavailable(err, message)
}

func requestField(ctx context.Context) zap.Field {
	return zap.String("request_id", requestid.FromContext(ctx))
}

// resolveCenter picks the center a write targets: the requested one or the actor's own.
// The center must be in the catalog and, with an actor, in the actor's city.
func resolveCenter(actor *models.JWTClaims, requested string) (string, error) {
	centerID := strings.TrimSpace(requested)
	if centerID == "" && actor != nil {
		centerID = actor.CenterID
	}
	if centerID == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "centerId is required")
	}
	if _, ok := models.FindCenter(centerID); !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, "unknown center "+centerID)
	}
	if err := authorizeCenter(actor, centerID); err != nil {
		return "", err
	}
	return centerID, nil
}

// authorizeCenter refuses records of a center outside the actor's city. A nil actor is trusted.
func authorizeCenter(actor *models.JWTClaims, centerID string) error {
	if actor == nil || models.SameCity(actor.CenterID, centerID) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "center belongs to another city")
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// today returns the current calendar day in loc as a civil date.
func today(now func() time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return models.CivilDate(now().In(loc))
}

// parseDay parses an optional YYYY-MM-DD value, falling back to fallback when blank.
func parseDay(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	day, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	return day, nil
}
