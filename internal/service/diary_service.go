package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/pravah-api/internal/models"
)

// DiaryVolunteerRequest is one volunteer row of a diary submission.
type DiaryVolunteerRequest struct {
	VolunteerID  string                 `json:"volunteerId" validate:"required"`
	Name         string                 `json:"name" validate:"required"`
	InTime       string                 `json:"inTime" validate:"omitempty,clock"`
	OutTime      string                 `json:"outTime" validate:"omitempty,clock"`
	Status       models.VolunteerStatus `json:"status" validate:"required,volunteer_status"`
	ClassHandled string                 `json:"classHandled"`
	Subject      string                 `json:"subject"`
	Topic        string                 `json:"topic"`
}

// SaveDiaryRequest is a daily activity log submission.
type SaveDiaryRequest struct {
	Date         string                  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	CenterID     string                  `json:"centerId"`
	StudentCount int                     `json:"studentCount" validate:"min=0"`
	InTime       string                  `json:"inTime" validate:"omitempty,clock"`
	OutTime      string                  `json:"outTime" validate:"omitempty,clock"`
	Thought      string                  `json:"thought" validate:"max=2000"`
	Volunteers   []DiaryVolunteerRequest `json:"volunteers" validate:"dive"`
}

// DiaryService records the daily center diary.
type DiaryService struct {
	repo      diaryStore
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	location  *time.Location
	now       func() time.Time
}

// NewDiaryService constructs the diary service.
func NewDiaryService(repo diaryStore, location *time.Location, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *DiaryService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &DiaryService{repo: repo, validator: validate, logger: logger, metrics: metrics, location: location, now: time.Now}
}

// Save appends a diary entry.
func (s *DiaryService) Save(ctx context.Context, actor *models.JWTClaims, req SaveDiaryRequest) (*models.DiaryEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid diary payload")
	}
	centerID, err := resolveCenter(actor, req.CenterID)
	if err != nil {
		return nil, err
	}
	day, err := parseDay(req.Date, today(s.now, s.location))
	if err != nil {
		return nil, validationError(err, "invalid date")
	}

	entry := &models.DiaryEntry{
		ID:           uuid.NewString(),
		Date:         day,
		CenterID:     centerID,
		StudentCount: req.StudentCount,
		InTime:       req.InTime,
		OutTime:      req.OutTime,
		Thought:      strings.TrimSpace(req.Thought),
		Volunteers:   make([]models.DiaryVolunteerEntry, 0, len(req.Volunteers)),
		CreatedAt:    s.now().UTC(),
	}
	if actor != nil {
		entry.CreatedBy = actor.VolunteerID
	}
	for _, v := range req.Volunteers {
		entry.Volunteers = append(entry.Volunteers, models.DiaryVolunteerEntry{
			VolunteerID:  v.VolunteerID,
			Name:         v.Name,
			InTime:       v.InTime,
			OutTime:      v.OutTime,
			Status:       v.Status,
			ClassHandled: v.ClassHandled,
			Subject:      v.Subject,
			Topic:        v.Topic,
		})
	}

	started := time.Now()
	err = s.repo.Insert(ctx, entry)
	s.metrics.ObserveStoreOperation("diary.insert", time.Since(started), err)
	if err != nil {
		s.logger.Error("insert diary entry", requestField(ctx), zap.String("center_id", centerID), zap.Error(err))
		return nil, storeFailure(err, "failed to save diary entry")
	}
	s.metrics.RecordCreated("diary")
	return entry, nil
}

// List returns diary entries of a center in submission order.
func (s *DiaryService) List(ctx context.Context, centerID string) ([]models.DiaryEntry, error) {
	entries, err := s.repo.FindByCenter(ctx, centerID)
	if err != nil {
		return nil, storeFailure(err, "failed to list diary entries")
	}
	return entries, nil
}
