package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/pravah-api/internal/models"
	appErrors "github.com/noah-isme/pravah-api/pkg/errors"
)

// SubmitFeedbackRequest is a message from the settings screen.
type SubmitFeedbackRequest struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// FeedbackService collects volunteer feedback.
type FeedbackService struct {
	repo      feedbackStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewFeedbackService constructs the feedback service.
func NewFeedbackService(repo feedbackStore, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// Submit appends feedback authored by the acting volunteer.
func (s *FeedbackService) Submit(ctx context.Context, actor *models.JWTClaims, req SubmitFeedbackRequest) (*models.FeedbackEntry, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing volunteer context")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid feedback payload")
	}
	entry := &models.FeedbackEntry{
		ID:            uuid.NewString(),
		VolunteerID:   actor.VolunteerID,
		VolunteerName: actor.Name,
		CenterID:      actor.CenterID,
		Subject:       strings.TrimSpace(req.Subject),
		Message:       strings.TrimSpace(req.Message),
		Date:          s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		s.logger.Error("insert feedback", requestField(ctx), zap.String("volunteer_id", actor.VolunteerID), zap.Error(err))
		return nil, storeFailure(err, "failed to save feedback")
	}
	return entry, nil
}

// List returns feedback of a center.
func (s *FeedbackService) List(ctx context.Context, centerID string) ([]models.FeedbackEntry, error) {
	entries, err := s.repo.FindByCenter(ctx, centerID)
	if err != nil {
		return nil, storeFailure(err, "failed to list feedback")
	}
	return entries, nil
}
