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

// SaveAttendanceRequest is one attendance submission.
type SaveAttendanceRequest struct {
	Date              string                `json:"date" validate:"omitempty,datetime=2006-01-02"`
	CenterID          string                `json:"centerId"`
	PresentStudentIDs []string              `json:"presentStudentIds" validate:"dive,required"`
	Mode              models.AttendanceMode `json:"mode" validate:"required,attendance_mode"`
	TotalStudents     *int                  `json:"totalStudents" validate:"omitempty,min=0"`
}

// AttendanceService records attendance submissions.
type AttendanceService struct {
	repo      attendanceStore
	students  studentReader
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	location  *time.Location
	now       func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceStore, students studentReader, location *time.Location, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *AttendanceService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &AttendanceService{repo: repo, students: students, validator: validate, logger: logger, metrics: metrics, location: location, now: time.Now}
}

// Save appends an attendance record. Present ids are de-duplicated keeping first occurrence order.
// When totalStudents is omitted it is snapshotted from the center's current roster.
func (s *AttendanceService) Save(ctx context.Context, actor *models.JWTClaims, req SaveAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	centerID, err := resolveCenter(actor, req.CenterID)
	if err != nil {
		return nil, err
	}
	day, err := parseDay(req.Date, today(s.now, s.location))
	if err != nil {
		return nil, validationError(err, "invalid date")
	}

	record := &models.AttendanceRecord{
		ID:                uuid.NewString(),
		Date:              day,
		CenterID:          centerID,
		PresentStudentIDs: uniqueIDs(req.PresentStudentIDs),
		Mode:              req.Mode,
		CreatedAt:         s.now().UTC(),
	}
	if actor != nil {
		record.CreatedBy = actor.VolunteerID
	}
	if req.TotalStudents != nil {
		record.TotalStudents = *req.TotalStudents
	} else {
		roster, err := s.students.FindByCenter(ctx, centerID)
		if err != nil {
			return nil, storeFailure(err, "failed to count students")
		}
		record.TotalStudents = len(roster)
	}

	started := time.Now()
	err = s.repo.Insert(ctx, record)
	s.metrics.ObserveStoreOperation("attendance.insert", time.Since(started), err)
	if err != nil {
		s.logger.Error("insert attendance", requestField(ctx), zap.String("center_id", centerID), zap.Error(err))
		return nil, storeFailure(err, "failed to save attendance")
	}
	s.metrics.RecordCreated("attendance")
	return record, nil
}

// List returns attendance records of a center in submission order.
func (s *AttendanceService) List(ctx context.Context, centerID string) ([]models.AttendanceRecord, error) {
	records, err := s.repo.FindByCenter(ctx, centerID)
	if err != nil {
		return nil, storeFailure(err, "failed to list attendance")
	}
	return records, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
