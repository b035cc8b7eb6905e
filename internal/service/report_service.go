package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/pravah-api/internal/models"
)

// MonthlyReportRequest selects a center month. Month is zero based (0 = January).
type MonthlyReportRequest struct {
	CenterID string `json:"centerId" validate:"required"`
	Month    int    `json:"month" validate:"min=0,max=11"`
	Year     int    `json:"year" validate:"min=1,max=9999"`
	Class    string `json:"class"`
}

// ReportService computes monthly attendance statistics.
type ReportService struct {
	students   studentReader
	attendance attendanceReader
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    *MetricsService
}

// NewReportService constructs the report service.
func NewReportService(students studentReader, attendance attendanceReader, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *ReportService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{students: students, attendance: attendance, validator: validate, logger: logger, metrics: metrics}
}

// Monthly aggregates attendance of a center's students over one calendar month.
// Every record dated inside the month is a working day, including repeated submissions for the same day.
func (s *ReportService) Monthly(ctx context.Context, req MonthlyReportRequest) (*models.MonthlyReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid monthly report request")
	}
	className := strings.TrimSpace(req.Class)
	if className == "" {
		className = models.ClassFilterAll
	}

	started := time.Now()
	students, err := s.students.FindByCenter(ctx, req.CenterID)
	s.metrics.ObserveStoreOperation("students.find_by_center", time.Since(started), err)
	if err != nil {
		s.logger.Error("load students for monthly report", requestField(ctx), zap.String("center_id", req.CenterID), zap.Error(err))
		return nil, storeFailure(err, "failed to load students")
	}

	started = time.Now()
	records, err := s.attendance.FindByCenter(ctx, req.CenterID)
	s.metrics.ObserveStoreOperation("attendance.find_by_center", time.Since(started), err)
	if err != nil {
		s.logger.Error("load attendance for monthly report", requestField(ctx), zap.String("center_id", req.CenterID), zap.Error(err))
		return nil, storeFailure(err, "failed to load attendance")
	}

	first := time.Date(req.Year, time.Month(req.Month+1), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	workingDays := 0
	presentDays := make(map[string]int)
	for _, record := range records {
		day := models.CivilDate(record.Date)
		if day.Before(first) || day.After(last) {
			continue
		}
		workingDays++
		seen := make(map[string]struct{}, len(record.PresentStudentIDs))
		for _, id := range record.PresentStudentIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			presentDays[id]++
		}
	}

	stats := make([]models.StudentMonthlyStat, 0, len(students))
	var total float64
	for _, student := range students {
		if className != models.ClassFilterAll && student.ClassLevel != className {
			continue
		}
		present := presentDays[student.ID]
		var percentage float64
		if workingDays > 0 {
			percentage = float64(present) / float64(workingDays) * 100
		}
		total += percentage
		stats = append(stats, models.StudentMonthlyStat{
			StudentID:   student.ID,
			Name:        student.Name,
			PresentDays: present,
			Percentage:  percentage,
		})
	}

	var average float64
	if len(stats) > 0 {
		average = total / float64(len(stats))
	}

	return &models.MonthlyReport{
		CenterID:          req.CenterID,
		Month:             first.Month().String(),
		MonthIndex:        req.Month,
		Year:              req.Year,
		ClassName:         className,
		WorkingDays:       workingDays,
		AverageAttendance: average,
		TotalStudents:     len(stats),
		StudentStats:      stats,
	}, nil
}
