package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/pravah-api/internal/models"
	appErrors "github.com/noah-isme/pravah-api/pkg/errors"
)

// HistoryService merges students, attendance and diary records into one feed and routes deletions.
type HistoryService struct {
	students   studentStore
	attendance attendanceStore
	diary      diaryStore
	logger     *zap.Logger
	metrics    *MetricsService
}

// NewHistoryService constructs the history service.
func NewHistoryService(students studentStore, attendance attendanceStore, diary diaryStore, logger *zap.Logger, metrics *MetricsService) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{students: students, attendance: attendance, diary: diary, logger: logger, metrics: metrics}
}

// All returns every history item of a center (all centers when centerID is empty), newest first.
// Items sharing a date keep the order Admission, Attendance, Diary and store order inside each type.
func (s *HistoryService) All(ctx context.Context, centerID string) ([]models.HistoryItem, error) {
	started := time.Now()
	students, err := s.students.FindByCenter(ctx, centerID)
	s.metrics.ObserveStoreOperation("students.find_by_center", time.Since(started), err)
	if err != nil {
		return nil, storeFailure(err, "failed to load students")
	}
	started = time.Now()
	records, err := s.attendance.FindByCenter(ctx, centerID)
	s.metrics.ObserveStoreOperation("attendance.find_by_center", time.Since(started), err)
	if err != nil {
		return nil, storeFailure(err, "failed to load attendance")
	}
	started = time.Now()
	entries, err := s.diary.FindByCenter(ctx, centerID)
	s.metrics.ObserveStoreOperation("diary.find_by_center", time.Since(started), err)
	if err != nil {
		return nil, storeFailure(err, "failed to load diary")
	}

	items := make([]models.HistoryItem, 0, len(students)+len(records)+len(entries))
	for _, student := range students {
		items = append(items, admissionItem(student))
	}
	for _, record := range records {
		items = append(items, attendanceItem(record))
	}
	for _, entry := range entries {
		items = append(items, diaryItem(entry))
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})
	return items, nil
}

// List returns the feed narrowed by filter.
func (s *HistoryService) List(ctx context.Context, centerID string, filter models.HistoryFilter) ([]models.HistoryItem, error) {
	items, err := s.All(ctx, centerID)
	if err != nil {
		return nil, err
	}
	filtered := make([]models.HistoryItem, 0, len(items))
	for _, item := range items {
		if filter.Match(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// Get loads the history projection of a single record.
func (s *HistoryService) Get(ctx context.Context, historyType models.HistoryType, id string) (*models.HistoryItem, error) {
	var (
		item models.HistoryItem
		err  error
	)
	switch historyType {
	case models.HistoryTypeAdmission:
		var student *models.Student
		if student, err = s.students.FindByID(ctx, id); err == nil {
			item = admissionItem(*student)
		}
	case models.HistoryTypeAttendance:
		var record *models.AttendanceRecord
		if record, err = s.attendance.FindByID(ctx, id); err == nil {
			item = attendanceItem(*record)
		}
	case models.HistoryTypeDiary:
		var entry *models.DiaryEntry
		if entry, err = s.diary.FindByID(ctx, id); err == nil {
			item = diaryItem(*entry)
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown history type %q", historyType))
	}
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "history record not found")
		}
		return nil, storeFailure(err, "failed to load history record")
	}
	return &item, nil
}

// GetFor loads a history record when it belongs to the actor's city.
func (s *HistoryService) GetFor(ctx context.Context, actor *models.JWTClaims, historyType models.HistoryType, id string) (*models.HistoryItem, error) {
	item, err := s.Get(ctx, historyType, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeCenter(actor, item.CenterID); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteFor deletes on behalf of a volunteer, refusing records of another city's center.
// A missing record is not an error.
func (s *HistoryService) DeleteFor(ctx context.Context, actor *models.JWTClaims, id string, historyType models.HistoryType) error {
	item, err := s.Get(ctx, historyType, id)
	switch {
	case appErrors.HasCode(err, appErrors.ErrNotFound):
		return nil
	case err != nil:
		return err
	}
	if err := authorizeCenter(actor, item.CenterID); err != nil {
		s.logger.Warn("refused cross-city delete", requestField(ctx), zap.String("type", string(historyType)), zap.String("id", id), zap.String("center_id", item.CenterID))
		return err
	}
	return s.Delete(ctx, id, historyType)
}

// Delete removes the source record behind a history item. A missing record is not an error.
func (s *HistoryService) Delete(ctx context.Context, id string, historyType models.HistoryType) error {
	var (
		removed bool
		err     error
	)
	started := time.Now()
	switch historyType {
	case models.HistoryTypeAdmission:
		removed, err = s.students.Delete(ctx, id)
	case models.HistoryTypeAttendance:
		removed, err = s.attendance.Delete(ctx, id)
	case models.HistoryTypeDiary:
		removed, err = s.diary.Delete(ctx, id)
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown history type %q", historyType))
	}
	s.metrics.ObserveStoreOperation(strings.ToLower(string(historyType))+".delete", time.Since(started), err)
	if err != nil {
		s.logger.Error("delete history record", requestField(ctx), zap.String("type", string(historyType)), zap.String("id", id), zap.Error(err))
		return storeFailure(err, "failed to delete record")
	}
	if !removed {
		s.logger.Debug("history record already absent", zap.String("type", string(historyType)), zap.String("id", id))
	}
	return nil
}

func admissionItem(student models.Student) models.HistoryItem {
	parts := make([]string, 0, 3)
	if name := strings.TrimSpace(student.Name); name != "" {
		parts = append(parts, name)
	}
	if class := strings.TrimSpace(student.ClassLevel); class != "" {
		parts = append(parts, "Class "+class)
	}
	if school := strings.TrimSpace(student.SchoolName); school != "" {
		parts = append(parts, school)
	}
	return models.HistoryItem{
		ID:       student.ID,
		Type:     models.HistoryTypeAdmission,
		CenterID: student.CenterID,
		Date:     models.CivilDate(student.AdmissionDate),
		Details:  strings.Join(parts, " · "),
		Data:     student,
	}
}

func attendanceItem(record models.AttendanceRecord) models.HistoryItem {
	return models.HistoryItem{
		ID:       record.ID,
		Type:     models.HistoryTypeAttendance,
		CenterID: record.CenterID,
		Date:     models.CivilDate(record.Date),
		Details:  fmt.Sprintf("%d/%d present", len(record.PresentStudentIDs), record.TotalStudents),
		Data:     record,
	}
}

func diaryItem(entry models.DiaryEntry) models.HistoryItem {
	details := strings.TrimSpace(entry.Thought)
	if details == "" {
		details = fmt.Sprintf("%d students, %d volunteers", entry.StudentCount, len(entry.Volunteers))
	}
	return models.HistoryItem{
		ID:       entry.ID,
		Type:     models.HistoryTypeDiary,
		CenterID: entry.CenterID,
		Date:     models.CivilDate(entry.Date),
		Details:  details,
		Data:     entry,
	}
}
