package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pravah-api/internal/models"
	"github.com/noah-isme/pravah-api/internal/repository"
)

var errStoreDown = errors.New("connection refused")

func mustDay(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DateLayout, raw)
	require.NoError(t, err)
	return d
}

func seedStudent(t *testing.T, store *repository.MemoryStore, s models.Student) {
	t.Helper()
	require.NoError(t, store.Students.Upsert(context.Background(), &s))
}

func seedAttendance(t *testing.T, store *repository.MemoryStore, id, centerID, date string, present ...string) {
	t.Helper()
	require.NoError(t, store.Attendance.Insert(context.Background(), &models.AttendanceRecord{
		ID:                id,
		Date:              mustDay(t, date),
		CenterID:          centerID,
		PresentStudentIDs: present,
		Mode:              models.AttendanceModeManual,
		TotalStudents:     3,
	}))
}

func seedDiary(t *testing.T, store *repository.MemoryStore, id, centerID, date, thought string) {
	t.Helper()
	require.NoError(t, store.Diary.Insert(context.Background(), &models.DiaryEntry{
		ID:           id,
		Date:         mustDay(t, date),
		CenterID:     centerID,
		StudentCount: 12,
		Thought:      thought,
		Volunteers:   []models.DiaryVolunteerEntry{{VolunteerID: "25NGP001", Name: "Meera", Status: models.VolunteerPresent}},
	}))
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

// unavailableStudents fails every call the way a lost database connection would.
type unavailableStudents struct{}

func (unavailableStudents) FindByID(context.Context, string) (*models.Student, error) {
	return nil, errStoreDown
}

func (unavailableStudents) FindByCenter(context.Context, string) ([]models.Student, error) {
	return nil, errStoreDown
}

func (unavailableStudents) Upsert(context.Context, *models.Student) error { return errStoreDown }

func (unavailableStudents) Delete(context.Context, string) (bool, error) { return false, errStoreDown }
