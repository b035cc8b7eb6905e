package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/pravah-api/internal/models"
)

// StudentStore persists admissions keyed by student id.
type StudentStore interface {
	Upsert(ctx context.Context, student *models.Student) error
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByCenter(ctx context.Context, centerID string) ([]models.Student, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// AttendanceStore persists attendance submissions.
type AttendanceStore interface {
	Insert(ctx context.Context, record *models.AttendanceRecord) error
	FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
	FindByCenter(ctx context.Context, centerID string) ([]models.AttendanceRecord, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// DiaryStore persists diary entries.
type DiaryStore interface {
	Insert(ctx context.Context, entry *models.DiaryEntry) error
	FindByID(ctx context.Context, id string) (*models.DiaryEntry, error)
	FindByCenter(ctx context.Context, centerID string) ([]models.DiaryEntry, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// FeedbackStore persists volunteer feedback.
type FeedbackStore interface {
	Insert(ctx context.Context, entry *models.FeedbackEntry) error
	FindByCenter(ctx context.Context, centerID string) ([]models.FeedbackEntry, error)
}

// VolunteerStore persists volunteer accounts.
type VolunteerStore interface {
	Create(ctx context.Context, volunteer *models.Volunteer) error
	FindByID(ctx context.Context, id string) (*models.Volunteer, error)
	Update(ctx context.Context, volunteer *models.Volunteer) error
}

// StudentSequence hands out per-center counters for generated student ids.
type StudentSequence interface {
	Next(ctx context.Context, centerID string) (int64, error)
}

// Stores bundles one implementation per collection.
type Stores struct {
	Students   StudentStore
	Attendance AttendanceStore
	Diary      DiaryStore
	Feedback   FeedbackStore
	Volunteers VolunteerStore
}

// Stores exposes the memory collections through the store interfaces.
func (m *MemoryStore) Stores() Stores {
	return Stores{
		Students:   m.Students,
		Attendance: m.Attendance,
		Diary:      m.Diary,
		Feedback:   m.Feedback,
		Volunteers: m.Volunteers,
	}
}

// NewPostgresStores builds the sqlx backed collections.
func NewPostgresStores(db *sqlx.DB) Stores {
	return Stores{
		Students:   NewStudentRepository(db),
		Attendance: NewAttendanceRepository(db),
		Diary:      NewDiaryRepository(db),
		Feedback:   NewFeedbackRepository(db),
		Volunteers: NewVolunteerRepository(db),
	}
}
