package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pravah-api/internal/models"
)

func TestDiaryRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewDiaryRepository(db)

	mock.ExpectExec("INSERT INTO diary_entries").
		WithArgs("D1", sqlmock.AnyArg(), "C1", 12, "16:00", "18:00", "Be kind", sqlmock.AnyArg(), "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Insert(context.Background(), &models.DiaryEntry{
		ID: "D1", Date: time.Now(), CenterID: "C1", StudentCount: 12, InTime: "16:00", OutTime: "18:00", Thought: "Be kind",
		Volunteers: []models.DiaryVolunteerEntry{{VolunteerID: "25NGP001", Status: models.VolunteerPresent}},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiaryRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewDiaryRepository(db)

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "date", "center_id", "student_count", "in_time", "out_time", "thought", "volunteers", "created_by", "created_at"}).
		AddRow("D1", day, "C1", 12, "16:00", "18:00", "", []byte(`[{"volunteerId":"25NGP001","name":"Meera","status":"Present"}]`), "", day)
	mock.ExpectQuery(regexp.QuoteMeta("FROM diary_entries WHERE id = $1")).
		WithArgs("D1").
		WillReturnRows(rows)

	entry, err := repo.FindByID(context.Background(), "D1")
	require.NoError(t, err)
	require.Len(t, entry.Volunteers, 1)
	assert.Equal(t, "Meera", entry.Volunteers[0].Name)
	assert.Equal(t, models.VolunteerPresent, entry.Volunteers[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVolunteerShiftsValue(t *testing.T) {
	raw, err := volunteerShifts(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), raw)

	var shifts volunteerShifts
	require.NoError(t, shifts.Scan(`[{"volunteerId":"X"}]`))
	assert.Equal(t, "X", shifts[0].VolunteerID)
	assert.Error(t, shifts.Scan(42))
}

func TestDiaryRepositoryFindByCenter(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewDiaryRepository(db)

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "date", "center_id", "student_count", "in_time", "out_time", "thought", "volunteers", "created_by", "created_at"}).
		AddRow("D1", day, "NGP-C1", 12, "16:00", "18:00", "Be kind", []byte(`[{"volunteerId":"25NGP001","name":"Meera","status":"Present"}]`), "25NGP001", day).
		AddRow("D2", day.AddDate(0, 0, 1), "NGP-C1", 9, "16:00", "17:30", "", []byte(`[{"volunteerId":"25NGP002","name":"Ravi","status":"Absent"},{"volunteerId":"25NGP003","name":"Kiran","status":"Present"}]`), "25NGP002", day)
	mock.ExpectQuery(regexp.QuoteMeta("FROM diary_entries WHERE ($1 = '' OR center_id = $1) ORDER BY seq")).
		WithArgs("NGP-C1").
		WillReturnRows(rows)

	entries, err := repo.FindByCenter(context.Background(), "NGP-C1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "D1", entries[0].ID)
	assert.Equal(t, "D2", entries[1].ID)
	require.Len(t, entries[1].Volunteers, 2)
	assert.Equal(t, models.VolunteerAbsent, entries[1].Volunteers[0].Status)
	assert.Equal(t, "Kiran", entries[1].Volunteers[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiaryRepositoryDeleteMissingRow(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewDiaryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM diary_entries WHERE id = $1")).
		WithArgs("D404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.Delete(context.Background(), "D404")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
