package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pravah-api/internal/models"
)

func TestVolunteerRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewVolunteerRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"volunteer_id", "name", "password_hash", "created_at", "updated_at"}).
		AddRow("25NGP001", "Meera", "hash", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT volunteer_id, name, password_hash, created_at, updated_at FROM volunteers WHERE volunteer_id = $1 LIMIT 1")).
		WithArgs("25NGP001").
		WillReturnRows(rows)

	v, err := repo.FindByID(context.Background(), "25NGP001")
	require.NoError(t, err)
	assert.Equal(t, "Meera", v.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVolunteerRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewVolunteerRepository(db)

	mock.ExpectExec("INSERT INTO volunteers").WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Volunteer{VolunteerID: "25NGP001", Name: "Meera", PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestVolunteerRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewVolunteerRepository(db)

	mock.ExpectExec("UPDATE volunteers SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Volunteer{VolunteerID: "missing"})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestFeedbackRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectExec("INSERT INTO feedback_entries").WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Insert(context.Background(), &models.FeedbackEntry{ID: "F1", VolunteerID: "25NGP001", CenterID: "C1", Subject: "Books", Message: "Need more", Date: time.Now()})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
