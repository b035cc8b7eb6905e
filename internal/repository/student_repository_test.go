package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pravah-api/internal/models"
)

func newSQLMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var studentRowColumns = []string{"id", "center_id", "class_level", "name", "gender", "dob", "age", "school_name", "parent_name", "parent_occupation", "aadhaar", "contact", "registration_number", "admission_date", "admission_form_file", "created_by", "created_at", "updated_at"}

func TestStudentRepositoryFindByCenter(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(studentRowColumns).
		AddRow("S1", "C1", "5th", "Asha", "Female", nil, 10, "ZP School", "Ramesh", "Driver", "", "98", "R1", now, "", "25NGP001", now, now).
		AddRow("S2", "C1", "6th", "Ravi", "Male", now, 11, "", "", "", "", "", "", now, "", "", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE ($1 = '' OR center_id = $1) ORDER BY seq")).
		WithArgs("C1").
		WillReturnRows(rows)

	students, err := repo.FindByCenter(context.Background(), "C1")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "S1", students[0].ID)
	assert.Nil(t, students[0].DOB)
	assert.NotNil(t, students[1].DOB)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("(?s)INSERT INTO students.*ON CONFLICT \\(id\\) DO UPDATE").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Upsert(context.Background(), &models.Student{ID: "S1", CenterID: "C1", Name: "Asha", AdmissionDate: time.Now()})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE id = $1")).
		WithArgs("S1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE id = $1")).
		WithArgs("S1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.Delete(context.Background(), "S1")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Delete(context.Background(), "S1")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryPropagatesDriverErrors(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	boom := errors.New("connection refused")
	mock.ExpectQuery("FROM students").WillReturnError(boom)

	_, err := repo.FindByCenter(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
