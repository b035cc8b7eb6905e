package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/pravah-api/internal/models"
)

const attendanceColumns = `id, date, center_id, present_student_ids, mode, total_students, created_by, created_at`

type attendanceRow struct {
	models.AttendanceRecord
	Present pq.StringArray `db:"present_student_ids"`
}

func (row attendanceRow) record() models.AttendanceRecord {
	rec := row.AttendanceRecord
	rec.PresentStudentIDs = []string(row.Present)
	if rec.PresentStudentIDs == nil {
		rec.PresentStudentIDs = []string{}
	}
	return rec
}

// AttendanceRepository persists attendance records in PostgreSQL.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Insert appends an attendance record.
func (r *AttendanceRepository) Insert(ctx context.Context, record *models.AttendanceRecord) error {
	const query = `INSERT INTO attendance_records (` + attendanceColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query, record.ID, record.Date, record.CenterID, pq.Array(record.PresentStudentIDs),
		record.Mode, record.TotalStudents, record.CreatedBy, record.CreatedAt)
	if err != nil {
		if translate(err) == ErrDuplicate {
			return ErrDuplicate
		}
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

// FindByID fetches one attendance record.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	const query = `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE id = $1`
	var row attendanceRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err = translate(err); err == ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	rec := row.record()
	return &rec, nil
}

// FindByCenter lists attendance records in submission order; an empty center lists all.
func (r *AttendanceRepository) FindByCenter(ctx context.Context, centerID string) ([]models.AttendanceRecord, error) {
	const query = `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE ($1 = '' OR center_id = $1) ORDER BY seq`
	var rows []attendanceRow
	if err := r.db.SelectContext(ctx, &rows, query, centerID); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	records := make([]models.AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

// Delete removes an attendance record and reports whether a row matched.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.db, "attendance_records", id)
}
