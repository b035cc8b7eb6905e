package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/pravah-api/internal/models"
)

const studentColumns = `id, center_id, class_level, name, gender, dob, age, school_name, parent_name, parent_occupation, aadhaar, contact, registration_number, admission_date, admission_form_file, created_by, created_at, updated_at`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Upsert inserts the student or overwrites the row with the same id. Admission order (seq) is kept.
func (r *StudentRepository) Upsert(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (` + studentColumns + `)
        VALUES (:id, :center_id, :class_level, :name, :gender, :dob, :age, :school_name, :parent_name, :parent_occupation, :aadhaar, :contact, :registration_number, :admission_date, :admission_form_file, :created_by, :created_at, :updated_at)
        ON CONFLICT (id) DO UPDATE SET center_id = EXCLUDED.center_id, class_level = EXCLUDED.class_level, name = EXCLUDED.name,
        gender = EXCLUDED.gender, dob = EXCLUDED.dob, age = EXCLUDED.age, school_name = EXCLUDED.school_name,
        parent_name = EXCLUDED.parent_name, parent_occupation = EXCLUDED.parent_occupation, aadhaar = EXCLUDED.aadhaar,
        contact = EXCLUDED.contact, registration_number = EXCLUDED.registration_number, admission_date = EXCLUDED.admission_date,
        admission_form_file = COALESCE(NULLIF(EXCLUDED.admission_form_file, ''), students.admission_form_file),
        updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("upsert student: %w", err)
	}
	return nil
}

// FindByID fetches a student by id.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err = translate(err); err == ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// FindByCenter lists students in admission order; an empty center lists every center.
func (r *StudentRepository) FindByCenter(ctx context.Context, centerID string) ([]models.Student, error) {
	const query = `SELECT ` + studentColumns + ` FROM students WHERE ($1 = '' OR center_id = $1) ORDER BY seq`
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, centerID); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// Delete removes a student and reports whether a row matched.
func (r *StudentRepository) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.db, "students", id)
}

func deleteByID(ctx context.Context, db *sqlx.DB, table, id string) (bool, error) {
	res, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}
	return affected > 0, nil
}
