package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/pravah-api/internal/models"
)

// VolunteerRepository provides database access for volunteer accounts.
type VolunteerRepository struct {
	db *sqlx.DB
}

// NewVolunteerRepository creates a new instance of VolunteerRepository.
func NewVolunteerRepository(db *sqlx.DB) *VolunteerRepository {
	return &VolunteerRepository{db: db}
}

// Create inserts a new volunteer. An existing id yields ErrDuplicate.
func (r *VolunteerRepository) Create(ctx context.Context, volunteer *models.Volunteer) error {
	now := time.Now().UTC()
	if volunteer.CreatedAt.IsZero() {
		volunteer.CreatedAt = now
	}
	volunteer.UpdatedAt = now

	const query = `INSERT INTO volunteers (volunteer_id, name, password_hash, created_at, updated_at) VALUES (:volunteer_id, :name, :password_hash, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, volunteer); err != nil {
		if translate(err) == ErrDuplicate {
			return ErrDuplicate
		}
		return fmt.Errorf("create volunteer: %w", err)
	}
	return nil
}

// FindByID returns a volunteer by identifier.
func (r *VolunteerRepository) FindByID(ctx context.Context, id string) (*models.Volunteer, error) {
	const query = `SELECT volunteer_id, name, password_hash, created_at, updated_at FROM volunteers WHERE volunteer_id = $1 LIMIT 1`
	var volunteer models.Volunteer
	if err := r.db.GetContext(ctx, &volunteer, query, id); err != nil {
		if err = translate(err); err == ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("find volunteer by id: %w", err)
	}
	return &volunteer, nil
}

// Update stores the mutable name and password hash.
func (r *VolunteerRepository) Update(ctx context.Context, volunteer *models.Volunteer) error {
	volunteer.UpdatedAt = time.Now().UTC()
	const query = `UPDATE volunteers SET name = :name, password_hash = :password_hash, updated_at = :updated_at WHERE volunteer_id = :volunteer_id`
	res, err := r.db.NamedExecContext(ctx, query, volunteer)
	if err != nil {
		return fmt.Errorf("update volunteer: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
