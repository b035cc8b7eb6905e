package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/pravah-api/internal/models"
)

// FeedbackRepository persists volunteer feedback.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs a FeedbackRepository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Insert appends a feedback entry.
func (r *FeedbackRepository) Insert(ctx context.Context, entry *models.FeedbackEntry) error {
	const query = `INSERT INTO feedback_entries (id, volunteer_id, volunteer_name, center_id, subject, message, date)
        VALUES (:id, :volunteer_id, :volunteer_name, :center_id, :subject, :message, :date)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// FindByCenter lists feedback in submission order; an empty center lists all.
func (r *FeedbackRepository) FindByCenter(ctx context.Context, centerID string) ([]models.FeedbackEntry, error) {
	const query = `SELECT id, volunteer_id, volunteer_name, center_id, subject, message, date FROM feedback_entries WHERE ($1 = '' OR center_id = $1) ORDER BY seq`
	entries := []models.FeedbackEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, centerID); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return entries, nil
}
