package repository

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/pravah-api/internal/models"
)

const diaryColumns = `id, date, center_id, student_count, in_time, out_time, thought, volunteers, created_by, created_at`

// volunteerShifts maps the diary volunteer list onto a JSONB column.
type volunteerShifts []models.DiaryVolunteerEntry

func (v volunteerShifts) Value() (driver.Value, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]models.DiaryVolunteerEntry(v))
}

func (v *volunteerShifts) Scan(src interface{}) error {
	var raw []byte
	switch value := src.(type) {
	case nil:
		*v = volunteerShifts{}
		return nil
	case []byte:
		raw = value
	case string:
		raw = []byte(value)
	default:
		return fmt.Errorf("scan volunteers: unsupported type %T", src)
	}
	return json.Unmarshal(raw, (*[]models.DiaryVolunteerEntry)(v))
}

type diaryRow struct {
	models.DiaryEntry
	Shifts volunteerShifts `db:"volunteers"`
}

func (row diaryRow) entry() models.DiaryEntry {
	entry := row.DiaryEntry
	entry.Volunteers = []models.DiaryVolunteerEntry(row.Shifts)
	if entry.Volunteers == nil {
		entry.Volunteers = []models.DiaryVolunteerEntry{}
	}
	return entry
}

// DiaryRepository persists diary entries in PostgreSQL.
type DiaryRepository struct {
	db *sqlx.DB
}

// NewDiaryRepository constructs a DiaryRepository.
func NewDiaryRepository(db *sqlx.DB) *DiaryRepository {
	return &DiaryRepository{db: db}
}

// Insert appends a diary entry.
func (r *DiaryRepository) Insert(ctx context.Context, entry *models.DiaryEntry) error {
	const query = `INSERT INTO diary_entries (` + diaryColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query, entry.ID, entry.Date, entry.CenterID, entry.StudentCount, entry.InTime,
		entry.OutTime, entry.Thought, volunteerShifts(entry.Volunteers), entry.CreatedBy, entry.CreatedAt)
	if err != nil {
		if translate(err) == ErrDuplicate {
			return ErrDuplicate
		}
		return fmt.Errorf("insert diary entry: %w", err)
	}
	return nil
}

// FindByID fetches one diary entry.
func (r *DiaryRepository) FindByID(ctx context.Context, id string) (*models.DiaryEntry, error) {
	const query = `SELECT ` + diaryColumns + ` FROM diary_entries WHERE id = $1`
	var row diaryRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err = translate(err); err == ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("find diary entry: %w", err)
	}
	entry := row.entry()
	return &entry, nil
}

// FindByCenter lists diary entries in submission order; an empty center lists all.
func (r *DiaryRepository) FindByCenter(ctx context.Context, centerID string) ([]models.DiaryEntry, error) {
	const query = `SELECT ` + diaryColumns + ` FROM diary_entries WHERE ($1 = '' OR center_id = $1) ORDER BY seq`
	var rows []diaryRow
	if err := r.db.SelectContext(ctx, &rows, query, centerID); err != nil {
		return nil, fmt.Errorf("list diary entries: %w", err)
	}
	entries := make([]models.DiaryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.entry())
	}
	return entries, nil
}

// Delete removes a diary entry and reports whether a row matched.
func (r *DiaryRepository) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.db, "diary_entries", id)
}
