package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrRecordNotFound is returned by lookups that match no row.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert collides with an existing key.
	ErrDuplicate = errors.New("record already exists")
)

const uniqueViolation = "23505"

func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRecordNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}
