package models

import "time"

// Volunteer is a registered center head or volunteer account.
type Volunteer struct {
	VolunteerID  string    `db:"volunteer_id" json:"volunteerId"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}
