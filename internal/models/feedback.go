package models

import "time"

// FeedbackEntry is a message sent by a volunteer from the settings screen.
type FeedbackEntry struct {
	ID            string    `db:"id" json:"id"`
	VolunteerID   string    `db:"volunteer_id" json:"volunteerId"`
	VolunteerName string    `db:"volunteer_name" json:"volunteerName"`
	CenterID      string    `db:"center_id" json:"centerId"`
	Subject       string    `db:"subject" json:"subject"`
	Message       string    `db:"message" json:"message"`
	Date          time.Time `db:"date" json:"date"`
}
