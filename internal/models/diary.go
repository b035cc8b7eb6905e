package models

import "time"

// VolunteerStatus is the presence of a volunteer on a diary day.
type VolunteerStatus string

const (
	VolunteerPresent VolunteerStatus = "Present"
	VolunteerAbsent  VolunteerStatus = "Absent"
)

// DiaryVolunteerEntry logs one volunteer's shift in a diary entry.
type DiaryVolunteerEntry struct {
	VolunteerID  string          `json:"volunteerId"`
	Name         string          `json:"name"`
	InTime       string          `json:"inTime"`
	OutTime      string          `json:"outTime"`
	Status       VolunteerStatus `json:"status"`
	ClassHandled string          `json:"classHandled"`
	Subject      string          `json:"subject,omitempty"`
	Topic        string          `json:"topic,omitempty"`
}

// DiaryEntry captures the daily activity log of a center.
type DiaryEntry struct {
	ID           string                `db:"id" json:"id"`
	Date         time.Time             `db:"date" json:"date"`
	CenterID     string                `db:"center_id" json:"centerId"`
	StudentCount int                   `db:"student_count" json:"studentCount"`
	InTime       string                `db:"in_time" json:"inTime"`
	OutTime      string                `db:"out_time" json:"outTime"`
	Thought      string                `db:"thought" json:"thought"`
	Volunteers   []DiaryVolunteerEntry `db:"-" json:"volunteers"`
	CreatedBy    string                `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt    time.Time             `db:"created_at" json:"createdAt"`
}
