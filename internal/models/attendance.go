package models

import "time"

// AttendanceMode records how presence was captured.
type AttendanceMode string

const (
	AttendanceModeManual AttendanceMode = "MANUAL"
	AttendanceModeQR     AttendanceMode = "QR"
)

// Valid returns true when the mode is a supported value.
func (m AttendanceMode) Valid() bool {
	switch m {
	case AttendanceModeManual, AttendanceModeQR:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one attendance submission for a center and day.
type AttendanceRecord struct {
	ID                string         `db:"id" json:"id"`
	Date              time.Time      `db:"date" json:"date"`
	CenterID          string         `db:"center_id" json:"centerId"`
	PresentStudentIDs []string       `db:"-" json:"presentStudentIds"`
	Mode              AttendanceMode `db:"mode" json:"mode"`
	TotalStudents     int            `db:"total_students" json:"totalStudents"`
	CreatedBy         string         `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"createdAt"`
}

// IsPresent reports whether the student id was marked present in the record.
func (r *AttendanceRecord) IsPresent(studentID string) bool {
	for _, id := range r.PresentStudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}
