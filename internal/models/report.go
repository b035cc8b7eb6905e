package models

import "time"

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ClassFilterAll disables class filtering in monthly reports.
const ClassFilterAll = "All"

// CivilDate truncates t to its calendar day at UTC midnight.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StudentMonthlyStat is a single row of the monthly attendance report.
type StudentMonthlyStat struct {
	StudentID   string  `json:"studentId"`
	Name        string  `json:"name"`
	PresentDays int     `json:"presentDays"`
	Percentage  float64 `json:"percentage"`
}

// MonthlyReport summarises a center's attendance for one calendar month.
type MonthlyReport struct {
	CenterID          string               `json:"centerId"`
	Month             string               `json:"month"`
	MonthIndex        int                  `json:"monthIndex"`
	Year              int                  `json:"year"`
	ClassName         string               `json:"className"`
	WorkingDays       int                  `json:"workingDays"`
	AverageAttendance float64              `json:"averageAttendance"`
	TotalStudents     int                  `json:"totalStudents"`
	StudentStats      []StudentMonthlyStat `json:"studentStats"`
}
