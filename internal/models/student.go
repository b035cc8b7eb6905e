package models

import "time"

// Gender values accepted on the admission form.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// Student represents a child admitted at a center. ID is the human facing business key.
type Student struct {
	ID                 string     `db:"id" json:"id"`
	CenterID           string     `db:"center_id" json:"centerId"`
	ClassLevel         string     `db:"class_level" json:"classLevel"`
	Name               string     `db:"name" json:"name"`
	Gender             string     `db:"gender" json:"gender"`
	DOB                *time.Time `db:"dob" json:"dob,omitempty"`
	Age                int        `db:"age" json:"age"`
	SchoolName         string     `db:"school_name" json:"schoolName"`
	ParentName         string     `db:"parent_name" json:"parentName"`
	ParentOccupation   string     `db:"parent_occupation" json:"parentOccupation"`
	Aadhaar            string     `db:"aadhaar" json:"aadhaar"`
	Contact            string     `db:"contact" json:"contact"`
	RegistrationNumber string     `db:"registration_number" json:"registrationNumber"`
	AdmissionDate      time.Time  `db:"admission_date" json:"admissionDate"`
	AdmissionFormFile  string     `db:"admission_form_file" json:"admissionFormFile,omitempty"`
	CreatedBy          string     `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updatedAt"`
}

// StudentFilter narrows student listings.
type StudentFilter struct {
	CenterID   string
	ClassLevel string
	Search     string
}
