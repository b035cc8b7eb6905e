package service

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/pravah-api/internal/models"
)

var studentIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// NewValidator returns a validator with the domain tags registered:
// attendance_mode, volunteer_status, clock (HH:MM) and student_id.
func NewValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("student_id", func(fl validator.FieldLevel) bool {
		return studentIDPattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("attendance_mode", func(fl validator.FieldLevel) bool {
		return models.AttendanceMode(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("volunteer_status", func(fl validator.FieldLevel) bool {
		switch models.VolunteerStatus(fl.Field().String()) {
		case models.VolunteerPresent, models.VolunteerAbsent:
			return true
		}
		return false
	})
	_ = validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	})
	return validate
}
