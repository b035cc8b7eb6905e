package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pravah-api/internal/models"
	"github.com/noah-isme/pravah-api/internal/service"
	"github.com/noah-isme/pravah-api/pkg/response"
)

type attendanceService interface {
	Save(ctx context.Context, actor *models.JWTClaims, req service.SaveAttendanceRequest) (*models.AttendanceRecord, error)
	List(ctx context.Context, centerID string) ([]models.AttendanceRecord, error)
}

// AttendanceHandler records daily attendance.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Save godoc
// @Summary Submit attendance for a day
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.SaveAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Save(c *gin.Context) {
	var req service.SaveAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid attendance payload"))
		return
	}
	record, err := h.service.Save(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// List godoc
// @Summary Attendance records of a center
// @Tags Attendance
// @Produce json
// @Param centerId query string false "Center ID, defaults to the volunteer's center"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	records, err := h.service.List(c.Request.Context(), centerFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}
