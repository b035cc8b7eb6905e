package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pravah-api/internal/models"
	"github.com/noah-isme/pravah-api/internal/service"
	"github.com/noah-isme/pravah-api/pkg/response"
)

type diaryService interface {
	Save(ctx context.Context, actor *models.JWTClaims, req service.SaveDiaryRequest) (*models.DiaryEntry, error)
	List(ctx context.Context, centerID string) ([]models.DiaryEntry, error)
}

// DiaryHandler records the center diary.
type DiaryHandler struct {
	service diaryService
}

// NewDiaryHandler constructs handler.
func NewDiaryHandler(svc diaryService) *DiaryHandler {
	return &DiaryHandler{service: svc}
}

// Save godoc
// @Summary Submit the daily diary
// @Tags Diary
// @Accept json
// @Produce json
// @Param payload body service.SaveDiaryRequest true "Diary payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /diary [post]
func (h *DiaryHandler) Save(c *gin.Context) {
	var req service.SaveDiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid diary payload"))
		return
	}
	entry, err := h.service.Save(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// List godoc
// @Summary Diary entries of a center
// @Tags Diary
// @Produce json
// @Param centerId query string false "Center ID, defaults to the volunteer's center"
// @Success 200 {object} response.Envelope
// @Router /diary [get]
func (h *DiaryHandler) List(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context(), centerFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}
