package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pravah-api/internal/models"
	"github.com/noah-isme/pravah-api/internal/service"
	"github.com/noah-isme/pravah-api/pkg/response"
)

type feedbackService interface {
	Submit(ctx context.Context, actor *models.JWTClaims, req service.SubmitFeedbackRequest) (*models.FeedbackEntry, error)
	List(ctx context.Context, centerID string) ([]models.FeedbackEntry, error)
}

// FeedbackHandler collects volunteer feedback.
type FeedbackHandler struct {
	service feedbackService
}

// NewFeedbackHandler constructs handler.
func NewFeedbackHandler(svc feedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: svc}
}

// Submit godoc
// @Summary Send feedback
// @Tags Feedback
// @Accept json
// @Produce json
// @Param payload body service.SubmitFeedbackRequest true "Feedback"
// @Success 201 {object} response.Envelope
// @Router /feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req service.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid feedback payload"))
		return
	}
	entry, err := h.service.Submit(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// List godoc
// @Summary Feedback of a center
// @Tags Feedback
// @Produce json
// @Param centerId query string false "Center ID, defaults to the volunteer's center"
// @Success 200 {object} response.Envelope
// @Router /feedback [get]
func (h *FeedbackHandler) List(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context(), centerFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}
