package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pravah-api/internal/middleware"
	"github.com/noah-isme/pravah-api/internal/models"
	"github.com/noah-isme/pravah-api/internal/service"
	appErrors "github.com/noah-isme/pravah-api/pkg/errors"
	"github.com/noah-isme/pravah-api/pkg/response"
)

type historyService interface {
	List(ctx context.Context, centerID string, filter models.HistoryFilter) ([]models.HistoryItem, error)
	DeleteFor(ctx context.Context, actor *models.JWTClaims, id string, historyType models.HistoryType) error
}

type historyExporter interface {
	History(ctx context.Context, centerID string, filter models.HistoryFilter, format service.ExportFormat) (*service.ExportDocument, error)
	HistoryRecord(ctx context.Context, actor *models.JWTClaims, historyType models.HistoryType, id string, format service.ExportFormat) (*service.ExportDocument, error)
}

// HistoryHandler serves the merged activity feed.
type HistoryHandler struct {
	history historyService
	exports historyExporter
}

// NewHistoryHandler constructs handler.
func NewHistoryHandler(history historyService, exports historyExporter) *HistoryHandler {
	return &HistoryHandler{history: history, exports: exports}
}

// List godoc
// @Summary Merged history feed, newest first
// @Tags History
// @Produce json
// @Param type query string false "ALL, Admission, Attendance or Diary" default(ALL)
// @Param centerId query string false "Center ID; omitted means every center of the volunteer's city"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /history [get]
func (h *HistoryHandler) List(c *gin.Context) {
	filter, err := h.scopedFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.history.List(c.Request.Context(), strings.TrimSpace(c.Query("centerId")), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, middleware.ResponseMeta(c, map[string]interface{}{
		"count": len(items),
		"type":  filter.String(),
	}))
}

// Delete godoc
// @Summary Delete the record behind a history item
// @Tags History
// @Param type path string true "Admission, Attendance or Diary"
// @Param id path string true "Record ID"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /history/{type}/{id} [delete]
func (h *HistoryHandler) Delete(c *gin.Context) {
	historyType, err := parseType(c.Param("type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.history.DeleteFor(c.Request.Context(), claimsFromContext(c), c.Param("id"), historyType); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Download the history feed
// @Tags History
// @Produce application/pdf
// @Produce text/csv
// @Param type query string false "ALL, Admission, Attendance or Diary"
// @Param centerId query string false "Center ID"
// @Param format query string false "pdf or csv" default(pdf)
// @Success 200 {file} file
// @Router /history/export [get]
func (h *HistoryHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	filter, err := h.scopedFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.exports.History(c.Request.Context(), strings.TrimSpace(c.Query("centerId")), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, doc.Filename, doc.ContentType, doc.Content)
}

// Document godoc
// @Summary Download one history record
// @Tags History
// @Produce application/pdf
// @Produce text/csv
// @Param type path string true "Admission, Attendance or Diary"
// @Param id path string true "Record ID"
// @Param format query string false "pdf or csv" default(pdf)
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /history/{type}/{id}/document [get]
func (h *HistoryHandler) Document(c *gin.Context) {
	historyType, err := parseType(c.Param("type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.exports.HistoryRecord(c.Request.Context(), claimsFromContext(c), historyType, c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, doc.Filename, doc.ContentType, doc.Content)
}

// scopedFilter parses the type filter. Without a centerId the feed is kept to the volunteer's city.
func (h *HistoryHandler) scopedFilter(c *gin.Context) (models.HistoryFilter, error) {
	filter, err := parseFilter(c.Query("type"))
	if err != nil {
		return filter, err
	}
	if strings.TrimSpace(c.Query("centerId")) == "" {
		if claims := claimsFromContext(c); claims != nil {
			filter.CenterIDs = models.CityCenterIDs(claims.CenterID)
		}
	}
	return filter, nil
}

func parseFilter(raw string) (models.HistoryFilter, error) {
	filter, err := models.ParseHistoryFilter(raw)
	if err != nil {
		return filter, bindError(err, "type must be ALL, Admission, Attendance or Diary")
	}
	return filter, nil
}

func parseType(raw string) (models.HistoryType, error) {
	t, err := models.ParseHistoryType(raw)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "type must be Admission, Attendance or Diary")
	}
	return t, nil
}
