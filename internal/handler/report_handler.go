package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pravah-api/internal/models"
	"github.com/noah-isme/pravah-api/internal/service"
	"github.com/noah-isme/pravah-api/pkg/response"
)

type monthlyReportService interface {
	Monthly(ctx context.Context, req service.MonthlyReportRequest) (*models.MonthlyReport, error)
}

type reportExporter interface {
	MonthlyReport(ctx context.Context, req service.MonthlyReportRequest, format service.ExportFormat) (*service.ExportDocument, error)
}

// ReportHandler exposes the monthly attendance report.
type ReportHandler struct {
	reports monthlyReportService
	exports reportExporter
	now     func() time.Time
}

// NewReportHandler constructs handler.
func NewReportHandler(reports monthlyReportService, exports reportExporter) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports, now: time.Now}
}

// Monthly godoc
// @Summary Monthly attendance report
// @Tags Reports
// @Produce json
// @Param centerId query string false "Center ID, defaults to the volunteer's center"
// @Param month query int false "Month index 0-11, defaults to the current month"
// @Param year query int false "Year, defaults to the current year"
// @Param class query string false "Class label echoed in the report"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /reports/monthly [get]
func (h *ReportHandler) Monthly(c *gin.Context) {
	req, err := h.request(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.reports.Monthly(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// Export godoc
// @Summary Download the monthly attendance report
// @Tags Reports
// @Produce application/pdf
// @Produce text/csv
// @Param centerId query string false "Center ID"
// @Param month query int false "Month index 0-11"
// @Param year query int false "Year"
// @Param class query string false "Class label"
// @Param format query string false "pdf or csv" default(pdf)
// @Success 200 {file} file
// @Router /reports/monthly/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	req, err := h.request(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.exports.MonthlyReport(c.Request.Context(), req, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, doc.Filename, doc.ContentType, doc.Content)
}

func (h *ReportHandler) request(c *gin.Context) (service.MonthlyReportRequest, error) {
	now := h.now()
	month, err := intQuery(c, "month", int(now.Month())-1)
	if err != nil {
		return service.MonthlyReportRequest{}, err
	}
	year, err := intQuery(c, "year", now.Year())
	if err != nil {
		return service.MonthlyReportRequest{}, err
	}
	return service.MonthlyReportRequest{
		CenterID: centerFromQuery(c),
		Month:    month,
		Year:     year,
		Class:    strings.TrimSpace(c.Query("class")),
	}, nil
}
