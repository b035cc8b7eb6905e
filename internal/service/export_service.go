package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/pravah-api/internal/models"
	appErrors "github.com/noah-isme/pravah-api/pkg/errors"
	"github.com/noah-isme/pravah-api/pkg/export"
)

// ExportFormat selects the rendering of an export.
type ExportFormat string

const (
	ExportFormatPDF ExportFormat = "pdf"
	ExportFormatCSV ExportFormat = "csv"
)

// ParseExportFormat defaults to PDF when raw is empty.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportFormatPDF:
		return ExportFormatPDF, nil
	case ExportFormatCSV:
		return ExportFormatCSV, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
}

// ExportDocument is a rendered file ready to download.
type ExportDocument struct {
	Filename    string
	ContentType string
	Content     []byte
}

type monthlyReporter interface {
	Monthly(ctx context.Context, req MonthlyReportRequest) (*models.MonthlyReport, error)
}

type historyReader interface {
	List(ctx context.Context, centerID string, filter models.HistoryFilter) ([]models.HistoryItem, error)
	GetFor(ctx context.Context, actor *models.JWTClaims, historyType models.HistoryType, id string) (*models.HistoryItem, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportService renders reports and history into PDF or CSV documents.
type ExportService struct {
	reports monthlyReporter
	history historyReader
	csv     datasetRenderer
	pdf     datasetRenderer
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(reports monthlyReporter, history historyReader, logger *zap.Logger, csv datasetRenderer, pdf datasetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{reports: reports, history: history, csv: csv, pdf: pdf, logger: logger}
}

// MonthlyReport renders the monthly attendance report.
func (s *ExportService) MonthlyReport(ctx context.Context, req MonthlyReportRequest, format ExportFormat) (*ExportDocument, error) {
	report, err := s.reports.Monthly(ctx, req)
	if err != nil {
		return nil, err
	}
	data := export.Dataset{
		Title: "Monthly Attendance Report",
		Summary: []export.Field{
			{Label: "Center", Value: centerLabel(report.CenterID)},
			{Label: "Month", Value: fmt.Sprintf("%s %d", report.Month, report.Year)},
			{Label: "Class", Value: report.ClassName},
			{Label: "Working Days", Value: strconv.Itoa(report.WorkingDays)},
			{Label: "Total Students", Value: strconv.Itoa(report.TotalStudents)},
			{Label: "Average Attendance", Value: percent(report.AverageAttendance)},
		},
		Headers: []string{"Student ID", "Name", "Present Days", "Attendance"},
	}
	for _, stat := range report.StudentStats {
		data.Rows = append(data.Rows, map[string]string{
			"Student ID":   stat.StudentID,
			"Name":         stat.Name,
			"Present Days": fmt.Sprintf("%d/%d", stat.PresentDays, report.WorkingDays),
			"Attendance":   percent(stat.Percentage),
		})
	}
	name := fmt.Sprintf("attendance-%s-%04d-%02d", report.CenterID, report.Year, report.MonthIndex+1)
	return s.render(data, name, format)
}

// History renders the filtered history feed.
func (s *ExportService) History(ctx context.Context, centerID string, filter models.HistoryFilter, format ExportFormat) (*ExportDocument, error) {
	items, err := s.history.List(ctx, centerID, filter)
	if err != nil {
		return nil, err
	}
	scope := "All centers"
	switch {
	case centerID != "":
		scope = centerLabel(centerID)
	case len(filter.CenterIDs) > 0:
		scope = strings.Join(filter.CenterIDs, ", ")
	}
	data := export.Dataset{
		Title: "Activity History",
		Summary: []export.Field{
			{Label: "Center", Value: scope},
			{Label: "Type", Value: filter.String()},
			{Label: "Items", Value: strconv.Itoa(len(items))},
		},
		Headers: []string{"Date", "Type", "ID", "Details"},
	}
	for _, item := range items {
		data.Rows = append(data.Rows, map[string]string{
			"Date":    item.Date.Format(models.DateLayout),
			"Type":    string(item.Type),
			"ID":      item.ID,
			"Details": item.Details,
		})
	}
	return s.render(data, "history-"+strings.ToLower(filter.String()), format)
}

// HistoryRecord renders every field of one history item visible to actor.
func (s *ExportService) HistoryRecord(ctx context.Context, actor *models.JWTClaims, historyType models.HistoryType, id string, format ExportFormat) (*ExportDocument, error) {
	item, err := s.history.GetFor(ctx, actor, historyType, id)
	if err != nil {
		return nil, err
	}
	var data export.Dataset
	switch record := item.Data.(type) {
	case models.Student:
		data = studentDataset(record)
	case models.AttendanceRecord:
		data = attendanceDataset(record)
	case models.DiaryEntry:
		data = diaryDataset(record)
	default:
		return nil, appErrors.Clone(appErrors.ErrInternal, "unsupported history record")
	}
	return s.render(data, fmt.Sprintf("%s-%s", strings.ToLower(string(item.Type)), item.ID), format)
}

func (s *ExportService) render(data export.Dataset, name string, format ExportFormat) (*ExportDocument, error) {
	var (
		content     []byte
		err         error
		contentType string
	)
	switch format {
	case ExportFormatCSV:
		content, err = s.csv.Render(data)
		contentType = "text/csv"
	default:
		format = ExportFormatPDF
		content, err = s.pdf.Render(data)
		contentType = "application/pdf"
	}
	if err != nil {
		s.logger.Error("render export", zap.String("name", name), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportDocument{Filename: name + "." + string(format), ContentType: contentType, Content: content}, nil
}

func studentDataset(student models.Student) export.Dataset {
	dob := ""
	if student.DOB != nil {
		dob = student.DOB.Format(models.DateLayout)
	}
	fields := [][2]string{
		{"Student ID", student.ID},
		{"Name", student.Name},
		{"Center", centerLabel(student.CenterID)},
		{"Class", student.ClassLevel},
		{"Gender", student.Gender},
		{"Date of Birth", dob},
		{"Age", strconv.Itoa(student.Age)},
		{"School", student.SchoolName},
		{"Parent", student.ParentName},
		{"Parent Occupation", student.ParentOccupation},
		{"Aadhaar", student.Aadhaar},
		{"Contact", student.Contact},
		{"Registration Number", student.RegistrationNumber},
		{"Admission Date", student.AdmissionDate.Format(models.DateLayout)},
	}
	data := export.Dataset{Title: "Admission Record", Headers: []string{"Field", "Value"}}
	for _, f := range fields {
		data.Rows = append(data.Rows, map[string]string{"Field": f[0], "Value": f[1]})
	}
	return data
}

func attendanceDataset(record models.AttendanceRecord) export.Dataset {
	data := export.Dataset{
		Title: "Attendance Record",
		Summary: []export.Field{
			{Label: "Date", Value: record.Date.Format(models.DateLayout)},
			{Label: "Center", Value: centerLabel(record.CenterID)},
			{Label: "Mode", Value: string(record.Mode)},
			{Label: "Present", Value: fmt.Sprintf("%d of %d", len(record.PresentStudentIDs), record.TotalStudents)},
		},
		Headers: []string{"#", "Student ID"},
	}
	for i, id := range record.PresentStudentIDs {
		data.Rows = append(data.Rows, map[string]string{"#": strconv.Itoa(i + 1), "Student ID": id})
	}
	return data
}

func diaryDataset(entry models.DiaryEntry) export.Dataset {
	data := export.Dataset{
		Title: "Diary Entry",
		Summary: []export.Field{
			{Label: "Date", Value: entry.Date.Format(models.DateLayout)},
			{Label: "Center", Value: centerLabel(entry.CenterID)},
			{Label: "Timing", Value: strings.Trim(entry.InTime+" - "+entry.OutTime, " -")},
			{Label: "Students", Value: strconv.Itoa(entry.StudentCount)},
			{Label: "Thought of the Day", Value: entry.Thought},
		},
		Headers: []string{"Volunteer", "Status", "In", "Out", "Class", "Subject", "Topic"},
	}
	for _, v := range entry.Volunteers {
		data.Rows = append(data.Rows, map[string]string{
			"Volunteer": v.Name,
			"Status":    string(v.Status),
			"In":        v.InTime,
			"Out":       v.OutTime,
			"Class":     v.ClassHandled,
			"Subject":   v.Subject,
			"Topic":     v.Topic,
		})
	}
	return data
}

func centerLabel(centerID string) string {
	if center, ok := models.FindCenter(centerID); ok {
		return fmt.Sprintf("%s (%s)", center.Name, center.ID)
	}
	return centerID
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
