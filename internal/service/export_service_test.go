package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pravah-api/internal/models"
	"github.com/noah-isme/pravah-api/internal/repository"
	appErrors "github.com/noah-isme/pravah-api/pkg/errors"
)

func newExportServiceForTest(t *testing.T) *ExportService {
	store := marchFixture(t)
	seedDiary(t, store, "D1", "C1", "2024-03-05", "Be curious")
	reports := newReportService(store)
	history := newHistoryService(store)
	return NewExportService(reports, history, nil, nil, nil)
}

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatPDF, f)
	f, err = ParseExportFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatCSV, f)
	_, err = ParseExportFormat("xlsx")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestExportMonthlyReportCSV(t *testing.T) {
	svc := newExportServiceForTest(t)

	doc, err := svc.MonthlyReport(context.Background(), MonthlyReportRequest{CenterID: "C1", Month: 2, Year: 2024}, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "attendance-C1-2024-03.csv", doc.Filename)
	assert.Equal(t, "text/csv", doc.ContentType)
	body := string(doc.Content)
	assert.Contains(t, body, "Month,March 2024")
	assert.Contains(t, body, "Average Attendance,50.0%")
	assert.Contains(t, body, "S2,Ravi,1/2,50.0%")
}

func TestExportMonthlyReportPDF(t *testing.T) {
	svc := newExportServiceForTest(t)

	doc, err := svc.MonthlyReport(context.Background(), MonthlyReportRequest{CenterID: "C1", Month: 2, Year: 2024}, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, bytes.HasPrefix(doc.Content, []byte("%PDF")))
}

func TestExportMonthlyReportPropagatesValidation(t *testing.T) {
	svc := newExportServiceForTest(t)
	_, err := svc.MonthlyReport(context.Background(), MonthlyReportRequest{CenterID: "C1", Month: 12, Year: 2024}, ExportFormatCSV)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestExportHistoryCSV(t *testing.T) {
	svc := newExportServiceForTest(t)

	doc, err := svc.History(context.Background(), "C1", models.HistoryFilter{Type: models.HistoryTypeDiary}, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "history-diary.csv", doc.Filename)
	lines := strings.Split(strings.TrimSpace(string(doc.Content)), "\n")
	assert.Equal(t, "2024-03-05,Diary,D1,Be curious", lines[len(lines)-1])
}

func TestExportHistoryRecordPDF(t *testing.T) {
	svc := newExportServiceForTest(t)
	ctx := context.Background()

	for _, tc := range []struct {
		kind models.HistoryType
		id   string
	}{
		{models.HistoryTypeAdmission, "S1"},
		{models.HistoryTypeAttendance, "A1"},
		{models.HistoryTypeDiary, "D1"},
	} {
		doc, err := svc.HistoryRecord(ctx, nil, tc.kind, tc.id, ExportFormatPDF)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(doc.Content, []byte("%PDF")))
		assert.Equal(t, strings.ToLower(string(tc.kind))+"-"+tc.id+".pdf", doc.Filename)
	}

	_, err := svc.HistoryRecord(ctx, nil, models.HistoryTypeDiary, "missing", ExportFormatPDF)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestExportHistoryRecordCSV(t *testing.T) {
	svc := newExportServiceForTest(t)

	doc, err := svc.HistoryRecord(context.Background(), nil, models.HistoryTypeDiary, "D1", ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "diary-D1.csv", doc.Filename)
	assert.Equal(t, "text/csv", doc.ContentType)
	assert.Contains(t, string(doc.Content), "Be curious")
}

func TestExportHistoryRecordOtherCity(t *testing.T) {
	store := repository.NewMemoryStore()
	seedDiary(t, store, "D9", "MDA-C1", "2024-03-05", "Elsewhere")
	svc := NewExportService(newReportService(store), newHistoryService(store), nil, nil, nil)

	_, err := svc.HistoryRecord(context.Background(), volunteerNGP, models.HistoryTypeDiary, "D9", ExportFormatPDF)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))
}
