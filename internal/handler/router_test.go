package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pravah-api/internal/models"
	"github.com/noah-isme/pravah-api/internal/repository"
	"github.com/noah-isme/pravah-api/internal/service"
	appErrors "github.com/noah-isme/pravah-api/pkg/errors"
	"github.com/noah-isme/pravah-api/pkg/storage"
)

type testAPI struct {
	router *gin.Engine
	store  *repository.MemoryStore
	token  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	metrics := service.NewMetricsService()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("files-secret", time.Hour)

	auth := service.NewAuthService(store.Volunteers, nil, nil, service.AuthConfig{AccessTokenSecret: "jwt-secret", AccessTokenExpiry: time.Hour, Issuer: "pravah-test"})
	students := service.NewStudentService(store.Students, repository.NewMemoryStudentSequence(), files, signer, nil, service.StudentConfig{
		MaxUploadBytes: 1 << 16,
		AllowedMIMEs:   []string{"application/pdf"},
		APIPrefix:      "/api/v1",
	}, nil, nil, metrics)
	reports := service.NewReportService(store.Students, store.Attendance, nil, nil, metrics)
	history := service.NewHistoryService(store.Students, store.Attendance, store.Diary, nil, metrics)
	exports := service.NewExportService(reports, history, nil, nil, nil)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), Handlers{
		Auth:       NewAuthHandler(auth),
		Centers:    NewCenterHandler(),
		Students:   NewStudentHandler(students),
		Attendance: NewAttendanceHandler(service.NewAttendanceService(store.Attendance, store.Students, time.UTC, nil, nil, metrics)),
		Diary:      NewDiaryHandler(service.NewDiaryService(store.Diary, time.UTC, nil, nil, metrics)),
		Feedback:   NewFeedbackHandler(service.NewFeedbackService(store.Feedback, nil, nil)),
		Reports:    NewReportHandler(reports, exports),
		History:    NewHistoryHandler(history, exports),
		Metrics:    NewMetricsHandler(metrics, nil),
	}, auth)

	api := &testAPI{router: router, store: store}
	api.token = api.login(t, "25NGP001", "NGP-C1")
	return api
}

func (a *testAPI) login(t *testing.T, volunteerID, centerID string) string {
	t.Helper()
	w := a.do(http.MethodPost, "/api/v1/auth/register", fmt.Sprintf(`{"volunteerId":%q,"name":"Meera","password":"secret1"}`, volunteerID), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/api/v1/auth/center", fmt.Sprintf(`{"volunteerId":%q,"password":"secret1","centerId":%q}`, volunteerID, centerID), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Data struct {
			AccessToken string `json:"accessToken"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.AccessToken)
	return body.Data.AccessToken
}

func (a *testAPI) do(method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) authed(method, target, body string) *httptest.ResponseRecorder {
	return a.do(method, target, body, a.token)
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

func TestRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/api/v1/history", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))

	w = api.do(http.MethodGet, "/api/v1/centers?cityCode=mda", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var centers []map[string]interface{}
	decodeData(t, w, &centers)
	assert.Len(t, centers, 2)
}

func TestAdmissionAttendanceReportFlow(t *testing.T) {
	api := newTestAPI(t)

	w := api.authed(http.MethodPost, "/api/v1/students", `{"name":"Asha","classLevel":"5th"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var student struct {
		ID       string `json:"id"`
		CenterID string `json:"centerId"`
	}
	decodeData(t, w, &student)
	assert.Equal(t, "NGP-C1-0001", student.ID)
	assert.Equal(t, "NGP-C1", student.CenterID)

	w = api.authed(http.MethodPost, "/api/v1/students", `{"name":"Ravi","classLevel":"5th"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.authed(http.MethodPost, "/api/v1/attendance", `{"date":"2024-03-04","presentStudentIds":["NGP-C1-0001"],"mode":"QR"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var record struct {
		ID            string `json:"id"`
		TotalStudents int    `json:"totalStudents"`
	}
	decodeData(t, w, &record)
	assert.Equal(t, 2, record.TotalStudents)

	w = api.authed(http.MethodPost, "/api/v1/attendance", `{"date":"2024-03-05","presentStudentIds":["NGP-C1-0001","NGP-C1-0002"],"mode":"MANUAL"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.authed(http.MethodGet, "/api/v1/reports/monthly?month=2&year=2024", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report struct {
		WorkingDays       int     `json:"workingDays"`
		AverageAttendance float64 `json:"averageAttendance"`
		ClassName         string  `json:"className"`
		Month             string  `json:"month"`
	}
	decodeData(t, w, &report)
	assert.Equal(t, 2, report.WorkingDays)
	assert.InDelta(t, 75.0, report.AverageAttendance, 1e-9)
	assert.Equal(t, "All", report.ClassName)
	assert.Equal(t, "March", report.Month)

	w = api.authed(http.MethodDelete, "/api/v1/history/Attendance/"+record.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = api.authed(http.MethodDelete, "/api/v1/history/Attendance/"+record.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.authed(http.MethodGet, "/api/v1/reports/monthly?month=2&year=2024", "")
	decodeData(t, w, &report)
	assert.Equal(t, 1, report.WorkingDays)

	w = api.authed(http.MethodGet, "/api/v1/reports/monthly/export?month=2&year=2024&format=csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attendance-NGP-C1-2024-03.csv")
}

func TestReportRejectsBadQuery(t *testing.T) {
	api := newTestAPI(t)

	w := api.authed(http.MethodGet, "/api/v1/reports/monthly?month=12&year=2024", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = api.authed(http.MethodGet, "/api/v1/reports/monthly?month=march", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = api.authed(http.MethodGet, "/api/v1/reports/monthly?centerId=MDA-C1", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHistoryRoutes(t *testing.T) {
	api := newTestAPI(t)

	w := api.authed(http.MethodPost, "/api/v1/diary", `{"date":"2024-03-04","studentCount":9,"thought":"Stay curious","volunteers":[{"volunteerId":"25NGP001","name":"Meera","status":"Present","inTime":"16:00"}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var entry struct {
		ID string `json:"id"`
	}
	decodeData(t, w, &entry)

	w = api.authed(http.MethodGet, "/api/v1/history?type=Diary", "")
	require.Equal(t, http.StatusOK, w.Code)
	var feed struct {
		Data []struct {
			ID      string `json:"id"`
			Type    string `json:"type"`
			Date    string `json:"date"`
			Details string `json:"details"`
		} `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	require.Len(t, feed.Data, 1)
	assert.Equal(t, "2024-03-04", feed.Data[0].Date)
	assert.Equal(t, "Stay curious", feed.Data[0].Details)
	assert.EqualValues(t, 1, feed.Meta["count"])

	w = api.authed(http.MethodGet, "/api/v1/history?type=Holiday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = api.authed(http.MethodDelete, "/api/v1/history/Holiday/x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.authed(http.MethodGet, "/api/v1/history/Diary/"+entry.ID+"/document", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = api.authed(http.MethodGet, "/api/v1/history/Diary/"+entry.ID+"/document?format=csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "diary-"+entry.ID+".csv")
	assert.Contains(t, w.Body.String(), "Stay curious")

	w = api.authed(http.MethodGet, "/api/v1/history/export?format=xlsx", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentDocumentsRoutes(t *testing.T) {
	api := newTestAPI(t)

	w := api.authed(http.MethodPost, "/api/v1/students", `{"id":"S1","name":"Asha","classLevel":"5th"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.authed(http.MethodGet, "/api/v1/students/S1/qr", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = api.authed(http.MethodGet, "/api/v1/students/missing/id-card", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "form.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 admission form"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/students/S1/admission-form", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+api.token)
	w = httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var link struct {
		URL string `json:"url"`
	}
	decodeData(t, w, &link)
	require.True(t, strings.HasPrefix(link.URL, "/api/v1/files/"))

	w = api.do(http.MethodGet, link.URL, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4 admission form", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "S1.pdf")

	w = api.do(http.MethodGet, link.URL+"tampered", "", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthProfileRoutes(t *testing.T) {
	api := newTestAPI(t)

	w := api.authed(http.MethodPut, "/api/v1/auth/profile", `{"name":"Meera S"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = api.authed(http.MethodPut, "/api/v1/auth/password", `{"newPassword":"changed1"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = api.do(http.MethodPost, "/api/v1/auth/login", `{"volunteerId":"25NGP001","password":"changed1"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodPost, "/api/v1/auth/login", `{"volunteerId":"25NGP001","password":"secret1"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = api.do(http.MethodPost, "/api/v1/auth/register", `{"volunteerId":"25NGP001","name":"Dup","password":"secret1"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.authed(http.MethodPost, "/api/v1/feedback", `{"subject":"Books","message":"More story books"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	w = api.authed(http.MethodGet, "/api/v1/feedback", "")
	var entries []map[string]interface{}
	decodeData(t, w, &entries)
	assert.Len(t, entries, 1)
}

func TestCrossCityAccessIsRefused(t *testing.T) {
	api := newTestAPI(t)
	mdaToken := api.login(t, "25MDA001", "MDA-C1")

	w := api.do(http.MethodPost, "/api/v1/students", `{"name":"Intruder","classLevel":"5th","admissionDate":"2024-03-01"}`, mdaToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var mdaStudent struct {
		ID string `json:"id"`
	}
	decodeData(t, w, &mdaStudent)
	w = api.do(http.MethodPost, "/api/v1/diary", `{"date":"2024-03-02","studentCount":3}`, mdaToken)
	require.Equal(t, http.StatusCreated, w.Code)
	var mdaDiary struct {
		ID string `json:"id"`
	}
	decodeData(t, w, &mdaDiary)

	w = api.authed(http.MethodPost, "/api/v1/students", `{"name":"Asha","classLevel":"5th","centerId":"NGP-C2","admissionDate":"2024-03-03"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	writes := []struct {
		target string
		body   string
		status int
	}{
		{"/api/v1/attendance", `{"centerId":"MDA-C1","presentStudentIds":[],"mode":"QR"}`, http.StatusForbidden},
		{"/api/v1/students", `{"centerId":"MDA-C1","name":"Ravi","classLevel":"5th"}`, http.StatusForbidden},
		{"/api/v1/diary", `{"centerId":"MDA-C2","studentCount":4}`, http.StatusForbidden},
		{"/api/v1/students", `{"centerId":"ZZZ","name":"Ravi","classLevel":"5th"}`, http.StatusBadRequest},
		{"/api/v1/students", `{"id":"a b","name":"Ravi","classLevel":"5th"}`, http.StatusBadRequest},
		{"/api/v1/students", fmt.Sprintf(`{"id":%q,"name":"Taken","classLevel":"5th"}`, mdaStudent.ID), http.StatusForbidden},
	}
	for _, tc := range writes {
		w = api.authed(http.MethodPost, tc.target, tc.body)
		assert.Equal(t, tc.status, w.Code, tc.body)
	}

	w = api.authed(http.MethodGet, "/api/v1/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	var feed []struct {
		ID       string `json:"id"`
		CenterID string `json:"centerId"`
	}
	decodeData(t, w, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, "NGP-C2", feed[0].CenterID)

	reads := map[string]int{
		"/api/v1/history?centerId=MDA-C1":                          http.StatusForbidden,
		"/api/v1/history?centerId=ZZZ":                             http.StatusBadRequest,
		"/api/v1/students/" + mdaStudent.ID:                        http.StatusForbidden,
		"/api/v1/students/" + mdaStudent.ID + "/qr":                http.StatusForbidden,
		"/api/v1/students/" + mdaStudent.ID + "/admission-form":    http.StatusForbidden,
		"/api/v1/history/Diary/" + mdaDiary.ID + "/document":       http.StatusForbidden,
		"/api/v1/history/Admission/" + mdaStudent.ID + "/document": http.StatusForbidden,
	}
	for target, status := range reads {
		w = api.authed(http.MethodGet, target, "")
		assert.Equal(t, status, w.Code, target)
	}

	w = api.authed(http.MethodDelete, "/api/v1/history/Admission/"+mdaStudent.ID, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = api.authed(http.MethodDelete, "/api/v1/history/Diary/"+mdaDiary.ID, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/api/v1/history", "", mdaToken)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &feed)
	assert.Len(t, feed, 2)

	w = api.do(http.MethodDelete, "/api/v1/history/Diary/"+mdaDiary.ID, "", mdaToken)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

type failingHistory struct{}

func (failingHistory) List(context.Context, string, models.HistoryFilter) ([]models.HistoryItem, error) {
	return nil, appErrors.Unavailable(errors.New("connection refused"), "")
}

func (failingHistory) DeleteFor(context.Context, *models.JWTClaims, string, models.HistoryType) error {
	return appErrors.Unavailable(errors.New("connection refused"), "")
}

func TestHistoryHandlerSurfacesStoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHistoryHandler(failingHistory{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/history", nil)
	h.List(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "STORE_UNAVAILABLE", errorCode(t, w))

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/history/Diary/D1", nil)
	c.Params = gin.Params{{Key: "type", Value: "Diary"}, {Key: "id", Value: "D1"}}
	h.Delete(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(service.NewMetricsService(), map[string]ReadinessCheck{
		"store": func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("dial tcp: refused") },
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)
	h.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "dial tcp: refused")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	h.Prometheus(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
