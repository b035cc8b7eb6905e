package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pravah-api/internal/middleware"
)

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Auth       *AuthHandler
	Centers    *CenterHandler
	Students   *StudentHandler
	Attendance *AttendanceHandler
	Diary      *DiaryHandler
	Feedback   *FeedbackHandler
	Reports    *ReportHandler
	History    *HistoryHandler
	Metrics    *MetricsHandler
}

// RegisterRoutes mounts public and token protected routes on api.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, tokens middleware.TokenValidator) {
	api.Use(middleware.WithResponseMeta())

	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/center", h.Auth.SelectCenter)
	api.GET("/centers", h.Centers.List)
	api.GET("/files/:token", h.Students.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens), middleware.CenterAccess())

	secured.GET("/auth/me", h.Auth.Me)
	secured.PUT("/auth/profile", h.Auth.UpdateProfile)
	secured.PUT("/auth/password", h.Auth.ChangePassword)

	secured.POST("/students", h.Students.Add)
	secured.GET("/students", h.Students.List)
	secured.GET("/students/:id", h.Students.Get)
	secured.GET("/students/:id/qr", h.Students.QRCode)
	secured.GET("/students/:id/id-card", h.Students.IDCard)
	secured.POST("/students/:id/admission-form", h.Students.UploadAdmissionForm)
	secured.GET("/students/:id/admission-form", h.Students.AdmissionForm)

	secured.POST("/attendance", h.Attendance.Save)
	secured.GET("/attendance", h.Attendance.List)
	secured.POST("/diary", h.Diary.Save)
	secured.GET("/diary", h.Diary.List)
	secured.POST("/feedback", h.Feedback.Submit)
	secured.GET("/feedback", h.Feedback.List)

	secured.GET("/reports/monthly", h.Reports.Monthly)
	secured.GET("/reports/monthly/export", h.Reports.Export)

	secured.GET("/history", h.History.List)
	secured.GET("/history/export", h.History.Export)
	secured.DELETE("/history/:type/:id", h.History.Delete)
	secured.GET("/history/:type/:id/document", h.History.Document)

	if h.Metrics != nil {
		secured.GET("/metrics/summary", h.Metrics.Snapshot)
	}
}
