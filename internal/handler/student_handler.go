package handler

import (
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pravah-api/internal/middleware"
	"github.com/noah-isme/pravah-api/internal/models"
	"github.com/noah-isme/pravah-api/internal/service"
	appErrors "github.com/noah-isme/pravah-api/pkg/errors"
	"github.com/noah-isme/pravah-api/pkg/response"
)

// StudentHandler exposes admissions and student documents.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// Add godoc
// @Summary Admit or update a student
// @Description Upserts by id. Omitting the id generates one from the center.
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.AddStudentRequest true "Admission form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Add(c *gin.Context) {
	var req service.AddStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid student payload"))
		return
	}
	student, err := h.students.Add(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// List godoc
// @Summary List students of a center
// @Tags Students
// @Produce json
// @Param centerId query string false "Center ID, defaults to the volunteer's center"
// @Param class query string false "Class level"
// @Param search query string false "Search by name or id"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		CenterID:   centerFromQuery(c),
		ClassLevel: strings.TrimSpace(c.Query("class")),
		Search:     strings.TrimSpace(c.Query("search")),
	}
	students, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, middleware.ResponseMeta(c, map[string]interface{}{"count": len(students)}))
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.GetFor(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// QRCode godoc
// @Summary Student QR code used for attendance scanning
// @Tags Students
// @Produce image/png
// @Param id path string true "Student ID"
// @Success 200 {file} file
// @Router /students/{id}/qr [get]
func (h *StudentHandler) QRCode(c *gin.Context) {
	if !h.accessible(c) {
		return
	}
	png, err := h.students.QRCode(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// IDCard godoc
// @Summary Printable student id card
// @Tags Students
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Success 200 {file} file
// @Router /students/{id}/id-card [get]
func (h *StudentHandler) IDCard(c *gin.Context) {
	if !h.accessible(c) {
		return
	}
	id := c.Param("id")
	pdf, err := h.students.IDCard(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, fmt.Sprintf("id-card-%s.pdf", id), "application/pdf", pdf)
}

// UploadAdmissionForm godoc
// @Summary Upload the scanned admission form
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Student ID"
// @Param file formData file true "Scanned form (PDF, JPEG or PNG)"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /students/{id}/admission-form [post]
func (h *StudentHandler) UploadAdmissionForm(c *gin.Context) {
	if !h.accessible(c) {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	link, err := h.students.AttachAdmissionForm(c.Request.Context(), c.Param("id"), service.AdmissionFormUpload{
		Filename: fileHeader.Filename,
		Content:  src,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// AdmissionForm godoc
// @Summary Fresh signed link to the stored admission form
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/admission-form [get]
func (h *StudentHandler) AdmissionForm(c *gin.Context) {
	if !h.accessible(c) {
		return
	}
	link, err := h.students.AdmissionFormURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link)
}

// accessible writes the error response when the student is missing or belongs to another city.
func (h *StudentHandler) accessible(c *gin.Context) bool {
	if _, err := h.students.GetFor(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return false
	}
	return true
}

// Download godoc
// @Summary Download a file through a signed link
// @Tags Files
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /files/{token} [get]
func (h *StudentHandler) Download(c *gin.Context) {
	file, filename, err := h.students.OpenSignedFile(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read file"))
		return
	}
	contentType := mime.TypeByExtension(path.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}
