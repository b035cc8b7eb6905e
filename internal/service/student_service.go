package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/pravah-api/internal/models"
	appErrors "github.com/noah-isme/pravah-api/pkg/errors"
	"github.com/noah-isme/pravah-api/pkg/export"
	"github.com/noah-isme/pravah-api/pkg/storage"
)

const maxIDAttempts = 100

type admissionStorage interface {
	Save(relPath string, r io.Reader, limit int64) (int64, error)
	Open(relPath string) (*os.File, error)
	Delete(relPath string) error
}

type idCardRenderer interface {
	RenderIDCard(card export.IDCard) ([]byte, error)
}

// AddStudentRequest is the admission form, also used by the manual QR entry path.
// An existing id is overwritten; an omitted id is generated from the center.
type AddStudentRequest struct {
	ID                 string `json:"id" validate:"omitempty,max=64,student_id"`
	CenterID           string `json:"centerId"`
	ClassLevel         string `json:"classLevel" validate:"required"`
	Name               string `json:"name" validate:"required"`
	Gender             string `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	DOB                string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Age                int    `json:"age" validate:"min=0,max=120"`
	SchoolName         string `json:"schoolName"`
	ParentName         string `json:"parentName"`
	ParentOccupation   string `json:"parentOccupation"`
	Aadhaar            string `json:"aadhaar" validate:"omitempty,numeric,len=12"`
	Contact            string `json:"contact"`
	RegistrationNumber string `json:"registrationNumber"`
	AdmissionDate      string `json:"admissionDate" validate:"omitempty,datetime=2006-01-02"`
}

// AdmissionFormUpload is a scanned admission form streamed from a multipart request.
type AdmissionFormUpload struct {
	Filename string
	Content  io.Reader
}

// AdmissionFormLink is a time limited download link for a stored form.
type AdmissionFormLink struct {
	Student   *models.Student `json:"student"`
	URL       string          `json:"url"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// StudentConfig tunes admissions.
type StudentConfig struct {
	IDPadding      int
	QRSize         int
	MaxUploadBytes int64
	AllowedMIMEs   []string
	APIPrefix      string
	Location       *time.Location
}

// StudentService handles admissions and student documents.
type StudentService struct {
	repo      studentStore
	sequence  studentSequence
	files     admissionStorage
	signer    *storage.SignedURLSigner
	cards     idCardRenderer
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	cfg       StudentConfig
	now       func() time.Time
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentStore, sequence studentSequence, files admissionStorage, signer *storage.SignedURLSigner, cards idCardRenderer, cfg StudentConfig, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cards == nil {
		cards = export.NewPDFExporter()
	}
	if cfg.IDPadding <= 0 {
		cfg.IDPadding = 4
	}
	if cfg.QRSize <= 0 {
		cfg.QRSize = 256
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &StudentService{
		repo:      repo,
		sequence:  sequence,
		files:     files,
		signer:    signer,
		cards:     cards,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Add upserts a student. The acting volunteer supplies the default center and the author.
func (s *StudentService) Add(ctx context.Context, actor *models.JWTClaims, req AddStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	centerID, err := resolveCenter(actor, req.CenterID)
	if err != nil {
		return nil, err
	}

	admission, err := parseDay(req.AdmissionDate, today(s.now, s.cfg.Location))
	if err != nil {
		return nil, validationError(err, "invalid admissionDate")
	}
	student := &models.Student{
		ID:                 strings.TrimSpace(req.ID),
		CenterID:           centerID,
		ClassLevel:         strings.TrimSpace(req.ClassLevel),
		Name:               strings.TrimSpace(req.Name),
		Gender:             req.Gender,
		Age:                req.Age,
		SchoolName:         strings.TrimSpace(req.SchoolName),
		ParentName:         strings.TrimSpace(req.ParentName),
		ParentOccupation:   strings.TrimSpace(req.ParentOccupation),
		Aadhaar:            req.Aadhaar,
		Contact:            strings.TrimSpace(req.Contact),
		RegistrationNumber: strings.TrimSpace(req.RegistrationNumber),
		AdmissionDate:      admission,
	}
	if req.DOB != "" {
		dob, err := time.Parse(models.DateLayout, req.DOB)
		if err != nil {
			return nil, validationError(err, "invalid dob")
		}
		student.DOB = &dob
		if student.Age == 0 {
			student.Age = ageOn(dob, admission)
		}
	}
	if actor != nil {
		student.CreatedBy = actor.VolunteerID
	}

	created := true
	if student.ID == "" {
		id, err := s.nextID(ctx, centerID)
		if err != nil {
			return nil, err
		}
		student.ID = id
	} else {
		existing, err := s.repo.FindByID(ctx, student.ID)
		switch {
		case err == nil:
			if err := authorizeCenter(actor, existing.CenterID); err != nil {
				return nil, err
			}
			created = false
		case !isNotFound(err):
			return nil, storeFailure(err, "failed to load student")
		}
	}

	now := s.now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now

	started := time.Now()
	err = s.repo.Upsert(ctx, student)
	s.metrics.ObserveStoreOperation("students.upsert", time.Since(started), err)
	if err != nil {
		s.logger.Error("upsert student", requestField(ctx), zap.String("student_id", student.ID), zap.Error(err))
		return nil, storeFailure(err, "failed to save student")
	}
	if created {
		s.metrics.RecordCreated("students")
	}
	return s.Get(ctx, student.ID)
}

// nextID draws sequence values until it finds an id that is not taken.
func (s *StudentService) nextID(ctx context.Context, centerID string) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		n, err := s.sequence.Next(ctx, centerID)
		if err != nil {
			return "", storeFailure(err, "failed to allocate student id")
		}
		candidate := fmt.Sprintf("%s-%0*d", centerID, s.cfg.IDPadding, n)
		_, err = s.repo.FindByID(ctx, candidate)
		if isNotFound(err) {
			return candidate, nil
		}
		if err != nil {
			return "", storeFailure(err, "failed to allocate student id")
		}
	}
	return "", appErrors.Clone(appErrors.ErrConflict, "could not allocate a free student id")
}

// Get returns one student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, storeFailure(err, "failed to load student")
	}
	return student, nil
}

// GetFor returns one student when it belongs to the actor's city.
func (s *StudentService) GetFor(ctx context.Context, actor *models.JWTClaims, id string) (*models.Student, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeCenter(actor, student.CenterID); err != nil {
		return nil, err
	}
	return student, nil
}

// List returns students of a center narrowed by class and a case-insensitive name or id search.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	started := time.Now()
	students, err := s.repo.FindByCenter(ctx, filter.CenterID)
	s.metrics.ObserveStoreOperation("students.find_by_center", time.Since(started), err)
	if err != nil {
		return nil, storeFailure(err, "failed to list students")
	}
	class := strings.TrimSpace(filter.ClassLevel)
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	result := make([]models.Student, 0, len(students))
	for _, student := range students {
		if class != "" && class != models.ClassFilterAll && student.ClassLevel != class {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(student.Name), search) && !strings.Contains(strings.ToLower(student.ID), search) {
			continue
		}
		result = append(result, student)
	}
	return result, nil
}

// QRCode renders the student's id as a PNG QR code for attendance scanning.
func (s *StudentService) QRCode(ctx context.Context, id string) ([]byte, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := export.QRCodePNG(student.ID, s.cfg.QRSize)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render qr code")
	}
	return png, nil
}

// IDCard renders a printable identity card with the student's QR code.
func (s *StudentService) IDCard(ctx context.Context, id string) ([]byte, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := export.QRCodePNG(student.ID, s.cfg.QRSize)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render qr code")
	}
	card := export.IDCard{
		StudentID:  student.ID,
		Name:       student.Name,
		ClassLevel: student.ClassLevel,
		CenterName: student.CenterID,
		Contact:    student.Contact,
		QRPNG:      png,
	}
	if center, ok := models.FindCenter(student.CenterID); ok {
		card.CenterName = center.Name
	}
	pdf, err := s.cards.RenderIDCard(card)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render id card")
	}
	return pdf, nil
}

// AttachAdmissionForm stores a scanned form for the student and returns a signed download link.
func (s *StudentService) AttachAdmissionForm(ctx context.Context, id string, upload AdmissionFormUpload) (*AdmissionFormLink, error) {
	if s.files == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "admission form storage not configured")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(upload.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, validationError(err, "unreadable upload")
	}
	if n == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty upload")
	}
	head = head[:n]
	mime := strings.SplitN(http.DetectContentType(head), ";", 2)[0]
	if !s.mimeAllowed(mime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file type %s not allowed", mime))
	}

	relPath := path.Join("admission-forms", student.ID, uuid.NewString()+extensionFor(mime, upload.Filename))
	if _, err := s.files.Save(relPath, io.MultiReader(bytes.NewReader(head), upload.Content), s.cfg.MaxUploadBytes); err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("admission form exceeds %d bytes", s.cfg.MaxUploadBytes))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store admission form")
	}

	previous := student.AdmissionFormFile
	student.AdmissionFormFile = relPath
	student.UpdatedAt = s.now().UTC()
	if err := s.repo.Upsert(ctx, student); err != nil {
		_ = s.files.Delete(relPath)
		return nil, storeFailure(err, "failed to save student")
	}
	if previous != "" && previous != relPath {
		if err := s.files.Delete(previous); err != nil {
			s.logger.Warn("remove replaced admission form", zap.String("path", previous), zap.Error(err))
		}
	}
	return s.link(student)
}

// AdmissionFormURL issues a fresh download link for the stored form.
func (s *StudentService) AdmissionFormURL(ctx context.Context, id string) (*AdmissionFormLink, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "admission form storage not configured")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if student.AdmissionFormFile == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no admission form on file")
	}
	return s.link(student)
}

// OpenSignedFile resolves a download token to the stored file.
func (s *StudentService) OpenSignedFile(token string) (*os.File, string, error) {
	if s.files == nil || s.signer == nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "file not found")
	}
	parsed, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download link")
	}
	file, err := s.files.Open(parsed.Path)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "file not found")
	}
	return file, parsed.Subject + path.Ext(parsed.Path), nil
}

func (s *StudentService) link(student *models.Student) (*AdmissionFormLink, error) {
	token, expires, err := s.signer.Generate(student.ID, student.AdmissionFormFile)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return &AdmissionFormLink{
		Student:   student,
		URL:       fmt.Sprintf("%s/files/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token),
		ExpiresAt: expires,
	}, nil
}

func (s *StudentService) mimeAllowed(mime string) bool {
	if len(s.cfg.AllowedMIMEs) == 0 {
		return true
	}
	for _, allowed := range s.cfg.AllowedMIMEs {
		if strings.EqualFold(allowed, mime) {
			return true
		}
	}
	return false
}

func extensionFor(mime, filename string) string {
	switch mime {
	case "application/pdf":
		return ".pdf"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	return strings.ToLower(path.Ext(filename))
}

func ageOn(dob, day time.Time) int {
	age := day.Year() - dob.Year()
	if day.Month() < dob.Month() || (day.Month() == dob.Month() && day.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
