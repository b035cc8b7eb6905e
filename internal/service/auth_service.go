package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/pravah-api/internal/models"
	"github.com/noah-isme/pravah-api/internal/repository"
	appErrors "github.com/noah-isme/pravah-api/pkg/errors"
)

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AuthService provides volunteer authentication use cases.
type AuthService struct {
	repo      volunteerStore
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo volunteerStore, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 12 * time.Hour
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, config: config, now: time.Now}
}

// Register creates a volunteer account. The id must embed a known city code (MDA or NGP).
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.VolunteerInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid registration payload")
	}
	volunteerID := strings.ToUpper(strings.TrimSpace(req.VolunteerID))
	if _, ok := models.CityCodeFromID(volunteerID); !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "volunteer id must contain a city code (MDA or NGP)")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	volunteer := &models.Volunteer{
		VolunteerID:  volunteerID,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, volunteer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "volunteer id already registered")
		}
		return nil, storeFailure(err, "failed to register volunteer")
	}
	s.logger.Info("volunteer registered", zap.String("volunteer_id", volunteerID))
	return &models.VolunteerInfo{VolunteerID: volunteer.VolunteerID, Name: volunteer.Name}, nil
}

// Login checks credentials and lists the centers of the volunteer's city.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}
	volunteer, city, err := s.authenticate(ctx, req.VolunteerID, req.Password)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{
		Volunteer: models.VolunteerInfo{VolunteerID: volunteer.VolunteerID, Name: volunteer.Name},
		CityCode:  city,
		Centers:   models.CentersForCity(city),
	}, nil
}

// SelectCenter completes login for one center of the volunteer's city and issues an access token.
func (s *AuthService) SelectCenter(ctx context.Context, req models.SelectCenterRequest) (*models.SessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid center selection payload")
	}
	volunteer, city, err := s.authenticate(ctx, req.VolunteerID, req.Password)
	if err != nil {
		return nil, err
	}
	center, ok := models.FindCenter(req.CenterID)
	if !ok || center.CityCode != city {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "center is not available for this volunteer")
	}

	token, issuedAt, err := s.generateAccessToken(volunteer, center)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	return &models.SessionResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		Volunteer:   models.VolunteerInfo{VolunteerID: volunteer.VolunteerID, Name: volunteer.Name},
		Center:      center,
	}, nil
}

// UpdateProfile renames the volunteer.
func (s *AuthService) UpdateProfile(ctx context.Context, volunteerID string, req models.UpdateProfileRequest) (*models.VolunteerInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid profile payload")
	}
	volunteer, err := s.load(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	volunteer.Name = strings.TrimSpace(req.Name)
	if err := s.repo.Update(ctx, volunteer); err != nil {
		return nil, storeFailure(err, "failed to update profile")
	}
	return &models.VolunteerInfo{VolunteerID: volunteer.VolunteerID, Name: volunteer.Name}, nil
}

// ChangePassword replaces the password of the authenticated volunteer.
func (s *AuthService) ChangePassword(ctx context.Context, volunteerID string, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid change password payload")
	}
	volunteer, err := s.load(ctx, volunteerID)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	volunteer.PasswordHash = string(hash)
	if err := s.repo.Update(ctx, volunteer); err != nil {
		return storeFailure(err, "failed to update password")
	}
	s.logger.Info("volunteer password changed", zap.String("volunteer_id", volunteerID))
	return nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) authenticate(ctx context.Context, volunteerID, password string) (*models.Volunteer, models.CityCode, error) {
	volunteerID = strings.ToUpper(strings.TrimSpace(volunteerID))
	volunteer, err := s.repo.FindByID(ctx, volunteerID)
	if err != nil {
		if isNotFound(err) {
			return nil, "", appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid volunteer id or password")
		}
		return nil, "", storeFailure(err, "failed to fetch volunteer")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(volunteer.PasswordHash), []byte(password)); err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid volunteer id or password")
	}
	city, ok := models.CityCodeFromID(volunteer.VolunteerID)
	if !ok {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "volunteer id has no city code")
	}
	return volunteer, city, nil
}

func (s *AuthService) load(ctx context.Context, volunteerID string) (*models.Volunteer, error) {
	volunteer, err := s.repo.FindByID(ctx, volunteerID)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "volunteer not found")
		}
		return nil, storeFailure(err, "failed to load volunteer")
	}
	return volunteer, nil
}

func (s *AuthService) generateAccessToken(volunteer *models.Volunteer, center models.Center) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		VolunteerID: volunteer.VolunteerID,
		Name:        volunteer.Name,
		CenterID:    center.ID,
		CenterName:  center.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   volunteer.VolunteerID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, issuedAt, nil
}
