package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pravah-api/internal/models"
	"github.com/noah-isme/pravah-api/internal/service"
	appErrors "github.com/noah-isme/pravah-api/pkg/errors"
	"github.com/noah-isme/pravah-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Register godoc
// @Summary Register a volunteer
// @Description The volunteer id must embed a city code, e.g. 25NGP001
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid registration payload"))
		return
	}
	info, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, info)
}

// Login godoc
// @Summary Authenticate a volunteer
// @Description Checks credentials and lists the centers of the volunteer's city
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid login payload"))
		return
	}
	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// SelectCenter godoc
// @Summary Choose a center and receive an access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.SelectCenterRequest true "Center selection"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /auth/center [post]
func (h *AuthHandler) SelectCenter(c *gin.Context) {
	var req models.SelectCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid center selection payload"))
		return
	}
	session, err := h.service.SelectCenter(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// Me godoc
// @Summary Current session
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"volunteer": models.VolunteerInfo{VolunteerID: claims.VolunteerID, Name: claims.Name},
		"centerId":  claims.CenterID,
		"center":    claims.CenterName,
	})
}

// UpdateProfile godoc
// @Summary Rename the current volunteer
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.UpdateProfileRequest true "Profile"
// @Success 200 {object} response.Envelope
// @Router /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid profile payload"))
		return
	}
	info, err := h.service.UpdateProfile(c.Request.Context(), claims.VolunteerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info)
}

// ChangePassword godoc
// @Summary Change the current password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.ChangePasswordRequest true "New password"
// @Success 204
// @Router /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid change password payload"))
		return
	}
	if err := h.service.ChangePassword(c.Request.Context(), claims.VolunteerID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
