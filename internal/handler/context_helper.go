package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pravah-api/internal/middleware"
	"github.com/noah-isme/pravah-api/internal/models"
	appErrors "github.com/noah-isme/pravah-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Volunteer(c)
}

// centerFromQuery falls back to the volunteer's own center when centerId is omitted.
func centerFromQuery(c *gin.Context) string {
	if centerID := strings.TrimSpace(c.Query("centerId")); centerID != "" {
		return centerID
	}
	if claims := claimsFromContext(c); claims != nil {
		return claims.CenterID
	}
	return ""
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, key+" must be an integer")
	}
	return v, nil
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
