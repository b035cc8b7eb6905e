package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pravah-api/internal/models"
	appErrors "github.com/noah-isme/pravah-api/pkg/errors"
	"github.com/noah-isme/pravah-api/pkg/response"
)

// CenterAccess rejects requests whose centerId query names an unknown center or a center
// outside the volunteer's city. Body centers and record lookups are checked by the services.
func CenterAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Volunteer(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		requested := strings.TrimSpace(c.Query("centerId"))
		if requested == "" || requested == claims.CenterID {
			c.Next()
			return
		}

		if _, known := models.FindCenter(requested); !known {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown center "+requested))
			c.Abort()
			return
		}
		if models.SameCity(claims.CenterID, requested) {
			c.Next()
			return
		}

		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "center belongs to another city"))
		c.Abort()
	}
}
