package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pravah-api/internal/models"
	appErrors "github.com/noah-isme/pravah-api/pkg/errors"
	"github.com/noah-isme/pravah-api/pkg/response"
)

// ContextVolunteerKey is the gin context key storing JWT claims.
const ContextVolunteerKey = "currentVolunteer"

// TokenValidator parses bearer tokens into volunteer claims.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid access token.
func JWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing or invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextVolunteerKey, claims)
		c.Next()
	}
}

// Volunteer returns the claims attached by JWT, or nil.
func Volunteer(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(ContextVolunteerKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
