package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthRequired is a Gin middleware that validates JWT from Authorization: Bearer <token>
func AuthRequired(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := BearerClaims(c, jwtManager)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
			})
			return
		}

		// Store staff info into Gin context for later handlers.
		c.Set(ctxStaffID, claims.StaffID)
		c.Set(ctxStaffEmail, claims.Email)

		c.Next()
	}
}

// BearerClaims extracts and validates the bearer token on the request.
// Shared by the staff middleware and the bank sync endpoint, which
// authenticates per-request instead of per-route.
func BearerClaims(c *gin.Context, jwtManager *JWTManager) (*Claims, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, ErrMissingAuthHeader
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, ErrMalformedAuthHeader
	}

	claims, err := jwtManager.ParseAndValidate(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
