package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
)

const (
	ctxStaffID    = "staffID"
	ctxStaffEmail = "staffEmail"
)

var (
	ErrMissingAuthHeader   = errors.New("missing Authorization header")
	ErrMalformedAuthHeader = errors.New("invalid Authorization header format")
	ErrInvalidToken        = errors.New("invalid or expired token")
)

// GetStaffID returns the authenticated staff id, or "" if unauthenticated.
func GetStaffID(c *gin.Context) string {
	return c.GetString(ctxStaffID)
}
