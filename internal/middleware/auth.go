package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"notaria/internal/domain"
	"notaria/internal/service"
)

// Gin context keys set by this package.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyEmail     = "email"
	ContextKeyClaims    = "claims"
	ContextKeyRequestID = "request_id"
)

// AuthMiddleware admits requests carrying a valid bearer token from the
// identity service and records the notary behind it on the context.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization header")
			return
		}
		claims, err := authService.ValidateToken(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// bearerToken extracts the credentials of a "Bearer" authorization header.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// abort ends the request with the API error envelope.
func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}

// GetUserID returns the authenticated notary, or domain.ErrUnauthorized when
// the request never passed AuthMiddleware.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	if id, ok := c.Value(ContextKeyUserID).(uuid.UUID); ok && id != uuid.Nil {
		return id, nil
	}
	return uuid.Nil, domain.ErrUnauthorized
}

// GetEmail returns the caller's email, empty when the token carried none.
func GetEmail(c *gin.Context) string {
	return c.GetString(ContextKeyEmail)
}

// GetRequestID returns the request's correlation ID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}
