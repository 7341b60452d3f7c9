package middleware

import (
	"strings"

	apperrors "github.com/ak/flavorfusion/internal/pkg/errors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

const sessionIDKey = "session_id"

// bearerToken extracts the token from an Authorization header. ok is false
// when the header is absent; a present but malformed header returns an error.
func bearerToken(c *gin.Context) (string, bool, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false, nil
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", true, apperrors.Unauthorized("invalid authorization header format")
	}
	return strings.TrimSpace(parts[1]), true, nil
}

func abortWithError(c *gin.Context, err error) {
	apiErr := apperrors.FromError(err)
	c.AbortWithStatusJSON(apiErr.HTTPStatus, apperrors.NewErrorResponse(apiErr, requestid.Get(c)))
}

// RequireSession rejects requests without a valid session token
func RequireSession(config TokenConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, err := bearerToken(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if !present {
			abortWithError(c, apperrors.Unauthorized("session token required"))
			return
		}

		claims, err := ValidateToken(token, config)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(sessionIDKey, claims.SessionID)
		c.Next()
	}
}

// OptionalSession reads a session token if present but doesn't require it.
// An invalid token is ignored.
func OptionalSession(config TokenConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, err := bearerToken(c)
		if err == nil && present {
			if claims, err := ValidateToken(token, config); err == nil {
				c.Set(sessionIDKey, claims.SessionID)
			}
		}
		c.Next()
	}
}

// GetSessionID returns the session bound to the request, or ""
func GetSessionID(c *gin.Context) string {
	if id, exists := c.Get(sessionIDKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
