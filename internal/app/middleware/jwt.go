package middleware

import (
	"errors"
	"net/http"
	"time"

	apperrors "github.com/ak/flavorfusion/internal/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims represents the session token claims
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenConfig holds session token configuration
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// GenerateToken creates a signed token bound to sessionID
func GenerateToken(config TokenConfig, sessionID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(config.TTL)
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    config.Issuer,
			Subject:   sessionID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken validates a session token and returns its claims
func ValidateToken(tokenString string, config TokenConfig) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.Secret), nil
	}, jwt.WithIssuer(config.Issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.New(apperrors.ErrTokenExpired, "session token has expired", http.StatusUnauthorized)
		}
		return nil, apperrors.New(apperrors.ErrTokenInvalid, "invalid session token", http.StatusUnauthorized)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, apperrors.New(apperrors.ErrTokenInvalid, "invalid session token claims", http.StatusUnauthorized)
	}

	return claims, nil
}
