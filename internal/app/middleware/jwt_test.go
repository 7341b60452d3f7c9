package middleware

import (
	"testing"
	"time"

	apperrors "github.com/ak/flavorfusion/internal/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
)

var testTokenConfig = TokenConfig{Secret: "test-secret", Issuer: "flavorfusion", TTL: time.Hour}

func TestTokenRoundTrip(t *testing.T) {
	token, expiresAt, err := GenerateToken(testTokenConfig, "session-1")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if time.Until(expiresAt) <= 59*time.Minute {
		t.Errorf("expiresAt = %v, want about an hour from now", expiresAt)
	}

	claims, err := ValidateToken(token, testTokenConfig)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.SessionID != "session-1" || claims.Subject != "session-1" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	expired, _, _ := GenerateToken(TokenConfig{Secret: "test-secret", Issuer: "flavorfusion", TTL: -time.Minute}, "s")
	foreign, _, _ := GenerateToken(TokenConfig{Secret: "test-secret", Issuer: "someone-else", TTL: time.Hour}, "s")
	wrongKey, _, _ := GenerateToken(TokenConfig{Secret: "other-secret", Issuer: "flavorfusion", TTL: time.Hour}, "s")
	noSession, _, _ := GenerateToken(testTokenConfig, "")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{SessionID: "s"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
		code  apperrors.ErrorCode
	}{
		{"expired", expired, apperrors.ErrTokenExpired},
		{"wrong issuer", foreign, apperrors.ErrTokenInvalid},
		{"wrong key", wrongKey, apperrors.ErrTokenInvalid},
		{"empty session", noSession, apperrors.ErrTokenInvalid},
		{"unsigned", unsigned, apperrors.ErrTokenInvalid},
		{"garbage", "not-a-token", apperrors.ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateToken(tt.token, testTokenConfig)
			if !apperrors.HasCode(err, tt.code) {
				t.Errorf("ValidateToken() error = %v, want %s", err, tt.code)
			}
		})
	}
}
