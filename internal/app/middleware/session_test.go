package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func sessionRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(requestid.New())
	r.GET("/", mw, func(c *gin.Context) {
		c.String(http.StatusOK, GetSessionID(c))
	})
	return r
}

func serve(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireSession(t *testing.T) {
	token, _, err := GenerateToken(testTokenConfig, "abc")
	if err != nil {
		t.Fatal(err)
	}
	r := sessionRouter(RequireSession(testTokenConfig))

	w := serve(r, "Bearer "+token)
	if w.Code != http.StatusOK || w.Body.String() != "abc" {
		t.Errorf("valid token: %d %q", w.Code, w.Body.String())
	}

	tests := []struct {
		name string
		auth string
		code string
	}{
		{"missing", "", "UNAUTHORIZED"},
		{"malformed", "Token " + token, "UNAUTHORIZED"},
		{"empty bearer", "Bearer ", "UNAUTHORIZED"},
		{"invalid", "Bearer nope", "TOKEN_INVALID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.auth)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.code) {
				t.Errorf("body = %s, want %s", w.Body.String(), tt.code)
			}
		})
	}
}

func TestOptionalSession(t *testing.T) {
	token, _, _ := GenerateToken(testTokenConfig, "abc")
	r := sessionRouter(OptionalSession(testTokenConfig))

	for auth, want := range map[string]string{
		"":                "",
		"Bearer " + token: "abc",
		"Bearer nope":     "",
		"Basic xyz":       "",
	} {
		w := serve(r, auth)
		if w.Code != http.StatusOK || w.Body.String() != want {
			t.Errorf("auth %q: %d %q, want 200 %q", auth, w.Code, w.Body.String(), want)
		}
	}
}

func TestAbortedResponseEnvelope(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	defer rl.Stop()

	r := gin.New()
	r.Use(requestid.New())
	r.GET("/limited", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/private", RequireSession(testTokenConfig), func(c *gin.Context) { c.Status(http.StatusOK) })

	serveRequest := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}
	serveRequest("/limited")

	tests := []struct {
		name   string
		w      *httptest.ResponseRecorder
		status int
	}{
		{"unauthorized", serveRequest("/private"), http.StatusUnauthorized},
		{"rate limited", serveRequest("/limited"), http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.w.Code != tt.status {
				t.Fatalf("status = %d, want %d", tt.w.Code, tt.status)
			}
			var body struct {
				Success bool `json:"success"`
				Meta    *struct {
					RequestID string `json:"request_id"`
				} `json:"meta"`
				Timestamp string `json:"timestamp"`
			}
			if err := json.Unmarshal(tt.w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Success || body.Timestamp == "" {
				t.Errorf("body = %s, want success=false with timestamp", tt.w.Body.String())
			}
			if body.Meta == nil || body.Meta.RequestID != tt.w.Header().Get("X-Request-ID") || body.Meta.RequestID == "" {
				t.Errorf("body = %s, want meta.request_id matching X-Request-ID", tt.w.Body.String())
			}
		})
	}
}

func TestRecoveryEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.NewNop()), requestid.New())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), "INTERNAL_ERROR") {
		t.Errorf("panic response = %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"timestamp"`) {
		t.Errorf("panic response has no timestamp: %s", w.Body.String())
	}
}
