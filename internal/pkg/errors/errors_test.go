package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestConstructorsStatus(t *testing.T) {
	tests := []struct {
		err    *APIError
		code   ErrorCode
		status int
	}{
		{Validation("bad"), ErrValidation, http.StatusBadRequest},
		{InvalidRating(7), ErrInvalidRating, http.StatusBadRequest},
		{InvalidInput("bad"), ErrInvalidInput, http.StatusBadRequest},
		{NotFound("recipe"), ErrNotFound, http.StatusNotFound},
		{Unauthorized("no"), ErrUnauthorized, http.StatusUnauthorized},
		{Upstream("store", stderrors.New("down")), ErrUpstream, http.StatusBadGateway},
		{RateLimited(), ErrRateLimited, http.StatusTooManyRequests},
		{Internal("boom"), ErrInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if tt.err.Code != tt.code || tt.err.HTTPStatus != tt.status {
			t.Errorf("%s = %s/%d, want %s/%d", tt.code, tt.err.Code, tt.err.HTTPStatus, tt.code, tt.status)
		}
	}
	if msg := NotFound("recipe").Message; msg != "recipe not found" {
		t.Errorf("NotFound message = %q", msg)
	}
}

func TestWrappedCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := fmt.Errorf("update rating: %w", Upstream("recipe store", cause))

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is() lost the cause")
	}
	if !HasCode(err, ErrUpstream) {
		t.Error("HasCode() = false through fmt wrapping")
	}

	body, _ := json.Marshal(NewErrorResponse(FromError(err), "req-1"))
	if strings.Contains(string(body), "connection refused") {
		t.Errorf("cause leaked into response body: %s", body)
	}
}

func TestFromError(t *testing.T) {
	plain := FromError(stderrors.New("boom"))
	if plain.Code != ErrInternal || plain.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("FromError(plain) = %s/%d", plain.Code, plain.HTTPStatus)
	}

	orig := Validation("pantry is empty")
	if got := FromError(orig); got != orig {
		t.Error("FromError() did not return the original APIError")
	}
}

func TestInvalidRatingDetails(t *testing.T) {
	body, err := json.Marshal(InvalidRating(4.5))
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Code != "INVALID_RATING" || decoded.Details["rating"] != 4.5 {
		t.Errorf("body = %s", body)
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(RateLimited(), "req-42")
	if resp.Success || resp.Timestamp == "" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Meta == nil || resp.Meta.RequestID != "req-42" {
		t.Errorf("Meta = %+v, want request id req-42", resp.Meta)
	}
	if NewErrorResponse(RateLimited(), "").Meta != nil {
		t.Error("Meta set without a request id")
	}
}
