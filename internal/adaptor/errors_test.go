package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/domain"

	"go.uber.org/zap/zaptest"
)

func TestHandleServiceErrorStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domain.NewValidation(domain.CodeInvalidDuration, "duration_hours", "too short"), http.StatusBadRequest, "InvalidDuration"},
		{"state", domain.InvalidTransition(string(entity.BookingStatusPending), string(entity.BookingStatusCompleted)), http.StatusConflict, "InvalidTransition"},
		{"not found", domain.NewNotFound(domain.CodeBookingNotFound, "booking not found"), http.StatusNotFound, "BookingNotFound"},
		{"forbidden", domain.NewForbidden("not yours"), http.StatusForbidden, "Forbidden"},
		{"unavailable", domain.NewUnavailable(domain.CodeStorageUnavailable, "down"), http.StatusServiceUnavailable, "StorageUnavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleServiceError(rec, zaptest.NewLogger(t), tc.err, "test")

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var body struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tc.code {
				t.Fatalf("expected code %q, got %q", tc.code, body.Code)
			}
			if tc.code == "" && body.Message != "Internal server error" {
				t.Fatalf("internal error leaked: %q", body.Message)
			}
		})
	}
}

func TestHandleServiceErrorFieldDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := domain.NewInvalidRequest(map[string]string{"venue_address": "min"})
	handleServiceError(rec, zaptest.NewLogger(t), err, "create booking")

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Errors["venue_address"] != "min" {
		t.Fatalf("expected field errors, got %v", body.Errors)
	}
}
