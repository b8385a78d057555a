// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/placewise/placewise/internal/models"
)

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain string untouched", input: "hello world", want: "hello world"},
		{name: "newline escaped", input: "line1\nline2", want: "line1\\x0aline2"},
		{name: "carriage return escaped", input: "a\rb", want: "a\\x0db"},
		{name: "tab escaped", input: "a\tb", want: "a\\x09b"},
		{name: "delete escaped", input: "a\x7fb", want: "a\\x7fb"},
		{name: "unicode preserved", input: "café", want: "café"},
		{name: "empty string", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := sanitizeLogValue(tt.input); got != tt.want {
				t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerateETag(t *testing.T) {
	t.Parallel()

	// FNV-1a offset basis for empty input.
	if got := generateETag(nil); got != "811c9dc5" {
		t.Errorf("generateETag(nil) = %q, want %q", got, "811c9dc5")
	}

	a := generateETag([]byte(`{"status":"success"}`))
	b := generateETag([]byte(`{"status":"error"}`))
	if a == b {
		t.Errorf("generateETag() gave identical tags %q for different inputs", a)
	}
	if a != generateETag([]byte(`{"status":"success"}`)) {
		t.Error("generateETag() is not deterministic")
	}
}

func TestRespondJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respondJSON(rec, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]string{"hello": "world"},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=60" {
		t.Errorf("Cache-Control = %q, want public, max-age=60", got)
	}
	if got := rec.Header().Get("ETag"); got != generateETag(rec.Body.Bytes()) {
		t.Errorf("ETag = %q does not match response body", got)
	}

	var body models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body.Status != "success" {
		t.Errorf("status field = %q, want success", body.Status)
	}
}

func TestRespondError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respondError(rec, http.StatusBadRequest, "INVALID_COORDINATES", "lat and lng must both be valid numbers", nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var body models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body.Status != "error" {
		t.Errorf("status field = %q, want error", body.Status)
	}
	if body.Error == nil {
		t.Fatal("error field missing")
	}
	if body.Error.Code != "INVALID_COORDINATES" {
		t.Errorf("error code = %q, want INVALID_COORDINATES", body.Error.Code)
	}
	if body.Data != nil {
		t.Errorf("data = %v, want null", body.Data)
	}
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   coordinatesQuery
		wantErr bool
	}{
		{name: "valid coordinates", query: coordinatesQuery{Lat: 48.2, Lng: 16.4}, wantErr: false},
		{name: "zero coordinates skip validation", query: coordinatesQuery{}, wantErr: false},
		{name: "latitude out of range", query: coordinatesQuery{Lat: 95, Lng: 16.4}, wantErr: true},
		{name: "longitude out of range", query: coordinatesQuery{Lat: 48.2, Lng: 181}, wantErr: true},
		{name: "boundary values pass", query: coordinatesQuery{Lat: 90, Lng: -180}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			apiErr := validateRequest(&tt.query)
			if tt.wantErr {
				if apiErr == nil {
					t.Fatal("validateRequest() = nil, want error")
				}
				if apiErr.Code != "VALIDATION_ERROR" {
					t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
				}
				return
			}
			if apiErr != nil {
				t.Errorf("validateRequest() = %+v, want nil", apiErr)
			}
		})
	}
}
