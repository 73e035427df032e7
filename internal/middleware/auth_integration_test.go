//go:build integration

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Test401Unauthorized verifies the auth error response format.
func TestIntegration401Unauthorized(t *testing.T) {
	rec := httptest.NewRecorder()
	writeAuthError(rec)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}

	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected JSON content type")
	}

	body := rec.Body.String()
	if body == "" {
		t.Error("Expected error body")
	}

	// Error body is the flat envelope used by the handlers.
	var errResp struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal([]byte(body), &errResp); err != nil {
		t.Fatalf("Failed to decode error body: %v\nBody: %s", err, body)
	}
	if errResp.Code != "UNAUTHORIZED" {
		t.Errorf("Expected code UNAUTHORIZED, got %q", errResp.Code)
	}
	if errResp.Error == "" {
		t.Error("Expected non-empty error message")
	}
}

// Test403Forbidden verifies the forbidden error format.
func TestIntegration403Forbidden(t *testing.T) {
	rec := httptest.NewRecorder()
	writeScopeError(rec, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}

	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected JSON content type")
	}

	var errResp struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("Failed to decode error body: %v\nBody: %s", err, rec.Body.String())
	}
	if errResp.Code != "FORBIDDEN" {
		t.Errorf("Expected code FORBIDDEN, got %q", errResp.Code)
	}
	if errResp.Error != "Insufficient permissions" {
		t.Errorf("Expected error message in 'error' field, got %q", errResp.Error)
	}
}

// TestExtractCredential tests credential extraction from headers.
func TestIntegrationExtractCredential(t *testing.T) {
	testCases := []struct {
		name       string
		authHeader string
		want       string
	}{
		{
			name:       "Bearer credential",
			authHeader: "Bearer rk_live_abc123_secret",
			want:       "rk_live_abc123_secret",
		},
		{
			name:       "Token credential",
			authHeader: "Token rk_live_abc123_secret",
			want:       "rk_live_abc123_secret",
		},
		{
			name: "No credential",
			want: "",
		},
		{
			name:       "Unsupported auth scheme",
			authHeader: "Basic abc123",
			want:       "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}

			got := extractCredential(req)
			if got != tc.want {
				t.Errorf("extractCredential() = %q, want %q", got, tc.want)
			}
		})
	}
}

// TestGetClientIP verifies IP extraction from various headers.
func TestIntegrationGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{
			name:       "X-Forwarded-For single",
			xff:        "1.2.3.4",
			remoteAddr: "127.0.0.1:8080",
			want:       "1.2.3.4",
		},
		{
			name:       "X-Forwarded-For multiple",
			xff:        "1.2.3.4, 5.6.7.8, 9.10.11.12",
			remoteAddr: "127.0.0.1:8080",
			want:       "1.2.3.4",
		},
		{
			name:       "X-Real-IP",
			xri:        "1.2.3.4",
			remoteAddr: "127.0.0.1:8080",
			want:       "1.2.3.4",
		},
		{
			name:       "Fallback to RemoteAddr",
			remoteAddr: "192.168.1.1:12345",
			want:       "192.168.1.1:12345",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xri != "" {
				req.Header.Set("X-Real-IP", tc.xri)
			}
			req.RemoteAddr = tc.remoteAddr

			got := getClientIP(req)
			if got != tc.want {
				t.Errorf("getClientIP() = %q, want %q", got, tc.want)
			}
		})
	}
}

