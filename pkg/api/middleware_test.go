package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIKeyMiddleware(t *testing.T) {
	const expectedKey = "test-api-key-12345"

	handler := apiKeyMiddleware(expectedKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("success"))
	}))

	testCases := []struct {
		name           string
		apiKey         string
		setHeader      bool
		expectedStatus int
	}{
		{
			name:           "valid API key",
			apiKey:         expectedKey,
			setHeader:      true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing API key",
			setHeader:      false,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid API key",
			apiKey:         "wrong-key",
			setHeader:      true,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "empty API key",
			apiKey:         "",
			setHeader:      true,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/health", nil)
			if tc.setHeader {
				req.Header.Set("X-API-Key", tc.apiKey)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected status %d, got %d", tc.expectedStatus, w.Code)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("generates an ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Header().Get("X-Request-ID") == "" {
			t.Error("Expected a generated X-Request-ID")
		}
	})

	t.Run("propagates a caller ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Request-ID", "caller-supplied")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if got := w.Header().Get("X-Request-ID"); got != "caller-supplied" {
			t.Errorf("Expected caller-supplied ID, got %q", got)
		}
	})
}
