package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/muninn/pkg/flash"
	"github.com/ssargent/muninn/pkg/store"
)

const testAPIKey = "test-key"

// Prometheus collectors register globally, so every test shares one
// Metrics instance.
var (
	testMetricsOnce sync.Once
	testMetrics     *Metrics
)

func sharedMetrics() *Metrics {
	testMetricsOnce.Do(func() {
		testMetrics = NewMetrics()
	})
	return testMetrics
}

func setupTestRouter(t *testing.T) chi.Router {
	t.Helper()

	geom := flash.Geometry{
		BlockSize:  4096,
		TargetBase: 256 * 1024,
		DeviceSize: 64 * 1024,
	}

	dev, err := flash.NewMemDevice(geom)
	if err != nil {
		t.Fatalf("Failed to create device: %v", err)
	}

	recordStore, err := store.NewRecordStore(store.RecordStoreConfig{
		Geometry: geom,
		Device:   dev,
	})
	if err != nil {
		t.Fatalf("Failed to create record store: %v", err)
	}

	metrics := sharedMetrics()
	server := NewServer(recordStore, ServerConfig{APIKey: testAPIKey}, metrics)
	return NewRouter(server, metrics)
}

func doRequest(t *testing.T, router chi.Router, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(t, router, "GET", "/api/v1/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if !resp.Success {
		t.Error("Expected success response")
	}
}

func TestServer_Geometry(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(t, router, "GET", "/api/v1/geometry", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Success bool              `json:"success"`
		Data    map[string]uint64 `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Data["block_size"] != 4096 {
		t.Errorf("Block size: got %d, want 4096", resp.Data["block_size"])
	}
	if resp.Data["capacity"] != 4096-13 {
		t.Errorf("Capacity: got %d, want %d", resp.Data["capacity"], 4096-13)
	}
}

func TestServer_WriteReadRoundTrip(t *testing.T) {
	router := setupTestRouter(t)
	payload := []byte("payload over http")

	w := doRequest(t, router, "PUT", "/api/v1/records/4096", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("Write: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool       `json:"success"`
		Data    RecordInfo `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Data.WriteCount != 1 {
		t.Errorf("Write count: got %d, want 1", resp.Data.WriteCount)
	}

	w = doRequest(t, router, "GET", "/api/v1/records/4096", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Read: expected 200, got %d", w.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), payload) {
		t.Errorf("Payload mismatch: got %q", w.Body.Bytes())
	}
	if got := w.Header().Get("X-Write-Count"); got != "1" {
		t.Errorf("X-Write-Count: got %q, want \"1\"", got)
	}
}

func TestServer_EraseAndInfo(t *testing.T) {
	router := setupTestRouter(t)

	doRequest(t, router, "PUT", "/api/v1/records/8192", []byte("temp"))

	w := doRequest(t, router, "DELETE", "/api/v1/records/8192", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Erase: expected 200, got %d", w.Code)
	}

	// Reads of the erased block fail, the counter survives.
	w = doRequest(t, router, "GET", "/api/v1/records/8192", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Read after erase: expected 404, got %d", w.Code)
	}

	w = doRequest(t, router, "GET", "/api/v1/records/8192/info", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Info: expected 200, got %d", w.Code)
	}

	var resp struct {
		Success bool       `json:"success"`
		Data    RecordInfo `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Data.WriteCount != 1 {
		t.Errorf("Write count after erase: got %d, want 1", resp.Data.WriteCount)
	}
	if resp.Data.PayloadLength != 0 {
		t.Errorf("Payload length after erase: got %d, want 0", resp.Data.PayloadLength)
	}
	if resp.Data.Valid {
		t.Error("Erased record reported valid")
	}
}

func TestServer_ValidationErrors(t *testing.T) {
	router := setupTestRouter(t)

	testCases := []struct {
		name       string
		method     string
		path       string
		body       []byte
		wantStatus int
	}{
		{
			name:       "misaligned write",
			method:     "PUT",
			path:       "/api/v1/records/100",
			body:       []byte("x"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty payload",
			method:     "PUT",
			path:       "/api/v1/records/4096",
			body:       []byte{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "oversized payload",
			method:     "PUT",
			path:       "/api/v1/records/4096",
			body:       bytes.Repeat([]byte{1}, 4096),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "out of range erase",
			method:     "DELETE",
			path:       "/api/v1/records/1048576",
			wantStatus: http.StatusRequestedRangeNotSatisfiable,
		},
		{
			name:       "unwritten read",
			method:     "GET",
			path:       "/api/v1/records/12288",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "non-numeric offset",
			method:     "GET",
			path:       "/api/v1/records/abc",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(t, router, tc.method, tc.path, tc.body)
			if w.Code != tc.wantStatus {
				t.Errorf("Expected %d, got %d: %s", tc.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestServer_RequiresAPIKey(t *testing.T) {
	router := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without API key, got %d", w.Code)
	}
}

func TestServer_RequestID(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(t, router, "GET", "/api/v1/health", nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header on response")
	}
}
