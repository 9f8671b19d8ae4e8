package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/hualin/docpack/internal/api/middleware"
	"github.com/hualin/docpack/internal/batch"
	"github.com/hualin/docpack/internal/pipeline"
)

func testRouter(t *testing.T, archiveDir string) http.Handler {
	t.Helper()
	return SetupRouter(nil, archiveDir, "test", middleware.CORSConfig{AllowAllOrigins: true}, nil)
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t, t.TempDir())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if body["status"] != "ok" || body["service"] != "docpack" || body["archive"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestHealthEndpointMissingArchive(t *testing.T) {
	router := testRouter(t, filepath.Join(t.TempDir(), "nope"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if body["archive"] != "missing" {
		t.Errorf("archive = %q, want missing", body["archive"])
	}
}

func TestRunEndpointNoRun(t *testing.T) {
	router := testRouter(t, t.TempDir())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRunEndpointReturnsLedgerState(t *testing.T) {
	dir := t.TempDir()
	store := batch.NewStore(filepath.Join(dir, pipeline.DownloadProgressName), nil)

	led := batch.NewLedger()
	led.Total = 3
	led.MarkCompleted("https://docs.example/zh/ug-a.html")
	led.MarkCompleted("https://docs.example/zh/ug-b.html")
	if err := store.Save(led); err != nil {
		t.Fatal(err)
	}

	router := testRouter(t, dir)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var body struct {
		Total     int `json:"total"`
		Completed int `json:"completed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if body.Total != 3 || body.Completed != 2 {
		t.Errorf("body = %+v, want total 3, completed 2", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := testRouter(t, t.TempDir())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/runs", nil)
	req.Header.Set("Origin", "https://app.example")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
