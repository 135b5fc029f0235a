package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"genzfits/internal/monitoring"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func doMonitor(router *gin.Engine, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if key != "" {
		req.Header.Set("X-Monitoring-Key", key)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestMonitoringRejectsWrongKey(t *testing.T) {
	setupHandlers(t)
	router := gin.New()
	router.GET("/api/monitoring/runtime", MonitorRuntime)

	mustStatus(t, doMonitor(router, "/api/monitoring/runtime", "").Code, http.StatusUnauthorized)
	mustStatus(t, doMonitor(router, "/api/monitoring/runtime", "wrong").Code, http.StatusUnauthorized)

	resp := doMonitor(router, "/api/monitoring/runtime", "monitor-key")
	expectHTTP200(t, resp.Code)
	if text, _ := decodeJSON(t, resp)["text"].(string); text == "" {
		t.Fatalf("expected runtime text")
	}
}

func TestMonitoringDisabledWithoutKey(t *testing.T) {
	setupHandlers(t)
	opts := currentOptions()
	opts.MonitoringAPIKey = ""
	Configure(opts)

	router := gin.New()
	router.GET("/api/monitoring/runtime", MonitorRuntime)

	resp := doMonitor(router, "/api/monitoring/runtime", "monitor-key")
	mustStatus(t, resp.Code, http.StatusServiceUnavailable)
}

func TestMonitorFilesListPagesLargestFirst(t *testing.T) {
	setupHandlers(t)
	uploadsDir := currentOptions().UploadsBasePath
	SetMonitoringService(monitoring.NewService(time.Now(), uploadsDir, nil))

	imagesDir := filepath.Join(uploadsDir, imagesSubdir)
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	for name, size := range map[string]int{"small.png": 10, "large.png": 300, "medium.png": 100} {
		if err := os.WriteFile(filepath.Join(imagesDir, name), make([]byte, size), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	router := gin.New()
	router.GET("/api/monitoring/files", MonitorFilesList)

	resp := doMonitor(router, "/api/monitoring/files?limit=2", "monitor-key")
	expectHTTP200(t, resp.Code)

	out := decodeJSON(t, resp)
	if out["total_files"] != float64(3) || out["total_pages"] != float64(2) {
		t.Fatalf("unexpected paging %v", out)
	}
	files, _ := out["files"].([]any)
	if len(files) != 2 {
		t.Fatalf("expected 2 files on first page, got %d", len(files))
	}
	first, _ := files[0].(map[string]any)
	if first["relative_path"] != "images/large.png" {
		t.Fatalf("expected largest file first, got %v", first)
	}
}

func TestMonitorUsersListClampsPageToLastPage(t *testing.T) {
	setupHandlers(t)
	_, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`LIMIT \$1 OFFSET \$2`).
		WithArgs(2, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "full_name", "is_admin", "created_at", "orders_count", "orders_total"}).
			AddRow(int64(1), "demo_user", "Demo", false, testNow, int64(2), 998.0))

	router := gin.New()
	router.GET("/api/monitoring/users", MonitorUsersList)

	resp := doMonitor(router, "/api/monitoring/users?limit=2&page=9223372036854775807", "monitor-key")
	expectHTTP200(t, resp.Code)

	out := decodeJSON(t, resp)
	if out["page"] != float64(2) || out["total_pages"] != float64(2) {
		t.Fatalf("unexpected paging %v", out)
	}
	users, _ := out["users"].([]any)
	if len(users) != 1 {
		t.Fatalf("expected 1 user on last page, got %d", len(users))
	}
	expectationsMet(t, mock)
}

func TestParsePositiveInt(t *testing.T) {
	cases := map[string]int{"": 5, "abc": 5, "-1": 5, "0": 5, "12": 12}
	for raw, expected := range cases {
		if got := parsePositiveInt(raw, 5); got != expected {
			t.Fatalf("parsePositiveInt(%q) = %d, want %d", raw, got, expected)
		}
	}
}
