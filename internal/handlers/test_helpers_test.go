package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"genzfits/internal/database"
	"genzfits/internal/middleware"
	"genzfits/internal/models"
	"genzfits/internal/session"
	"genzfits/internal/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

const testSessionSecret = "genzfits_test_session_secret_0123456789"

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	previousDB := database.DB
	database.DB = db

	cleanup := func() {
		database.DB = previousDB
		_ = db.Close()
	}

	return db, mock, cleanup
}

// setupHandlers configures the package with a fresh session store and
// uploads dir and returns the store.
func setupHandlers(t *testing.T) *session.Store {
	t.Helper()
	gin.SetMode(gin.TestMode)

	signer, err := utils.NewTokenSigner(testSessionSecret)
	if err != nil {
		t.Fatalf("NewTokenSigner: %v", err)
	}
	store := session.NewStore(signer, 10*time.Minute)

	Configure(Options{
		Sessions:            store,
		UploadsBasePath:     t.TempDir(),
		MaxImageUploadBytes: 1024,
		MaxParallelUploads:  2,
		MonitoringAPIKey:    "monitor-key",
	})
	t.Cleanup(func() {
		Configure(Options{})
		SetMonitoringService(nil)
	})
	return store
}

func newTestRouter(store *session.Store) *gin.Engine {
	router := gin.New()
	router.Use(middleware.SessionMiddleware(store))
	return router
}

func openSession(t *testing.T, store *session.Store, user models.User) string {
	t.Helper()
	sess, err := store.Create(user)
	if err != nil {
		t.Fatalf("Create session: %v", err)
	}
	return sess.Token
}

func doJSON(router *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeJSON(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("json.Unmarshal(%s): %v", resp.Body.String(), err)
	}
	return out
}

func sessionCookie(resp *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == session.CookieName {
			return cookie
		}
	}
	return nil
}

func mustStatus(t *testing.T, actual int, expected int) {
	t.Helper()
	if actual != expected {
		t.Fatalf("expected status %d, got %d", expected, actual)
	}
}

func expectHTTP200(t *testing.T, status int) {
	t.Helper()
	mustStatus(t, status, http.StatusOK)
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

var productColumnNames = []string{
	"id", "name", "price", "category", "description", "images", "stock",
	"original_price", "discount", "assured", "brand", "sizes", "rating", "review_count",
	"created_at", "updated_at",
}

func productRow(id int64, name string) *sqlmock.Rows {
	return sqlmock.NewRows(productColumnNames).AddRow(
		id, name, 499.0, "tshirts", "", "{/uploads/images/a.png}", 5,
		nil, nil, nil, nil, "{}", 0.0, 0, testNow, testNow,
	)
}

var userColumnNames = []string{"id", "full_name", "username", "mobile", "password", "is_admin", "created_at"}
