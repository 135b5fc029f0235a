package handlers

import (
	"net/http"
	"regexp"
	"strings"
	"testing"

	"genzfits/internal/models"
	"genzfits/internal/session"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

var orderColumnNames = []string{
	"id", "user_id", "username", "full_name", "status", "total", "shipping_address", "created_at", "updated_at",
}

var orderItemColumnNames = []string{
	"id", "order_id", "product_id", "product_name", "quantity", "unit_price", "size",
}

func newOrderRouter(store *session.Store) *gin.Engine {
	router := newTestRouter(store)
	router.GET("/api/admin/orders", ListOrders)
	router.GET("/api/admin/orders/:id", GetOrder)
	router.PUT("/api/admin/orders/:id", UpdateOrderStatus)
	router.POST("/api/orders", PlaceOrder)
	router.GET("/api/orders", ListMyOrders)
	return router
}

func TestUpdateMissingOrderReturnsNull(t *testing.T) {
	store := setupHandlers(t)
	_, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING id`)).
		WithArgs("shipped", int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	resp := doJSON(newOrderRouter(store), http.MethodPut, "/api/admin/orders/404", map[string]string{"status": "shipped"}, "")
	expectHTTP200(t, resp.Code)
	if body := strings.TrimSpace(resp.Body.String()); body != "null" {
		t.Fatalf("expected null body, got %q", body)
	}
	expectationsMet(t, mock)
}

func TestUpdateOrderStatusRequiresStatus(t *testing.T) {
	store := setupHandlers(t)
	_, mock, cleanup := setupMockDB(t)
	defer cleanup()

	resp := doJSON(newOrderRouter(store), http.MethodPut, "/api/admin/orders/10", map[string]string{"status": " "}, "")
	mustStatus(t, resp.Code, http.StatusBadRequest)
	message, _ := decodeJSON(t, resp)["error"].(string)
	if !strings.HasPrefix(message, "Error updating order:") {
		t.Fatalf("unexpected error %q", message)
	}
	expectationsMet(t, mock)
}

func TestUpdateOrderStatusRejectsOverlongStatus(t *testing.T) {
	store := setupHandlers(t)
	_, mock, cleanup := setupMockDB(t)
	defer cleanup()

	resp := doJSON(newOrderRouter(store), http.MethodPut, "/api/admin/orders/10",
		map[string]string{"status": strings.Repeat("x", 60)}, "")
	mustStatus(t, resp.Code, http.StatusBadRequest)
	expectationsMet(t, mock)
}

func TestUpdateOrderStatusReturnsOrder(t *testing.T) {
	store := setupHandlers(t)
	_, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery(`UPDATE orders SET status`).
		WithArgs("shipped", int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
	mock.ExpectQuery(`WHERE o.id = \$1`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(orderColumnNames).
			AddRow(int64(10), int64(7), "demo_user", "Demo User", "shipped", 998.0, "Street 1", testNow, testNow))
	mock.ExpectQuery(`WHERE order_id = ANY\(\$1\)`).
		WillReturnRows(sqlmock.NewRows(orderItemColumnNames).
			AddRow(int64(1), int64(10), int64(3), "Tee", 2, 499.0, "M"))

	resp := doJSON(newOrderRouter(store), http.MethodPut, "/api/admin/orders/10", map[string]string{"status": "shipped"}, "")
	expectHTTP200(t, resp.Code)

	out := decodeJSON(t, resp)
	items, _ := out["items"].([]any)
	if out["status"] != "shipped" || len(items) != 1 {
		t.Fatalf("unexpected order %v", out)
	}
	expectationsMet(t, mock)
}

func TestListOrdersFiltersByStatus(t *testing.T) {
	store := setupHandlers(t)
	_, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery(`WHERE o.status = \$1`).
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows(orderColumnNames))

	resp := doJSON(newOrderRouter(store), http.MethodGet, "/api/admin/orders?status=pending", nil, "")
	expectHTTP200(t, resp.Code)
	if body := strings.TrimSpace(resp.Body.String()); body != "[]" {
		t.Fatalf("expected empty array, got %q", body)
	}
	expectationsMet(t, mock)
}

func TestGetOrderNotFound(t *testing.T) {
	store := setupHandlers(t)
	_, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery(`WHERE o.id = \$1`).
		WithArgs(int64(55)).
		WillReturnRows(sqlmock.NewRows(orderColumnNames))

	resp := doJSON(newOrderRouter(store), http.MethodGet, "/api/admin/orders/55", nil, "")
	mustStatus(t, resp.Code, http.StatusNotFound)
	expectationsMet(t, mock)
}

func TestPlaceOrderRequiresSession(t *testing.T) {
	store := setupHandlers(t)
	_, mock, cleanup := setupMockDB(t)
	defer cleanup()

	resp := doJSON(newOrderRouter(store), http.MethodPost, "/api/orders", map[string]any{
		"items": []map[string]any{{"productId": 3, "quantity": 1}},
	}, "")
	mustStatus(t, resp.Code, http.StatusUnauthorized)
	expectationsMet(t, mock)
}

func TestPlaceOrderRejectsInsufficientStock(t *testing.T) {
	store := setupHandlers(t)
	_, mock, cleanup := setupMockDB(t)
	defer cleanup()

	token := openSession(t, store, models.User{ID: 7, Username: "demo_user"})

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name, price, stock FROM products WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "price", "stock"}).AddRow("Tee", 499.0, 1))
	mock.ExpectRollback()

	resp := doJSON(newOrderRouter(store), http.MethodPost, "/api/orders", map[string]any{
		"items":           []map[string]any{{"productId": 3, "quantity": 2, "size": "M"}},
		"shippingAddress": "Street 1",
	}, token)

	mustStatus(t, resp.Code, http.StatusBadRequest)
	message, _ := decodeJSON(t, resp)["error"].(string)
	if !strings.Contains(message, "insufficient stock") {
		t.Fatalf("unexpected error %q", message)
	}
	expectationsMet(t, mock)
}

func TestPlaceOrderRecordsItems(t *testing.T) {
	store := setupHandlers(t)
	_, mock, cleanup := setupMockDB(t)
	defer cleanup()

	token := openSession(t, store, models.User{ID: 7, Username: "demo_user", FullName: "Demo User"})

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT name, price, stock FROM products`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "price", "stock"}).AddRow("Tee", 499.0, 5))
	mock.ExpectExec(`UPDATE products SET stock = stock - \$1`).
		WithArgs(2, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs(int64(7), "pending", 998.0, "Street 1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "created_at", "updated_at"}).
			AddRow(int64(10), "pending", testNow, testNow))
	mock.ExpectQuery(`INSERT INTO order_items`).
		WithArgs(int64(10), sqlmock.AnyArg(), "Tee", 2, 499.0, "M").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectCommit()

	resp := doJSON(newOrderRouter(store), http.MethodPost, "/api/orders", map[string]any{
		"items":           []map[string]any{{"productId": 3, "quantity": 2, "size": "M"}},
		"shippingAddress": "Street 1",
	}, token)

	mustStatus(t, resp.Code, http.StatusCreated)
	out := decodeJSON(t, resp)
	if out["total"] != 998.0 || out["status"] != "pending" {
		t.Fatalf("unexpected order %v", out)
	}
	user, _ := out["user"].(map[string]any)
	if user["username"] != "demo_user" {
		t.Fatalf("expected order user summary, got %v", out["user"])
	}
	expectationsMet(t, mock)
}

func TestListMyOrdersScopesToSessionUser(t *testing.T) {
	store := setupHandlers(t)
	_, mock, cleanup := setupMockDB(t)
	defer cleanup()

	token := openSession(t, store, models.User{ID: 7, Username: "demo_user"})

	mock.ExpectQuery(`WHERE o.user_id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(orderColumnNames))

	resp := doJSON(newOrderRouter(store), http.MethodGet, "/api/orders", nil, token)
	expectHTTP200(t, resp.Code)
	expectationsMet(t, mock)
}
