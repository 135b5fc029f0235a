package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
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

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows(productColumnNames)
}

var orderColumnNames = []string{
	"id", "user_id", "username", "full_name", "status", "total", "shipping_address", "created_at", "updated_at",
}

var orderItemColumnNames = []string{
	"id", "order_id", "product_id", "product_name", "quantity", "unit_price", "size",
}

var userColumnNames = []string{"id", "full_name", "username", "mobile", "password", "is_admin", "created_at"}

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func ctx() context.Context {
	return context.Background()
}
