package database

import (
	"database/sql"
	"fmt"
)

// CreateTables creates all required tables and indexes when missing
func CreateTables(db *sql.DB) error {
	steps := []struct {
		name  string
		query string
	}{
		{"pg_trgm extension", `CREATE EXTENSION IF NOT EXISTS pg_trgm`},
		{"users table", `
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			full_name VARCHAR(255) NOT NULL DEFAULT '',
			username VARCHAR(255) NOT NULL,
			mobile VARCHAR(32) NOT NULL,
			password VARCHAR(255) NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT users_username_key UNIQUE (username),
			CONSTRAINT users_mobile_key UNIQUE (mobile)
		)`},
		{"products table", `
		CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			category VARCHAR(100) NOT NULL,
			description TEXT,
			images TEXT[] NOT NULL DEFAULT '{}',
			stock INTEGER NOT NULL,
			original_price DOUBLE PRECISION,
			discount INTEGER,
			assured BOOLEAN,
			brand VARCHAR(255),
			sizes TEXT[] NOT NULL DEFAULT '{}',
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			review_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
		{"orders table", `
		CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
			status VARCHAR(50) NOT NULL DEFAULT 'pending',
			total DOUBLE PRECISION NOT NULL DEFAULT 0,
			shipping_address TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
		{"order_items table", `
		CREATE TABLE IF NOT EXISTS order_items (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id BIGINT REFERENCES products(id) ON DELETE SET NULL,
			product_name VARCHAR(255) NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price DOUBLE PRECISION NOT NULL,
			size VARCHAR(20) NOT NULL DEFAULT ''
		)`},
		{"products category index", `CREATE INDEX IF NOT EXISTS products_category_idx ON products(category)`},
		{"products name search index", `CREATE INDEX IF NOT EXISTS products_name_trgm_idx ON products USING gin (lower(name) gin_trgm_ops)`},
		{"orders user index", `CREATE INDEX IF NOT EXISTS orders_user_created_idx ON orders(user_id, created_at DESC)`},
		{"orders status index", `CREATE INDEX IF NOT EXISTS orders_status_idx ON orders(status)`},
		{"order_items order index", `CREATE INDEX IF NOT EXISTS order_items_order_idx ON order_items(order_id)`},
	}

	for _, step := range steps {
		if _, err := db.Exec(step.query); err != nil {
			return fmt.Errorf("ensure %s: %w", step.name, err)
		}
	}

	return nil
}
