package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"genzfits/internal/models"

	"github.com/lib/pq"
)

const productColumns = `id, name, price, category, COALESCE(description, ''), images, stock,
	original_price, discount, assured, brand, sizes, rating, review_count, created_at, updated_at`

func scanProduct(row rowScanner) (models.Product, error) {
	var (
		product       models.Product
		images        pq.StringArray
		sizes         pq.StringArray
		originalPrice sql.NullFloat64
		discount      sql.NullInt64
		assured       sql.NullBool
		brand         sql.NullString
	)

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Category,
		&product.Description,
		&images,
		&product.Stock,
		&originalPrice,
		&discount,
		&assured,
		&brand,
		&sizes,
		&product.Rating,
		&product.ReviewCount,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return models.Product{}, err
	}

	product.Images = []string(images)
	product.Sizes = []string(sizes)
	if originalPrice.Valid {
		value := originalPrice.Float64
		product.OriginalPrice = &value
	}
	if discount.Valid {
		value := int(discount.Int64)
		product.Discount = &value
	}
	if assured.Valid {
		value := assured.Bool
		product.Assured = &value
	}
	if brand.Valid {
		value := brand.String
		product.Brand = &value
	}
	if product.Images == nil {
		product.Images = []string{}
	}
	if product.Sizes == nil {
		product.Sizes = []string{}
	}

	return product, nil
}

func queryProducts(ctx context.Context, db *sql.DB, query string, args ...any) ([]models.Product, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		product, scanErr := scanProduct(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

func ListProducts(ctx context.Context, db *sql.DB) ([]models.Product, error) {
	return queryProducts(ctx, db, `SELECT `+productColumns+` FROM products ORDER BY id`)
}

// ListProductsByCategory matches the category exactly.
func ListProductsByCategory(ctx context.Context, db *sql.DB, category string) ([]models.Product, error) {
	return queryProducts(ctx, db, `SELECT `+productColumns+` FROM products WHERE category = $1 ORDER BY id`, category)
}

// SearchProducts matches names containing query, ignoring case. An empty
// query matches every product.
func SearchProducts(ctx context.Context, db *sql.DB, query string) ([]models.Product, error) {
	return queryProducts(ctx, db,
		`SELECT `+productColumns+` FROM products WHERE lower(name) LIKE $1 ESCAPE '\' ORDER BY id`,
		SearchPattern(query),
	)
}

// SearchPattern builds a LIKE pattern matching query as a literal substring.
// Surrounding whitespace in query is ignored.
func SearchPattern(query string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(strings.ToLower(strings.TrimSpace(query))) + "%"
}

func GetProduct(ctx context.Context, db *sql.DB, id int64) (models.Product, error) {
	product, err := scanProduct(db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrNotFound
	}
	return product, err
}

// CreateProduct inserts product and returns it with server-assigned id and timestamps.
func CreateProduct(ctx context.Context, db *sql.DB, product models.Product) (models.Product, error) {
	if len(nonEmpty(product.Images)) == 0 {
		return models.Product{}, ErrImagesRequired
	}
	product.Images = nonEmpty(product.Images)
	if product.Sizes == nil {
		product.Sizes = []string{}
	}

	err := db.QueryRowContext(ctx,
		`INSERT INTO products (name, price, category, description, images, stock, original_price, discount, assured, brand, sizes, rating, review_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		product.Name,
		product.Price,
		product.Category,
		product.Description,
		pq.Array(product.Images),
		product.Stock,
		product.OriginalPrice,
		product.Discount,
		product.Assured,
		product.Brand,
		pq.Array(product.Sizes),
		product.Rating,
		product.ReviewCount,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return models.Product{}, fmt.Errorf("insert product: %w", err)
	}

	return product, nil
}

// UpdateProduct merges patch into the stored product. A missing id yields
// (nil, nil) so callers can tell "nothing to update" apart from failures.
func UpdateProduct(ctx context.Context, db *sql.DB, id int64, patch models.ProductPatch) (*models.Product, error) {
	if patch.Images != nil && len(nonEmpty(*patch.Images)) == 0 {
		return nil, ErrImagesRequired
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	product, err := scanProduct(tx.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}

	models.ApplyPatch(&product, patch)
	product.Images = nonEmpty(product.Images)
	if product.Sizes == nil {
		product.Sizes = []string{}
	}

	err = tx.QueryRowContext(ctx,
		`UPDATE products
		 SET name = $1, price = $2, category = $3, description = $4, images = $5, stock = $6,
		     original_price = $7, discount = $8, assured = $9, brand = $10, sizes = $11,
		     rating = $12, review_count = $13, updated_at = NOW()
		 WHERE id = $14
		 RETURNING updated_at`,
		product.Name,
		product.Price,
		product.Category,
		product.Description,
		pq.Array(product.Images),
		product.Stock,
		product.OriginalPrice,
		product.Discount,
		product.Assured,
		product.Brand,
		pq.Array(product.Sizes),
		product.Rating,
		product.ReviewCount,
		id,
	).Scan(&product.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &product, nil
}

// DeleteProduct removes the product if present.
func DeleteProduct(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
