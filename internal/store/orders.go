package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"genzfits/internal/models"

	"github.com/lib/pq"
)

const orderSelect = `
	SELECT o.id, o.user_id, u.username, u.full_name, o.status, o.total, o.shipping_address, o.created_at, o.updated_at
	FROM orders o
	LEFT JOIN users u ON u.id = o.user_id`

func scanOrder(row rowScanner) (models.Order, error) {
	var (
		order    models.Order
		userID   sql.NullInt64
		username sql.NullString
		fullName sql.NullString
	)

	err := row.Scan(
		&order.ID,
		&userID,
		&username,
		&fullName,
		&order.Status,
		&order.Total,
		&order.ShippingAddress,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return models.Order{}, err
	}

	if userID.Valid {
		id := userID.Int64
		order.UserID = &id
		order.User = &models.OrderUser{ID: id, Username: username.String, FullName: fullName.String}
	}
	order.Items = []models.OrderItem{}

	return order, nil
}

func queryOrders(ctx context.Context, db *sql.DB, query string, args ...any) ([]models.Order, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0)
	for rows.Next() {
		order, scanErr := scanOrder(rows)
		if scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := attachOrderItems(ctx, db, orders); err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	return orders, nil
}

func attachOrderItems(ctx context.Context, db *sql.DB, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	orderIDs := make([]int64, 0, len(orders))
	byID := make(map[int64]int, len(orders))
	for index, order := range orders {
		orderIDs = append(orderIDs, order.ID)
		byID[order.ID] = index
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, order_id, product_id, product_name, quantity, unit_price, size
		 FROM order_items
		 WHERE order_id = ANY($1)
		 ORDER BY order_id, id`,
		pq.Array(orderIDs),
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item      models.OrderItem
			productID sql.NullInt64
		)
		if scanErr := rows.Scan(&item.ID, &item.OrderID, &productID, &item.ProductName, &item.Quantity, &item.UnitPrice, &item.Size); scanErr != nil {
			return scanErr
		}
		if productID.Valid {
			id := productID.Int64
			item.ProductID = &id
		}
		if index, ok := byID[item.OrderID]; ok {
			orders[index].Items = append(orders[index].Items, item)
		}
	}

	return rows.Err()
}

// ListOrders returns all orders, newest first. A non-empty status filters by exact status.
func ListOrders(ctx context.Context, db *sql.DB, status string) ([]models.Order, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return queryOrders(ctx, db, orderSelect+` ORDER BY o.created_at DESC, o.id DESC`)
	}
	return queryOrders(ctx, db, orderSelect+` WHERE o.status = $1 ORDER BY o.created_at DESC, o.id DESC`, status)
}

// ListOrdersForUser returns the orders placed by userID, newest first.
func ListOrdersForUser(ctx context.Context, db *sql.DB, userID int64) ([]models.Order, error) {
	return queryOrders(ctx, db, orderSelect+` WHERE o.user_id = $1 ORDER BY o.created_at DESC, o.id DESC`, userID)
}

func GetOrder(ctx context.Context, db *sql.DB, id int64) (models.Order, error) {
	orders, err := queryOrders(ctx, db, orderSelect+` WHERE o.id = $1`, id)
	if err != nil {
		return models.Order{}, err
	}
	if len(orders) == 0 {
		return models.Order{}, ErrNotFound
	}
	return orders[0], nil
}

// maxStatusLength matches orders.status VARCHAR(50).
const maxStatusLength = 50

// UpdateOrderStatus sets the free-text status of an order. A missing id
// yields (nil, nil).
func UpdateOrderStatus(ctx context.Context, db *sql.DB, id int64, status string) (*models.Order, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, fmt.Errorf("%w: status is required", ErrInvalidStatus)
	}
	if utf8.RuneCountInString(status) > maxStatusLength {
		return nil, fmt.Errorf("%w: at most %d characters", ErrInvalidStatus, maxStatusLength)
	}

	var updatedID int64
	err := db.QueryRowContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING id`,
		status, id,
	).Scan(&updatedID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	order, err := GetOrder(ctx, db, updatedID)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID int64  `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Size      string `json:"size"`
}

type PlaceOrderInput struct {
	Items           []OrderItemInput `json:"items" binding:"required"`
	ShippingAddress string           `json:"shippingAddress"`
}

// PlaceOrder reserves stock for every line and records the order in one
// transaction. Product rows are locked so concurrent orders cannot oversell,
// always in ascending product id order so two checkouts never deadlock.
func PlaceOrder(ctx context.Context, db *sql.DB, userID int64, input PlaceOrderInput) (models.Order, error) {
	if len(input.Items) == 0 {
		return models.Order{}, fmt.Errorf("%w: no items", ErrInvalidOrder)
	}
	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return models.Order{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidOrder)
		}
	}

	lines := make([]OrderItemInput, len(input.Items))
	copy(lines, input.Items)
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].ProductID < lines[j].ProductID
	})

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return models.Order{}, err
	}
	defer tx.Rollback()

	items := make([]models.OrderItem, 0, len(lines))
	var total float64
	for _, line := range lines {
		var (
			name  string
			price float64
			stock int
		)
		err := tx.QueryRowContext(ctx,
			`SELECT name, price, stock FROM products WHERE id = $1 FOR UPDATE`,
			line.ProductID,
		).Scan(&name, &price, &stock)
		if errors.Is(err, sql.ErrNoRows) {
			return models.Order{}, fmt.Errorf("%w: product %d not found", ErrInvalidOrder, line.ProductID)
		}
		if err != nil {
			return models.Order{}, fmt.Errorf("load product %d: %w", line.ProductID, err)
		}
		if stock < line.Quantity {
			return models.Order{}, fmt.Errorf("%w: %s has %d left", ErrOutOfStock, name, stock)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2`,
			line.Quantity, line.ProductID,
		); err != nil {
			return models.Order{}, fmt.Errorf("reserve stock: %w", err)
		}

		productID := line.ProductID
		items = append(items, models.OrderItem{
			ProductID:   &productID,
			ProductName: name,
			Quantity:    line.Quantity,
			UnitPrice:   price,
			Size:        strings.TrimSpace(line.Size),
		})
		total += price * float64(line.Quantity)
	}

	order := models.Order{
		UserID:          &userID,
		Total:           math.Round(total*100) / 100,
		ShippingAddress: strings.TrimSpace(input.ShippingAddress),
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, status, total, shipping_address) VALUES ($1, $2, $3, $4)
		 RETURNING id, status, created_at, updated_at`,
		userID, models.OrderStatusPending, order.Total, order.ShippingAddress,
	).Scan(&order.ID, &order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return models.Order{}, fmt.Errorf("insert order: %w", err)
	}

	for index := range items {
		items[index].OrderID = order.ID
		err := tx.QueryRowContext(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, size)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			order.ID, items[index].ProductID, items[index].ProductName, items[index].Quantity, items[index].UnitPrice, items[index].Size,
		).Scan(&items[index].ID)
		if err != nil {
			return models.Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Order{}, err
	}

	order.Items = items
	return order, nil
}
