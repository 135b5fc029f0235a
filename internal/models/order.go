package models

import (
	"time"
)

const OrderStatusPending = "pending"

// OrderUser is the account summary embedded in admin order listings.
type OrderUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

type Order struct {
	ID              int64       `json:"id" db:"id"`
	UserID          *int64      `json:"userId" db:"user_id"`
	User            *OrderUser  `json:"user"`
	Status          string      `json:"status" db:"status"`
	Total           float64     `json:"total" db:"total"`
	ShippingAddress string      `json:"shippingAddress" db:"shipping_address"`
	Items           []OrderItem `json:"items"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" db:"updated_at"`
}

// OrderItem snapshots product name and price at purchase time.
type OrderItem struct {
	ID          int64   `json:"id" db:"id"`
	OrderID     int64   `json:"orderId" db:"order_id"`
	ProductID   *int64  `json:"productId" db:"product_id"`
	ProductName string  `json:"productName" db:"product_name"`
	Quantity    int     `json:"quantity" db:"quantity"`
	UnitPrice   float64 `json:"unitPrice" db:"unit_price"`
	Size        string  `json:"size" db:"size"`
}
