package models

import (
	"time"
)

// User represents a shop account. Password holds the bcrypt hash.
type User struct {
	ID        int64     `json:"id" db:"id"`
	FullName  string    `json:"fullName" db:"full_name"`
	Username  string    `json:"username" db:"username"`
	Mobile    string    `json:"mobile" db:"mobile"`
	Password  string    `json:"password,omitempty" db:"password"`
	IsAdmin   bool      `json:"isAdmin" db:"is_admin"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
