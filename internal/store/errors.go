package store

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound = errors.New("record not found")

	// Validation failures, reported to clients as 400.
	ErrUsernameTaken  = errors.New("username already exists")
	ErrMobileTaken    = errors.New("mobile number already exists")
	ErrImagesRequired = errors.New("at least one product image is required")
	ErrInvalidStatus  = errors.New("invalid order status")
	ErrInvalidOrder   = errors.New("invalid order")
	ErrOutOfStock     = errors.New("insufficient stock")

	// ErrInvalidCredentials covers both unknown identifiers and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrUsernameTaken,
		ErrMobileTaken,
		ErrImagesRequired,
		ErrInvalidStatus,
		ErrInvalidOrder,
		ErrOutOfStock,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// uniqueViolation returns the violated constraint name when err is a
// PostgreSQL unique_violation.
func uniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return "", false
	}
	if pqErr.Code.Name() != "unique_violation" {
		return "", false
	}
	return pqErr.Constraint, true
}
