package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"genzfits/internal/models"
	"genzfits/internal/utils"
)

const userColumns = `id, full_name, username, mobile, password, is_admin, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Username,
		&user.Mobile,
		&user.Password,
		&user.IsAdmin,
		&user.CreatedAt,
	)
	return user, err
}

// UsernameExists reports whether an account already uses username as either
// of its login identifiers.
func UsernameExists(ctx context.Context, db *sql.DB, username string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR mobile = $1)`, username).Scan(&exists)
	return exists, err
}

// MobileExists reports whether an account already uses mobile as either of
// its login identifiers.
func MobileExists(ctx context.Context, db *sql.DB, mobile string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE mobile = $1 OR username = $1)`, mobile).Scan(&exists)
	return exists, err
}

// CreateUser hashes user.Password and inserts the account. The returned
// record carries the stored hash in Password.
func CreateUser(ctx context.Context, db *sql.DB, user models.User) (models.User, error) {
	user.Username = strings.TrimSpace(user.Username)
	user.Mobile = strings.TrimSpace(user.Mobile)
	user.FullName = strings.TrimSpace(user.FullName)

	taken, err := UsernameExists(ctx, db, user.Username)
	if err != nil {
		return models.User{}, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return models.User{}, ErrUsernameTaken
	}

	taken, err = MobileExists(ctx, db, user.Mobile)
	if err != nil {
		return models.User{}, fmt.Errorf("check mobile: %w", err)
	}
	if taken {
		return models.User{}, ErrMobileTaken
	}

	hashedPassword, err := utils.HashPassword(user.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user.Password = hashedPassword

	err = db.QueryRowContext(ctx,
		`INSERT INTO users (full_name, username, mobile, password, is_admin) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		user.FullName, user.Username, user.Mobile, user.Password, user.IsAdmin,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		// Lost a race with a concurrent signup between the checks and the insert.
		if constraint, ok := uniqueViolation(err); ok {
			if strings.Contains(constraint, "mobile") {
				return models.User{}, ErrMobileTaken
			}
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

func findUsersByIdentifier(ctx context.Context, db *sql.DB, identifier string) ([]models.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR mobile = $1 ORDER BY id`,
		strings.TrimSpace(identifier),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0, 1)
	for rows.Next() {
		user, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// FindUserByIdentifier looks a user up by username or mobile number.
func FindUserByIdentifier(ctx context.Context, db *sql.DB, identifier string) (models.User, error) {
	users, err := findUsersByIdentifier(ctx, db, identifier)
	if err != nil {
		return models.User{}, err
	}
	if len(users) == 0 {
		return models.User{}, ErrNotFound
	}
	return users[0], nil
}

// Authenticate verifies a password against the accounts named by identifier.
// Rows created before identifiers were unique across both columns may match
// the same value; the first whose hash accepts password wins.
func Authenticate(ctx context.Context, db *sql.DB, identifier, password string) (models.User, error) {
	users, err := findUsersByIdentifier(ctx, db, identifier)
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}

	for _, user := range users {
		if utils.CheckPasswordHash(password, user.Password) {
			return user, nil
		}
	}
	return models.User{}, ErrInvalidCredentials
}

func ListUsers(ctx context.Context, db *sql.DB) ([]models.User, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func GetUser(ctx context.Context, db *sql.DB, id int64) (models.User, error) {
	user, err := scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return user, err
}

// DeleteUser removes the account. Deleting a missing id is not an error.
// Orders keep their rows with user_id set to NULL.
func DeleteUser(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// AdminSeed describes the bootstrap administrator account.
type AdminSeed struct {
	FullName string
	Username string
	Mobile   string
	Password string
}

// EnsureAdmin creates the seed administrator when no account uses its
// username as an identifier. It reports whether an account was created.
func EnsureAdmin(ctx context.Context, db *sql.DB, seed AdminSeed) (bool, error) {
	if strings.TrimSpace(seed.Password) == "" {
		return false, nil
	}

	exists, err := UsernameExists(ctx, db, seed.Username)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return false, nil
	}

	_, err = CreateUser(ctx, db, models.User{
		FullName: seed.FullName,
		Username: seed.Username,
		Mobile:   seed.Mobile,
		Password: seed.Password,
		IsAdmin:  true,
	})
	if err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
