package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// User represents a user in the system
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetOrCreateUser returns the user with the given email, creating it on first use
func (d *DB) GetOrCreateUser(email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	_, err := d.Exec(`INSERT INTO users (email) VALUES (?) ON CONFLICT(email) DO NOTHING`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	var u User
	var tz sql.NullString
	err = d.QueryRow(`
		SELECT id, email, name, timezone, created_at, updated_at
		FROM users WHERE email = ?
	`, email).Scan(&u.ID, &u.Email, &u.Name, &tz, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.Timezone = tz.String
	return &u, nil
}

// GetUserTimezone returns a user's preferred timezone, or "" when unset.
// Callers fall back to the configured default.
func (d *DB) GetUserTimezone(userID int64) (string, error) {
	var tz sql.NullString
	err := d.QueryRow(`SELECT timezone FROM users WHERE id = ?`, userID).Scan(&tz)
	if err != nil {
		return "", fmt.Errorf("failed to get user timezone: %w", err)
	}
	return tz.String, nil
}

// UpdateUserTimezone updates a user's preferred timezone.
func (d *DB) UpdateUserTimezone(userID int64, timezone string) error {
	_, err := d.Exec(`
		UPDATE users
		SET timezone = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, timezone, userID)
	if err != nil {
		return fmt.Errorf("failed to update user timezone: %w", err)
	}
	return nil
}
