package database

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// NewTestDB creates an in-memory SQLite database for testing.
// The database is automatically closed when the test completes.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:", zap.NewNop())
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestUser represents a user created for testing
type TestUser struct {
	ID    int64
	Email string
}

var testUserCounter int64 = 0

// CreateTestUser creates a test user with an auto-generated email
func CreateTestUser(t *testing.T, db *DB) *TestUser {
	t.Helper()
	testUserCounter++

	return CreateTestUserWithEmail(t, db, fmt.Sprintf("testuser%d@example.com", testUserCounter))
}

// CreateTestUserWithEmail creates a test user with a specific email
func CreateTestUserWithEmail(t *testing.T, db *DB, email string) *TestUser {
	t.Helper()

	u, err := db.GetOrCreateUser(email)
	require.NoError(t, err, "failed to create test user")

	return &TestUser{ID: u.ID, Email: u.Email}
}
