package testutil

import (
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/migrations"
	_ "modernc.org/sqlite"
)

// NewTestDB creates an in-memory SQLite database with the embedded schema applied.
// The pool is pinned to one connection so the in-memory database survives.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	files, err := fs.Glob(migrations.GetFS(), "*.sql")
	if err != nil {
		t.Fatalf("Failed to list migrations: %v", err)
	}
	sort.Strings(files)
	for _, name := range files {
		content, err := fs.ReadFile(migrations.GetFS(), name)
		if err != nil {
			t.Fatalf("Failed to read migration %s: %v", name, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			t.Fatalf("Failed to apply migration %s: %v", name, err)
		}
	}

	t.Cleanup(func() { CleanupDB(db) })
	return db
}

// CleanupDB closes the test database
func CleanupDB(db *sql.DB) {
	if db != nil {
		db.Close()
	}
}

// SeedAccount inserts an account with an inactive subscription and returns its ID.
func SeedAccount(t *testing.T, db *sql.DB, role string) string {
	t.Helper()

	id := uuid.NewString()
	now := time.Now().Unix()
	email := fmt.Sprintf("%s-%s@example.com", role, strings.ReplaceAll(id[:8], "-", ""))

	if _, err := db.Exec(`INSERT INTO accounts (id, email, name, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, id, email, "Seed "+role, "x", role, now, now); err != nil {
		t.Fatalf("Failed to seed account: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO subscriptions (account_id, status, letters_remaining, discount_percent, created_at, updated_at)
		VALUES (?, 'inactive', 0, 0, ?, ?)`, id, now, now); err != nil {
		t.Fatalf("Failed to seed subscription: %v", err)
	}
	return id
}

// SeedActiveSubscription activates the account's subscription with the given letters.
func SeedActiveSubscription(t *testing.T, db *sql.DB, accountID string, letters int) {
	t.Helper()

	if _, err := db.Exec(`UPDATE subscriptions SET status = 'active', tier = '4letters', letters_remaining = ?
		WHERE account_id = ?`, letters, accountID); err != nil {
		t.Fatalf("Failed to activate subscription: %v", err)
	}
}

// LettersRemaining reads the counter straight from the table.
func LettersRemaining(t *testing.T, db *sql.DB, accountID string) int {
	t.Helper()

	var n int
	if err := db.QueryRow(`SELECT letters_remaining FROM subscriptions WHERE account_id = ?`, accountID).Scan(&n); err != nil {
		t.Fatalf("Failed to read letters_remaining: %v", err)
	}
	return n
}
