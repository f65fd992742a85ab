package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/account"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
)

// AccountRepository implements account.Repository
type AccountRepository struct {
	store
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sql.DB) account.Repository {
	return &AccountRepository{store: newStore(db)}
}

const accountColumns = `id, email, name, password_hash, role, created_at, updated_at`

// Create inserts the account and its inactive subscription in one transaction
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	now := time.Now()
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	a.CreatedAt = now
	a.UpdatedAt = now

	return r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, r.q(`
			INSERT INTO accounts (`+accountColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`), a.ID, a.Email, a.Name, a.PasswordHash, string(a.Role), now.Unix(), now.Unix())
		if err != nil {
			if isUniqueViolation(err) {
				return errors.Conflict("Email already registered")
			}
			return errors.DatabaseError("Failed to create account", err)
		}

		_, err = tx.ExecContext(ctx, r.q(`
			INSERT INTO subscriptions (account_id, status, letters_remaining, discount_percent, created_at, updated_at)
			VALUES (?, 'inactive', 0, 0, ?, ?)
		`), a.ID, now.Unix(), now.Unix())
		if err != nil {
			return errors.DatabaseError("Failed to create subscription", err)
		}
		return nil
	})
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*account.Account, error) {
	row := r.db.QueryRowContext(ctx, r.q(`SELECT `+accountColumns+` FROM accounts WHERE id = ?`), id)
	return scanAccount(row)
}

// GetByEmail retrieves an account by email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	row := r.db.QueryRowContext(ctx, r.q(`SELECT `+accountColumns+` FROM accounts WHERE email = ?`),
		strings.ToLower(strings.TrimSpace(email)))
	return scanAccount(row)
}

// Delete removes an account and the rows created alongside it
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM referral_codes WHERE contractor_id = ?`,
			`DELETE FROM subscriptions WHERE account_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, r.q(stmt), id); err != nil {
				return errors.DatabaseError("Failed to delete account data", err)
			}
		}

		result, err := tx.ExecContext(ctx, r.q(`DELETE FROM accounts WHERE id = ?`), id)
		if err != nil {
			return errors.DatabaseError("Failed to delete account", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return errors.DatabaseError("Failed to get affected rows", err)
		}
		if rows == 0 {
			return errors.NotFound("Account")
		}
		return nil
	})
}

// List retrieves accounts with pagination
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*account.Account, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count accounts", err)
	}

	rows, err := r.db.QueryContext(ctx, r.q(`
		SELECT `+accountColumns+`
		FROM accounts
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`), limit, offset)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list accounts", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to iterate accounts", err)
	}

	return accounts, total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*account.Account, error) {
	var a account.Account
	var role string
	var createdAt, updatedAt int64

	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &role, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Account")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get account", err)
	}

	a.Role = account.Role(role)
	a.CreatedAt = time.Unix(createdAt, 0)
	a.UpdatedAt = time.Unix(updatedAt, 0)
	return &a, nil
}
