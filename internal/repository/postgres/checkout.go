package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/checkout"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/subscription"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
)

// CheckoutRepository implements checkout.Repository
type CheckoutRepository struct {
	store
}

// NewCheckoutRepository creates a new checkout repository
func NewCheckoutRepository(db *sql.DB) checkout.Repository {
	return &CheckoutRepository{store: newStore(db)}
}

// Create stores a pending session
func (r *CheckoutRepository) Create(ctx context.Context, s *checkout.Session) error {
	now := time.Now()
	s.CreatedAt = now
	if s.Status == "" {
		s.Status = checkout.StatusPending
	}

	_, err := r.db.ExecContext(ctx, r.q(`
		INSERT INTO checkout_sessions (id, account_id, tier, amount_cents, currency, discount_percent, status, url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), s.ID, s.AccountID, string(s.Tier), s.AmountCents, s.Currency, s.DiscountPercent,
		string(s.Status), s.URL, now.Unix())
	if err != nil {
		return errors.DatabaseError("Failed to create checkout session", err)
	}
	return nil
}

// Get returns a session by ID
func (r *CheckoutRepository) Get(ctx context.Context, id string) (*checkout.Session, error) {
	var s checkout.Session
	var tier, status string
	var createdAt int64
	var completedAt sql.NullInt64

	err := r.db.QueryRowContext(ctx, r.q(`
		SELECT id, account_id, tier, amount_cents, currency, discount_percent, status, url, created_at, completed_at
		FROM checkout_sessions WHERE id = ?
	`), id).Scan(&s.ID, &s.AccountID, &tier, &s.AmountCents, &s.Currency, &s.DiscountPercent,
		&status, &s.URL, &createdAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Checkout session")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get checkout session", err)
	}

	s.Tier = subscription.Tier(tier)
	s.Status = checkout.Status(status)
	s.CreatedAt = time.Unix(createdAt, 0)
	s.CompletedAt = timePtr(completedAt)
	return &s, nil
}

// MarkCompleted flips a pending session to completed exactly once
func (r *CheckoutRepository) MarkCompleted(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, r.q(`
		UPDATE checkout_sessions
		SET status = 'completed', completed_at = ?
		WHERE id = ? AND status = 'pending'
	`), time.Now().Unix(), id)
	if err != nil {
		return errors.DatabaseError("Failed to complete checkout session", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return checkout.ErrAlreadyCompleted
	}
	return nil
}

// Reopen flips a completed session back to pending
func (r *CheckoutRepository) Reopen(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, r.q(`
		UPDATE checkout_sessions
		SET status = 'pending', completed_at = NULL
		WHERE id = ? AND status = 'completed'
	`), id)
	if err != nil {
		return errors.DatabaseError("Failed to reopen checkout session", err)
	}
	return requireRow(result, "Completed checkout session")
}
