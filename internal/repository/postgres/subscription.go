package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/subscription"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
)

// SubscriptionRepository implements subscription.Repository. Every quota
// mutation is a conditional UPDATE so concurrent writers cannot overdraw.
type SubscriptionRepository struct {
	store
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *sql.DB) subscription.Repository {
	return &SubscriptionRepository{store: newStore(db)}
}

// Get returns the subscription of an account
func (r *SubscriptionRepository) Get(ctx context.Context, accountID string) (*subscription.Subscription, error) {
	var s subscription.Subscription
	var tier, status string
	var referredBy sql.NullString
	var createdAt, updatedAt int64

	err := r.db.QueryRowContext(ctx, r.q(`
		SELECT account_id, tier, status, letters_remaining, discount_percent, referred_by, created_at, updated_at
		FROM subscriptions WHERE account_id = ?
	`), accountID).Scan(&s.AccountID, &tier, &status, &s.LettersRemaining, &s.DiscountPercent,
		&referredBy, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Subscription")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get subscription", err)
	}

	s.Tier = subscription.Tier(tier)
	s.Status = subscription.Status(status)
	s.ReferredBy = stringPtr(referredBy)
	s.CreatedAt = time.Unix(createdAt, 0)
	s.UpdatedAt = time.Unix(updatedAt, 0)
	return &s, nil
}

// Activate replaces the allotment and marks the subscription active
func (r *SubscriptionRepository) Activate(ctx context.Context, accountID string, tier subscription.Tier, letters, discountPercent int) error {
	result, err := r.db.ExecContext(ctx, r.q(`
		UPDATE subscriptions
		SET tier = ?, status = 'active', letters_remaining = ?, discount_percent = ?, updated_at = ?
		WHERE account_id = ?
	`), string(tier), letters, discountPercent, time.Now().Unix(), accountID)
	if err != nil {
		return errors.DatabaseError("Failed to activate subscription", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Subscription")
	}
	return nil
}

// Reserve takes one letter and records the held reservation
func (r *SubscriptionRepository) Reserve(ctx context.Context, res *subscription.Reservation) error {
	now := time.Now()

	return r.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, r.q(`
			UPDATE subscriptions
			SET letters_remaining = letters_remaining - 1, updated_at = ?
			WHERE account_id = ? AND status = 'active' AND letters_remaining > 0
		`), now.Unix(), res.AccountID)
		if err != nil {
			return errors.DatabaseError("Failed to reserve letter", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return errors.DatabaseError("Failed to get affected rows", err)
		}
		if rows == 0 {
			return r.whyNotReservable(ctx, tx, res.AccountID)
		}

		_, err = tx.ExecContext(ctx, r.q(`
			INSERT INTO reservations (id, account_id, status, created_at)
			VALUES (?, ?, 'held', ?)
		`), res.ID, res.AccountID, now.Unix())
		if err != nil {
			return errors.DatabaseError("Failed to store reservation", err)
		}

		res.Status = subscription.ReservationHeld
		res.CreatedAt = now
		return nil
	})
}

func (r *SubscriptionRepository) whyNotReservable(ctx context.Context, tx *sql.Tx, accountID string) error {
	var status string
	err := tx.QueryRowContext(ctx, r.q(`SELECT status FROM subscriptions WHERE account_id = ?`), accountID).Scan(&status)
	if err == sql.ErrNoRows {
		return subscription.ErrSubscriptionInactive
	}
	if err != nil {
		return errors.DatabaseError("Failed to read subscription", err)
	}
	if subscription.Status(status) != subscription.StatusActive {
		return subscription.ErrSubscriptionInactive
	}
	return subscription.ErrQuotaExhausted
}

// Commit settles a held reservation against an artifact
func (r *SubscriptionRepository) Commit(ctx context.Context, reservationID, artifactID string) error {
	result, err := r.db.ExecContext(ctx, r.q(`
		UPDATE reservations
		SET status = 'committed', artifact_id = ?, settled_at = ?
		WHERE id = ? AND status = 'held'
	`), artifactID, time.Now().Unix(), reservationID)
	if err != nil {
		return errors.DatabaseError("Failed to commit reservation", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return r.settledOrMissing(ctx, r.db, reservationID)
	}
	return nil
}

// Release settles a held reservation and gives its letter back
func (r *SubscriptionRepository) Release(ctx context.Context, reservationID string) error {
	now := time.Now().Unix()

	return r.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, r.q(`
			UPDATE reservations
			SET status = 'released', settled_at = ?
			WHERE id = ? AND status = 'held'
		`), now, reservationID)
		if err != nil {
			return errors.DatabaseError("Failed to release reservation", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return errors.DatabaseError("Failed to get affected rows", err)
		}
		if rows == 0 {
			return r.settledOrMissing(ctx, tx, reservationID)
		}

		_, err = tx.ExecContext(ctx, r.q(`
			UPDATE subscriptions
			SET letters_remaining = letters_remaining + 1, updated_at = ?
			WHERE account_id = (SELECT account_id FROM reservations WHERE id = ?)
		`), now, reservationID)
		if err != nil {
			return errors.DatabaseError("Failed to restore letter", err)
		}
		return nil
	})
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (r *SubscriptionRepository) settledOrMissing(ctx context.Context, q queryer, reservationID string) error {
	var n int
	if err := q.QueryRowContext(ctx, r.q(`SELECT COUNT(*) FROM reservations WHERE id = ?`), reservationID).Scan(&n); err != nil {
		return errors.DatabaseError("Failed to read reservation", err)
	}
	if n == 0 {
		return errors.NotFound("Reservation")
	}
	return subscription.ErrReservationSettled
}

// GetReservation returns a reservation by ID
func (r *SubscriptionRepository) GetReservation(ctx context.Context, id string) (*subscription.Reservation, error) {
	row := r.db.QueryRowContext(ctx, r.q(`
		SELECT id, account_id, status, artifact_id, created_at, settled_at
		FROM reservations WHERE id = ?
	`), id)
	return scanReservation(row)
}

// ListHeldBefore returns held reservations created before t, oldest first
func (r *SubscriptionRepository) ListHeldBefore(ctx context.Context, t time.Time) ([]*subscription.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, r.q(`
		SELECT id, account_id, status, artifact_id, created_at, settled_at
		FROM reservations
		WHERE status = 'held' AND created_at < ?
		ORDER BY created_at
	`), t.Unix())
	if err != nil {
		return nil, errors.DatabaseError("Failed to list held reservations", err)
	}
	defer rows.Close()

	var out []*subscription.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate reservations", err)
	}
	return out, nil
}

// CountByStatus counts subscriptions in a status
func (r *SubscriptionRepository) CountByStatus(ctx context.Context, status subscription.Status) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, r.q(`SELECT COUNT(*) FROM subscriptions WHERE status = ?`), string(status)).Scan(&n)
	if err != nil {
		return 0, errors.DatabaseError("Failed to count subscriptions", err)
	}
	return n, nil
}

// CountHeld counts unsettled reservations
func (r *SubscriptionRepository) CountHeld(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE status = 'held'`).Scan(&n)
	if err != nil {
		return 0, errors.DatabaseError("Failed to count reservations", err)
	}
	return n, nil
}

func scanReservation(row rowScanner) (*subscription.Reservation, error) {
	var res subscription.Reservation
	var status string
	var artifactID sql.NullString
	var createdAt int64
	var settledAt sql.NullInt64

	err := row.Scan(&res.ID, &res.AccountID, &status, &artifactID, &createdAt, &settledAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Reservation")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get reservation", err)
	}

	res.Status = subscription.ReservationStatus(status)
	res.ArtifactID = stringPtr(artifactID)
	res.CreatedAt = time.Unix(createdAt, 0)
	res.SettledAt = timePtr(settledAt)
	return &res, nil
}
