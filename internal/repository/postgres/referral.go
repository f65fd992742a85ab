package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/referral"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
)

// ReferralRepository implements referral.Repository
type ReferralRepository struct {
	store
}

// NewReferralRepository creates a new referral repository
func NewReferralRepository(db *sql.DB) referral.Repository {
	return &ReferralRepository{store: newStore(db)}
}

const referralColumns = `id, code, contractor_id, total_signups, discount_percent, created_at, updated_at`

// Insert stores a new code
func (r *ReferralRepository) Insert(ctx context.Context, c *referral.Code) error {
	now := time.Now()
	c.Code = strings.ToLower(c.Code)
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, r.q(`
		INSERT INTO referral_codes (`+referralColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), c.ID, c.Code, c.ContractorID, c.TotalSignups, c.DiscountPercent, now.Unix(), now.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return referral.ErrCodeTaken
		}
		return errors.DatabaseError("Failed to create referral code", err)
	}
	return nil
}

// GetByCode looks a code up case-insensitively
func (r *ReferralRepository) GetByCode(ctx context.Context, code string) (*referral.Code, error) {
	row := r.db.QueryRowContext(ctx, r.q(`SELECT `+referralColumns+` FROM referral_codes WHERE code = ?`),
		normalizeCode(code))
	return scanReferralCode(row)
}

// GetByContractor returns the code owned by a contractor
func (r *ReferralRepository) GetByContractor(ctx context.Context, contractorID string) (*referral.Code, error) {
	row := r.db.QueryRowContext(ctx, r.q(`SELECT `+referralColumns+` FROM referral_codes WHERE contractor_id = ?`),
		contractorID)
	return scanReferralCode(row)
}

// Redeem records a redemption, counts the sign-up and stamps the account's
// subscription with the discount, all in one transaction.
func (r *ReferralRepository) Redeem(ctx context.Context, code, accountID string) (*referral.Code, error) {
	var redeemed *referral.Code
	now := time.Now()

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		c, err := scanReferralCode(tx.QueryRowContext(ctx,
			r.q(`SELECT `+referralColumns+` FROM referral_codes WHERE code = ?`), normalizeCode(code)))
		if err != nil {
			if errors.HasCode(err, errors.ErrCodeNotFound) {
				return referral.ErrUnknownCode
			}
			return err
		}
		if c.ContractorID == accountID {
			return referral.ErrSelfReferral
		}

		_, err = tx.ExecContext(ctx, r.q(`
			INSERT INTO referral_redemptions (account_id, code_id, created_at)
			VALUES (?, ?, ?)
		`), accountID, c.ID, now.Unix())
		if err != nil {
			if isUniqueViolation(err) {
				return referral.ErrAlreadyRedeemed
			}
			return errors.DatabaseError("Failed to record redemption", err)
		}

		if _, err := tx.ExecContext(ctx, r.q(`
			UPDATE referral_codes
			SET total_signups = total_signups + 1, updated_at = ?
			WHERE id = ?
		`), now.Unix(), c.ID); err != nil {
			return errors.DatabaseError("Failed to count sign-up", err)
		}

		result, err := tx.ExecContext(ctx, r.q(`
			UPDATE subscriptions
			SET discount_percent = ?, referred_by = ?, updated_at = ?
			WHERE account_id = ?
		`), c.DiscountPercent, c.ContractorID, now.Unix(), accountID)
		if err != nil {
			return errors.DatabaseError("Failed to apply referral discount", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return errors.DatabaseError("Failed to get affected rows", err)
		}
		if rows == 0 {
			return errors.NotFound("Subscription")
		}

		c.TotalSignups++
		c.UpdatedAt = now
		redeemed = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return redeemed, nil
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func scanReferralCode(row rowScanner) (*referral.Code, error) {
	var c referral.Code
	var createdAt, updatedAt int64

	err := row.Scan(&c.ID, &c.Code, &c.ContractorID, &c.TotalSignups, &c.DiscountPercent, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Referral code")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get referral code", err)
	}

	c.CreatedAt = time.Unix(createdAt, 0)
	c.UpdatedAt = time.Unix(updatedAt, 0)
	return &c, nil
}
