package referral

import "context"

// Repository defines the interface for referral ledger storage
type Repository interface {
	// Insert stores a new code; returns ErrCodeTaken on a duplicate
	Insert(ctx context.Context, c *Code) error

	// GetByCode looks a code up case-insensitively
	GetByCode(ctx context.Context, code string) (*Code, error)

	// GetByContractor returns the code owned by a contractor
	GetByContractor(ctx context.Context, contractorID string) (*Code, error)

	// Redeem records the redemption, bumps total_signups and stamps the
	// account's subscription in one transaction. It returns the updated code.
	Redeem(ctx context.Context, code, accountID string) (*Code, error)
}
