package account

import "context"

// Service defines the interface for account business logic
type Service interface {
	// Register creates an account. Contractors get a referral code and a
	// coupon, when present, is redeemed for the new account.
	Register(ctx context.Context, in RegisterInput) (*Registration, error)

	// Authenticate checks credentials and returns the account
	Authenticate(ctx context.Context, email, password string) (*Account, error)

	// GetByID retrieves an account by ID
	GetByID(ctx context.Context, id string) (*Account, error)

	// List retrieves accounts with pagination
	List(ctx context.Context, limit, offset int) ([]*Account, int64, error)
}
