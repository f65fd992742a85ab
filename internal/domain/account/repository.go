package account

import "context"

// Repository defines the interface for account data access
type Repository interface {
	// Create stores the account together with its inactive subscription
	Create(ctx context.Context, a *Account) error

	// GetByID retrieves an account by ID
	GetByID(ctx context.Context, id string) (*Account, error)

	// GetByEmail retrieves an account by email, case-insensitively
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// Delete removes an account with its subscription and referral code
	Delete(ctx context.Context, id string) error

	// List retrieves accounts with pagination
	List(ctx context.Context, limit, offset int) ([]*Account, int64, error)
}
