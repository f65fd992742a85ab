package subscription

import "context"

// Ledger defines the quota ledger operations
type Ledger interface {
	// Activate grants a package allotment, replacing any previous one
	Activate(ctx context.Context, accountID string, tier Tier, discountPercent int) error

	// TryReserve takes one letter provisionally
	TryReserve(ctx context.Context, accountID string) (*Reservation, error)

	// Commit makes a reservation final
	Commit(ctx context.Context, r *Reservation, artifactID string) error

	// Release returns a reservation's letter to the quota
	Release(ctx context.Context, r *Reservation) error

	// Reservation returns the stored state of a reservation
	Reservation(ctx context.Context, id string) (*Reservation, error)

	// StatusOf reports the account's quota
	StatusOf(ctx context.Context, accountID string) (*QuotaStatus, error)
}
