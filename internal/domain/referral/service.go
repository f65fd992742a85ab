package referral

import "context"

// Ledger defines the referral ledger operations
type Ledger interface {
	// IssueCode allocates a unique code for a contractor
	IssueCode(ctx context.Context, contractorID, name string) (*Code, error)

	// ValidateCode checks a code without side effects
	ValidateCode(ctx context.Context, code string) (*Validation, error)

	// RedeemCode credits a sign-up to the code's owner
	RedeemCode(ctx context.Context, code, accountID string) (*Code, error)

	// Stats returns the contractor's code and counters
	Stats(ctx context.Context, contractorID string) (*Stats, error)
}
