package checkout

import (
	"context"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/subscription"
)

// Service defines checkout operations
type Service interface {
	// Create opens a session for a package at the account's discounted price
	Create(ctx context.Context, accountID string, tier subscription.Tier) (*Session, error)

	// Complete settles a paid session and activates the subscription
	Complete(ctx context.Context, sessionID string) (*Session, error)
}
