package subscription

import (
	"context"
	"time"
)

// Repository defines the interface for the quota ledger storage
type Repository interface {
	// Get returns the subscription of an account
	Get(ctx context.Context, accountID string) (*Subscription, error)

	// Activate sets status active and replaces the letter allotment
	Activate(ctx context.Context, accountID string, tier Tier, letters, discountPercent int) error

	// Reserve decrements letters_remaining when the subscription is active and
	// non-empty, and stores the held reservation, atomically
	Reserve(ctx context.Context, r *Reservation) error

	// Commit settles a held reservation against an artifact
	Commit(ctx context.Context, reservationID, artifactID string) error

	// Release settles a held reservation and restores one letter
	Release(ctx context.Context, reservationID string) error

	// GetReservation returns a reservation by ID
	GetReservation(ctx context.Context, id string) (*Reservation, error)

	// ListHeldBefore returns held reservations created before t
	ListHeldBefore(ctx context.Context, t time.Time) ([]*Reservation, error)

	// CountByStatus counts subscriptions in a status
	CountByStatus(ctx context.Context, status Status) (int64, error)

	// CountHeld counts unsettled reservations
	CountHeld(ctx context.Context) (int64, error)
}
