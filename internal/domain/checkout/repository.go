package checkout

import "context"

// Repository defines the interface for checkout session storage
type Repository interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	// MarkCompleted flips a pending session; returns ErrAlreadyCompleted otherwise
	MarkCompleted(ctx context.Context, id string) error
	// Reopen puts a completed session back to pending so the callback can be
	// replayed after a failed activation
	Reopen(ctx context.Context, id string) error
}
