package artifact

import "context"

// Repository defines the interface for artifact storage
type Repository interface {
	// Create stores a generated artifact
	Create(ctx context.Context, a *Artifact) error

	// SetArchiveKey records where the artifact was archived
	SetArchiveKey(ctx context.Context, id, key string) error

	// Delete removes an artifact whose reservation could not be committed
	Delete(ctx context.Context, id string) error

	// GetByID retrieves an artifact by ID
	GetByID(ctx context.Context, id string) (*Artifact, error)

	// GetByReservation returns the artifact produced under a reservation
	GetByReservation(ctx context.Context, reservationID string) (*Artifact, error)

	// ListByAccount lists an account's artifacts, newest first
	ListByAccount(ctx context.Context, accountID string, kind Kind, limit, offset int) ([]*Artifact, int64, error)

	// List lists all artifacts, newest first
	List(ctx context.Context, kind Kind, limit, offset int) ([]*Artifact, int64, error)
}
