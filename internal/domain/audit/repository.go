package audit

import "context"

// Repository defines the interface for audit log storage
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	List(ctx context.Context, eventType EventType, limit, offset int) ([]*Entry, int64, error)
}
