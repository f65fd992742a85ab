package audit

import "context"

// Service records and reads audit entries. Record never fails the caller.
type Service interface {
	Record(ctx context.Context, e Entry)
	List(ctx context.Context, eventType EventType, limit, offset int) ([]*Entry, int64, error)
}
